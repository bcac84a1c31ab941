// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the extraction stages for each configured program:
// locate the study plan page, tokenize it, parse the course entries, expand
// labs, and persist the batch. A failure abandons only the program it
// occurred in; the run continues with the next program.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/prospectus/internal/assemble"
	"github.com/pdiddy/prospectus/internal/locate"
	"github.com/pdiddy/prospectus/internal/parse"
	"github.com/pdiddy/prospectus/internal/store"
	"github.com/pdiddy/prospectus/internal/tokenize"
	"github.com/pdiddy/prospectus/pkg/types"
)

// Persister writes one program's batch. *store.Store implements it.
type Persister interface {
	Persist(ctx context.Context, batch []types.CourseRecord) (store.Ack, error)
}

// Orchestrator sequences the stages for a list of programs.
type Orchestrator struct {
	cfg    types.PipelineConfig
	store  Persister
	log    zerolog.Logger
	out    io.Writer
	dryRun bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOutput sets the writer for per-program progress lines. The default
// discards them.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// WithDryRun stops each program after expansion. Nothing is written and the
// store may be nil.
func WithDryRun() Option {
	return func(o *Orchestrator) { o.dryRun = true }
}

// New returns an Orchestrator that persists through st.
func New(cfg types.PipelineConfig, st Persister, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:   cfg,
		store: st,
		log:   log,
		out:   io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg.Locator.MarkerTemplate == "" {
		o.cfg.Locator.MarkerTemplate = types.DefaultMarkerTemplate
	}
	o.cfg.Parser = o.cfg.Parser.WithDefaults()
	return o
}

// Run processes names, or the configured programs when names is empty. With
// Workers > 1 programs are located and parsed concurrently, but batches are
// still persisted one at a time in the order of names.
func (o *Orchestrator) Run(ctx context.Context, names []string) Report {
	if len(names) == 0 {
		names = o.cfg.Programs
	}

	rep := Report{RunID: uuid.NewString(), Started: time.Now()}
	ro := *o
	ro.log = o.log.With().Str("run_id", rep.RunID).Logger()
	ro.log.Info().Int("programs", len(names)).Bool("dry_run", o.dryRun).Msg("run started")

	if o.cfg.Workers > 1 && len(names) > 1 {
		ro.runParallel(ctx, names, &rep)
	} else {
		for _, name := range names {
			rep.add(ro.ProcessProgram(ctx, name))
		}
	}

	rep.Finished = time.Now()
	verb := "loaded"
	if o.dryRun {
		verb = "parsed"
	}
	fmt.Fprintf(o.out, "\n%s: %d, failed: %d (total: %d)\n", verb, rep.Loaded(), rep.Failed(), rep.Total())
	ro.log.Info().
		Int("loaded", rep.Loaded()).
		Int("failed", rep.Failed()).
		Dur("elapsed", rep.Finished.Sub(rep.Started)).
		Msg("run finished")
	return rep
}

func (o *Orchestrator) runParallel(ctx context.Context, names []string, rep *Report) {
	ready := make([]chan ProgramResult, len(names))
	for i := range ready {
		ready[i] = make(chan ProgramResult, 1)
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	go func() {
		for i, name := range names {
			g.Go(func() error {
				ready[i] <- o.prepare(ctx, name)
				return nil
			})
		}
		g.Wait()
	}()

	// Single writer: batches reach the store in program order.
	for i := range names {
		res := <-ready[i]
		rep.add(o.complete(ctx, res))
	}
}

// ProcessProgram runs every stage for one program. Errors are recorded in
// the result, never returned, so the caller can move on to the next program.
func (o *Orchestrator) ProcessProgram(ctx context.Context, name string) ProgramResult {
	return o.complete(ctx, o.prepare(ctx, name))
}

// prepare runs the read-only stages: locate, tokenize, parse, expand.
func (o *Orchestrator) prepare(ctx context.Context, name string) ProgramResult {
	start := time.Now()
	res := ProgramResult{Program: name, Stage: StageLocate}

	page, err := o.locate(ctx, name)
	if err != nil {
		return abandon(res, err, start)
	}
	res.Page = page.Page

	res.Stage = StageParse
	parsed, err := parse.Parse(tokenize.Tokenize(page.Text), name, page.Marker, o.cfg.Parser)
	if err != nil {
		return abandon(res, err, start)
	}
	res.MarkerFound = parsed.MarkerFound
	res.Semesters = parsed.Semesters
	res.Parsed = len(parsed.Courses)

	res.Stage = StageExpand
	res.Records = assemble.ExpandAll(parsed.Courses)
	res.LabCollisions = assemble.LabCollisions(parsed.Courses)
	res.Elapsed = time.Since(start)

	o.log.Debug().
		Str("program", name).
		Int("page", res.Page).
		Int("semesters", res.Semesters).
		Int("entries", res.Parsed).
		Str("terminator", string(parsed.Terminator)).
		Msg("parsed study plan")
	for _, code := range res.LabCollisions {
		o.log.Warn().
			Str("program", name).
			Str("course", code).
			Msg("single-credit lab shares the course code; not split")
	}
	return res
}

func (o *Orchestrator) locate(ctx context.Context, name string) (locate.PageText, error) {
	if o.cfg.Timeouts.Scan > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeouts.Scan)
		defer cancel()
	}
	return locate.Locate(ctx, o.cfg.Locator.Document, o.cfg.Locator.MarkerTemplate, name)
}

// complete persists a prepared result and reports it. It runs on the
// caller's goroutine so progress lines and writes stay in program order.
func (o *Orchestrator) complete(ctx context.Context, res ProgramResult) ProgramResult {
	if res.Failed() {
		o.reportFailure(res)
		return res
	}
	if o.dryRun {
		fmt.Fprintf(o.out, "parsed   %s (page %d, %d semesters, %d records)\n",
			res.Program, res.Page, res.Semesters, len(res.Records))
		return res
	}

	start := time.Now().Add(-res.Elapsed)
	res.Stage = StagePersist
	ack, err := o.persist(ctx, res.Records)
	if err != nil {
		res = abandon(res, err, start)
		o.reportFailure(res)
		return res
	}
	res.Ack = ack
	res.Elapsed = time.Since(start)

	fmt.Fprintf(o.out, "loaded   %s (%d courses, %d links, %d prerequisites)\n",
		res.Program, ack.Courses, ack.Links, ack.Edges)
	o.log.Info().
		Str("program", res.Program).
		Int("page", res.Page).
		Int("courses", ack.Courses).
		Int("links", ack.Links).
		Int("edges", ack.Edges).
		Int("resolved", ack.Resolved).
		Int("pending", len(ack.Pending)).
		Dur("elapsed", res.Elapsed).
		Msg("program loaded")
	return res
}

func (o *Orchestrator) persist(ctx context.Context, batch []types.CourseRecord) (store.Ack, error) {
	if o.store == nil {
		return store.Ack{}, errors.New("no store configured")
	}
	if o.cfg.Timeouts.Batch > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeouts.Batch)
		defer cancel()
	}
	return o.store.Persist(ctx, batch)
}

// abandon records err against res, discarding any records. The stage is
// taken from the error.
func abandon(res ProgramResult, err error, start time.Time) ProgramResult {
	res.Stage = classify(err)
	res.Err = err
	res.Records = nil
	res.Elapsed = time.Since(start)
	return res
}

func (o *Orchestrator) reportFailure(res ProgramResult) {
	fmt.Fprintf(o.out, "failed   %s: %v\n", res.Program, res.Err)

	ev := o.log.Error().
		Err(res.Err).
		Str("program", res.Program).
		Str("stage", string(res.Stage))
	if res.Page > 0 {
		ev = ev.Int("page", res.Page)
	}
	var pe *parse.ParseError
	if errors.As(res.Err, &pe) {
		ev = ev.Int("line", pe.Line)
	}
	ev.Msg("program abandoned")
}

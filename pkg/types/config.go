// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultMarkerTemplate is the heading that opens a program's study plan in
// the prospectus. %s is replaced by the program name.
const DefaultMarkerTemplate = "Tentative Study Plan-Bachelor of Science (%s)"

// LocatorConfig holds settings for finding a program's page.
type LocatorConfig struct {
	// Document is the path to the extracted text of the prospectus. Pages
	// are separated by form feeds.
	Document string `json:"document" yaml:"document" mapstructure:"document"`

	// MarkerTemplate is a fmt template with one %s verb for the program name.
	MarkerTemplate string `json:"marker_template" yaml:"marker_template" mapstructure:"marker_template"`
}

// ParserConfig holds the grammar tokens and terminator policy of the
// course stream parser.
type ParserConfig struct {
	// SemesterToken marks a semester heading line (default "Semester-").
	SemesterToken string `json:"semester_token" yaml:"semester_token" mapstructure:"semester_token"`

	// TotalToken marks a semester summary row (default "Total").
	TotalToken string `json:"total_token" yaml:"total_token" mapstructure:"total_token"`

	// SkipAfterTotal is the number of lines consumed by a summary row,
	// counted from the TotalToken line itself (default 3). The TotalToken
	// line is always consumed, so 1 is the smallest value; 0 or less selects
	// the default.
	SkipAfterTotal int `json:"skip_after_total" yaml:"skip_after_total" mapstructure:"skip_after_total"`

	// TotalBlockLimit ends the program after this many summary rows
	// (default 8). Zero disables the count terminator.
	TotalBlockLimit int `json:"total_block_limit" yaml:"total_block_limit" mapstructure:"total_block_limit"`

	// EndPhrases end the program immediately when a line contains one. The
	// list is taken as given: nil or empty disables the phrase terminator.
	// DefaultParserConfig supplies "Eligibility for FYP-I".
	EndPhrases []string `json:"end_phrases" yaml:"end_phrases" mapstructure:"end_phrases"`

	// NoneSentinels are prerequisite values meaning "no prerequisite".
	NoneSentinels []string `json:"none_sentinels" yaml:"none_sentinels" mapstructure:"none_sentinels"`
}

// StoreDriver identifies the database/sql driver behind the store.
type StoreDriver string

const (
	DriverSQLite   StoreDriver = "sqlite3"
	DriverPostgres StoreDriver = "pgx"
)

// StoreConfig holds settings for the relational store.
type StoreConfig struct {
	// Driver selects the backend: sqlite3 or pgx.
	Driver StoreDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// DSN is a file path for sqlite3 or a connection URL for pgx.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`

	// PrerequisiteDelimiters split a raw prerequisite into codes. A raw
	// value is split only when it contains one of them.
	PrerequisiteDelimiters string `json:"prerequisite_delimiters" yaml:"prerequisite_delimiters" mapstructure:"prerequisite_delimiters"`

	// ConnectRetries is how many times a failed connection is retried with
	// exponential backoff (0 = default, negative = no retry).
	ConnectRetries int `json:"connect_retries,omitempty" yaml:"connect_retries,omitempty" mapstructure:"connect_retries"`
}

// TimeoutConfig bounds the blocking stages.
type TimeoutConfig struct {
	// Scan bounds the document scan of one program (0 = unbounded).
	Scan time.Duration `json:"scan" yaml:"scan" mapstructure:"scan"`

	// Batch bounds one program's persistence transaction (0 = unbounded).
	Batch time.Duration `json:"batch" yaml:"batch" mapstructure:"batch"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// JSON switches from the console writer to JSON lines.
	JSON bool `json:"json" yaml:"json" mapstructure:"json"`
}

// PipelineConfig groups all stage configurations for a load run.
type PipelineConfig struct {
	Locator  LocatorConfig `json:"locator" yaml:"locator" mapstructure:"locator"`
	Parser   ParserConfig  `json:"parser" yaml:"parser" mapstructure:"parser"`
	Store    StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Timeouts TimeoutConfig `json:"timeouts" yaml:"timeouts" mapstructure:"timeouts"`
	Log      LogConfig     `json:"log" yaml:"log" mapstructure:"log"`

	// Programs lists the program names processed by a run, in order.
	Programs []string `json:"programs" yaml:"programs" mapstructure:"programs"`

	// Workers is the number of programs parsed concurrently. Persistence
	// always runs through a single writer.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// DefaultParserConfig returns the grammar used by the FAST computing prospectus.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		SemesterToken:   "Semester-",
		TotalToken:      "Total",
		SkipAfterTotal:  3,
		TotalBlockLimit: 8,
		EndPhrases:      []string{"Eligibility for FYP-I"},
		// U+2014 and its UTF-8 bytes read back as Windows-1252.
		NoneSentinels: []string{"—", "â€”"},
	}
}

// DefaultPipelineConfig returns a configuration that loads the computing
// programs into a local SQLite database.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Locator: LocatorConfig{
			Document:       "data/prospectus.txt",
			MarkerTemplate: DefaultMarkerTemplate,
		},
		Parser: DefaultParserConfig(),
		Store: StoreConfig{
			Driver:                 DriverSQLite,
			DSN:                    "data/courses.db",
			PrerequisiteDelimiters: ";,",
		},
		Timeouts: TimeoutConfig{
			Scan:  30 * time.Second,
			Batch: time.Minute,
		},
		Log: LogConfig{Level: "info"},
		Programs: []string{
			"Computer Science",
			"Software Engineering",
			"Data Science",
			"Artificial Intelligence",
			"Cyber Security",
		},
		Workers: 1,
	}
}

// WithDefaults fills zero-valued tokens, sentinels and SkipAfterTotal from
// DefaultParserConfig. The terminators are left as given: TotalBlockLimit 0
// and an empty EndPhrases both mean disabled, so they are only defaulted by
// starting from DefaultParserConfig.
func (c ParserConfig) WithDefaults() ParserConfig {
	d := DefaultParserConfig()
	if c.SemesterToken == "" {
		c.SemesterToken = d.SemesterToken
	}
	if c.TotalToken == "" {
		c.TotalToken = d.TotalToken
	}
	if c.SkipAfterTotal < 1 {
		c.SkipAfterTotal = d.SkipAfterTotal
	}
	if c.TotalBlockLimit < 0 {
		c.TotalBlockLimit = 0
	}
	if len(c.NoneSentinels) == 0 {
		c.NoneSentinels = d.NoneSentinels
	}
	return c
}

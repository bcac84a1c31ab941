// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/prospectus/internal/logging"
	"github.com/pdiddy/prospectus/internal/store"
	"github.com/pdiddy/prospectus/pkg/types"
)

// loadConfig merges the config file, environment and flags over the
// defaults. Keys absent from every source keep their default value.
func loadConfig() (types.PipelineConfig, error) {
	return loadConfigFrom(viper.GetViper())
}

func loadConfigFrom(v *viper.Viper) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("reading configuration: %w", err)
	}
	// An explicit list, even an empty one, replaces the default phrases.
	if v.IsSet("parser.end_phrases") {
		cfg.Parser.EndPhrases = v.GetStringSlice("parser.end_phrases")
	}
	cfg.Parser = cfg.Parser.WithDefaults()
	if cfg.Locator.MarkerTemplate == "" {
		cfg.Locator.MarkerTemplate = types.DefaultMarkerTemplate
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func newLogger(cfg types.PipelineConfig) (zerolog.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.JSON, os.Stderr)
}

func openStore(ctx context.Context, cfg types.PipelineConfig) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	return st, nil
}

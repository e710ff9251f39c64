// Command pipeline cleans, enriches and zone-resolves the raw trip CSV,
// persisting the result as the intermediate artifact the loader consumes.
// main() stays tiny and delegates to run(); the pipeline entry point is
// injected via Deps so the command is testable without touching disk.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/config"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/pipeline"
)

// Deps holds the injectable boundaries of the command.
type Deps struct {
	RunPipeline func(ctx context.Context, cfg *config.Config) (pipeline.Stats, error)
}

func defaultDeps() Deps {
	return Deps{RunPipeline: pipeline.Run}
}

func run(ctx context.Context, cfg *config.Config, deps Deps) error {
	stats, err := deps.RunPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}
	if err := stats.Check(); err != nil {
		return fmt.Errorf("pipeline accounting: %w", err)
	}
	return nil
}

func main() {
	cfg := config.Load()
	if err := run(context.Background(), cfg, defaultDeps()); err != nil {
		log.Fatal(err)
	}
}

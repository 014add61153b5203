package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sketchkit/preview/internal/logging"
	"github.com/sketchkit/preview/internal/loop"
	"github.com/sketchkit/preview/internal/renderer"
	"github.com/sketchkit/preview/internal/types"
)

func renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render a single static frame to PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildRenderer(types.ModeStatic, nil)
			if err != nil {
				return err
			}
			defer r.Destroy()

			result, err := r.RenderStatic()
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("render failed: %s", result.ErrorMessage)
			}

			if err := r.Surface().SavePNG(flagOut); err != nil {
				return fmt.Errorf("failed to save %s: %w", flagOut, err)
			}

			stats, _ := r.EncodeStats()
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %s in %.1fms\n%s\n",
				flagOut, result.ExecutionTimeMs, stats)
			return nil
		},
	}
}

// buildRenderer assembles a renderer from the global flags. A non-nil
// scheduler replaces the default ticker, which the loop subcommand uses
// to run ticks synchronously.
func buildRenderer(mode types.Mode, sched loop.Scheduler) (*renderer.Renderer, error) {
	if flagScript == "" {
		return nil, fmt.Errorf("--script is required")
	}
	script, err := os.ReadFile(flagScript)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	log := logging.NewNop()
	if flagVerbose {
		if dev, err := logging.New(logging.DevelopmentConfig()); err == nil {
			log = dev
		}
	}

	return renderer.New(renderer.Options{
		Script:       string(script),
		Mode:         mode,
		Width:        flagWidth,
		Height:       flagHeight,
		Seed:         flagSeed,
		VarInputs:    flagVarInputs,
		TotalFrames:  flagTotalFrames,
		MaxDimension: flagMaxDimension,
		Scheduler:    sched,
		Logger:       log,
	})
}

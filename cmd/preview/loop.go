package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sketchkit/preview/internal/loop"
	"github.com/sketchkit/preview/internal/types"
)

func loopCmd() *cobra.Command {
	var frames int

	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Run N loop ticks synchronously and save the final frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			// A manual scheduler turns the animation loop into a batch:
			// each Step runs exactly one tick on this goroutine.
			sched := loop.NewManualScheduler()

			r, err := buildRenderer(types.ModeLoop, sched)
			if err != nil {
				return err
			}
			defer r.Destroy()

			if err := r.StartLoop(); err != nil {
				return err
			}
			for i := 0; i < frames && r.IsRendering(); i++ {
				if !sched.Step() {
					break
				}
			}
			r.StopLoop()

			if err := r.Surface().SavePNG(flagOut); err != nil {
				return fmt.Errorf("failed to save %s: %w", flagOut, err)
			}

			stats, _ := r.EncodeStats()
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n%s\n", flagOut, stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&frames, "frames", 120, "Number of ticks to run")
	return cmd
}

// preview is a developer harness for the sandboxed sketch runtime.
//
// Usage:
//
//	preview render --script sketch.js --width 800 --height 600 --out out.png
//	preview loop --script sketch.js --frames 120 --out out.png
//
// The core library carries no CLI surface of its own; this binary exists
// for local inspection of script output.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagScript       string
	flagWidth        int
	flagHeight       int
	flagSeed         int64
	flagTotalFrames  int
	flagMaxDimension int
	flagVarInputs    []float64
	flagOut          string
	flagVerbose      bool
)

func main() {
	root := &cobra.Command{
		Use:           "preview",
		Short:         "Run sandboxed sketch scripts against a software canvas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagScript, "script", "", "Path to the sketch script")
	root.PersistentFlags().IntVar(&flagWidth, "width", 800, "Semantic width")
	root.PersistentFlags().IntVar(&flagHeight, "height", 600, "Semantic height")
	root.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Random seed")
	root.PersistentFlags().IntVar(&flagTotalFrames, "total-frames", 0, "Script-visible loop length")
	root.PersistentFlags().IntVar(&flagMaxDimension, "max-dimension", 0, "Render buffer cap (0 = default)")
	root.PersistentFlags().Float64SliceVar(&flagVarInputs, "var", nil, "Variable inputs, 0-100, up to 10")
	root.PersistentFlags().StringVar(&flagOut, "out", "out.png", "Output PNG path")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Development logging")

	root.AddCommand(renderCmd())
	root.AddCommand(loopCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

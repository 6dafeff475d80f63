package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"binpack2d/rectpack"
)

const version = "0.1.0"

// Options bundles the command line settings of the pack command.
type Options struct {
	InputDir       string
	OutputDir      string
	MaxWidth       int
	MaxHeight      int
	Padding        int
	Trim           bool
	AlphaThreshold uint
	SortFiles      bool
	AllowRotate    bool
	Heuristic      string
	AutoSize       bool
	PowerOfTwo     bool
}

var opts Options

var cmdRoot = cobra.Command{
	Use:           "binpack2d",
	Short:         "binpack2d packs sprite images into texture atlases.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var cmdPack = cobra.Command{
	Use:   "pack",
	Short: "Pack a directory of PNG images into texture atlases.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if _, err := rectpack.ParseHeuristic(opts.Heuristic); err != nil {
			return err
		}
		return runPack(&opts)
	},
}

var cmdUnpack = cobra.Command{
	Use:   "unpack <atlases.json>",
	Short: "Split atlases back into the original sprite images.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runUnpack(args[0], opts.OutputDir)
	},
}

func init() {
	flags := cmdPack.Flags()
	flags.StringVarP(&opts.InputDir, "input", "i", "input", "directory of PNG images to pack")
	flags.StringVarP(&opts.OutputDir, "output", "o", "output", "directory for the atlas images and sheet metadata")
	flags.IntVar(&opts.MaxWidth, "width", rectpack.DefaultSize, "maximum atlas width")
	flags.IntVar(&opts.MaxHeight, "height", rectpack.DefaultSize, "maximum atlas height")
	flags.IntVar(&opts.Padding, "padding", 0, "gap between sprites in pixels")
	flags.BoolVar(&opts.Trim, "trim", true, "trim transparent borders from sprites")
	flags.UintVar(&opts.AlphaThreshold, "threshold", 0, "alpha value above which a pixel counts as opaque")
	flags.BoolVar(&opts.SortFiles, "sort", true, "process files in natural name order")
	flags.BoolVar(&opts.AllowRotate, "rotate", true, "allow rotating sprites to improve placement")
	flags.StringVar(&opts.Heuristic, "heuristic", "BestAreaFit",
		"placement heuristic (BestShortSideFit, BestLongSideFit, BestAreaFit, BottomLeft, ContactPoint)")
	flags.BoolVar(&opts.AutoSize, "auto-size", true, "shrink each atlas to its tight bounds")
	flags.BoolVar(&opts.PowerOfTwo, "pow-of-two", false, "round atlas dimensions up to powers of two")

	cmdUnpack.Flags().StringVarP(&opts.OutputDir, "output", "o", "output", "directory for the extracted sprites")

	cmdRoot.AddCommand(&cmdPack, &cmdUnpack)
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

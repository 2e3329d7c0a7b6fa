// Command imgdiff compares two images and writes difference renders, changed
// regions and a text report.
//
//	imgdiff [flags] IMAGE1 IMAGE2
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvr-ai/go-imgdiff/config"
	"github.com/nvr-ai/go-imgdiff/diff"
	"github.com/nvr-ai/go-imgdiff/images"
	"github.com/nvr-ai/go-imgdiff/profiler"
	"github.com/nvr-ai/go-imgdiff/report"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("imgdiff", pflag.ContinueOnError)
	config.RegisterSingleFlags(fs)
	profile := fs.Bool("profile", false, "Print stage timings when done.")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: imgdiff [flags] IMAGE1 IMAGE2\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 1
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return 1
	}

	prof := profiler.New(profiler.Options{})
	logger := log.New(os.Stderr, "", log.LstdFlags)
	pathA, pathB := fs.Arg(0), fs.Arg(1)

	cmp, err := open(prof, logger, pathA, pathB)
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		return 1
	}

	switch cfg.Mode {
	case config.ModeQuick:
		err = runQuick(cmp, cfg, prof)
	default:
		err = runFull(cmp, cfg, prof, pathA, pathB)
	}
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		return 1
	}

	if *profile {
		if err := prof.WriteReport(os.Stdout); err != nil {
			logger.Printf("failed to print profile: %v", err)
		}
	}
	return 0
}

// open loads both images and computes their difference, timing the two
// stages separately.
func open(prof *profiler.Profiler, logger *log.Logger, pathA, pathB string) (*diff.Comparison, error) {
	done := prof.StartOperation(profiler.StageLoad)
	a, err := images.Load(pathA)
	if err != nil {
		done()
		return nil, err
	}
	b, err := images.Load(pathB)
	done()
	if err != nil {
		return nil, err
	}

	done = prof.StartOperation(profiler.StageDiff)
	defer done()
	return diff.FromImages(a, b, diff.WithLogger(logger))
}

func runQuick(cmp *diff.Comparison, cfg config.Config, prof *profiler.Profiler) error {
	done := prof.StartOperation(profiler.StageRender)
	stats, err := report.SaveQuick(cmp, report.QuickDiffFile, cfg.MaskParams())
	done()
	if err != nil {
		return err
	}

	fmt.Printf("\n📊 Quick comparison\n")
	fmt.Printf("%s\n", strings.Repeat("=", 50))
	fmt.Printf("Difference: %.2f%%\n", stats.DiffPercentage)
	fmt.Printf("Changed pixels: %.2f%%\n", stats.ChangedPercentage)
	fmt.Printf("Verdict: %s\n", report.Verdict(stats.DiffPercentage))
	fmt.Printf("\n✅ Difference image saved to '%s'\n", report.QuickDiffFile)

	return nil
}

func runFull(cmp *diff.Comparison, cfg config.Config, prof *profiler.Profiler, pathA, pathB string) error {
	fmt.Printf("\n🔍 Comparing images...\n")
	fmt.Printf("%s\n", strings.Repeat("=", 50))

	opts := cfg.ReportOptions()
	opts.SourceA, opts.SourceB = pathA, pathB

	done := prof.StartOperation(profiler.StageSave)
	info, err := report.SaveComparison(cmp, cfg.OutputDir, opts)
	done()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf, info); err != nil {
		return err
	}
	fmt.Print(buf.String())
	fmt.Printf("\n✅ Results saved to '%s'\n", cfg.OutputDir)
	fmt.Printf("✅ Side-by-side image saved to '%s'\n", filepath.Join(cfg.OutputDir, report.SideBySideFile))

	return nil
}

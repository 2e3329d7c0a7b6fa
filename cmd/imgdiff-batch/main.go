// Command imgdiff-batch compares many image pairs listed in a CSV manifest or
// matched by file name across two directories.
//
//	imgdiff-batch [flags] (--csv FILE | --dir-a DIR --dir-b DIR)
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nvr-ai/go-imgdiff/batch"
	"github.com/nvr-ai/go-imgdiff/config"
	"github.com/nvr-ai/go-imgdiff/profiler"
	"github.com/nvr-ai/go-imgdiff/report"
	"github.com/nvr-ai/go-imgdiff/util"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"
)

// Summary file names written into the output directory.
const (
	summaryJSONFile = "results.json"
	summaryCSVFile  = "results.csv"
	summaryHTMLFile = "summary_report.html"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("imgdiff-batch", pflag.ContinueOnError)
	config.RegisterBatchFlags(fs)
	csvPath := fs.String("csv", "", "CSV manifest: image1,image2[,name[,description]] with a header row.")
	dirA := fs.String("dir-a", "", "Directory of reference images.")
	dirB := fs.String("dir-b", "", "Directory of images to compare, matched by file name.")
	progress := fs.Bool("progress", true, "Show a progress bar instead of per-pair lines.")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return 1
	}

	pairs, err := loadPairs(*csvPath, *dirA, *dirB)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return 1
	}
	if len(pairs) == 0 {
		fmt.Printf("⚠️  No image pairs to compare\n")
		return 0
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Printf("❌ Failed to create output directory: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prof := profiler.New(profiler.Options{WithRuntimeMetrics: cfg.MetricsFile != ""})
	logger := log.New(os.Stderr, "", log.LstdFlags)

	fmt.Printf("\n🚀 Comparing %d pairs with %d workers\n", len(pairs), cfg.Workers)
	fmt.Printf("   💾 Output directory: %s\n", cfg.OutputDir)
	fmt.Printf("   ⚙️  Threshold: %d, morphology: %d, blur: %d, min area: %d\n",
		cfg.Threshold, cfg.MorphologyKernelSize, cfg.BlurKernelSize, cfg.MinArea)

	runner := &batch.Runner{
		Workers:   cfg.Workers,
		OutputDir: cfg.OutputDir,
		Options:   cfg.ReportOptions(),
		Profiler:  prof,
		Logger:    logger,
	}

	if *progress {
		bar := progressbar.NewOptions(len(pairs),
			progressbar.OptionSetDescription(" 📊 Comparing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
		runner.OnResult = func(batch.Result) { _ = bar.Add(1) }
	} else {
		runner.OnResult = func(res batch.Result) {
			switch res.Status {
			case report.StatusSuccess:
				fmt.Printf("  ✅ [row %d] %s: difference %.2f%%\n", res.RowNumber, res.Name, res.DiffPercentage)
			case report.StatusError:
				fmt.Printf("  ❌ [row %d] %s: %s\n", res.RowNumber, res.Name, res.ErrorMessage)
			default:
				fmt.Printf("  ⏭️  [row %d] %s: skipped\n", res.RowNumber, res.Name)
			}
		}
	}

	results := runner.Run(ctx, pairs)
	summary := report.Summarize(results, time.Now())

	if err := writeSummaries(cfg.OutputDir, summary); err != nil {
		fmt.Printf("❌ %v\n", err)
		return 1
	}
	if cfg.MetricsFile != "" {
		if err := prof.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Printf("⚠️  %v", err)
		}
	}

	fmt.Printf("\n%s\nBatch summary\n%s\n", strings.Repeat("=", 60), strings.Repeat("=", 60))
	fmt.Printf("Total: %d\nSucceeded: %d\nFailed: %d\n", summary.Total, summary.Succeeded, summary.Failed)
	if summary.Skipped > 0 {
		fmt.Printf("Skipped: %d\n", summary.Skipped)
	}
	if summary.Succeeded > 0 {
		fmt.Printf("Average difference: %.2f%%\n", summary.AverageDiff)
	}
	fmt.Printf("\n📁 Results in %s\n", cfg.OutputDir)
	fmt.Printf("  - HTML report: %s\n", summaryHTMLFile)
	fmt.Printf("  - JSON data: %s\n", summaryJSONFile)
	fmt.Printf("  - CSV results: %s\n", summaryCSVFile)

	if ctx.Err() != nil {
		return 1
	}
	return 0
}

func loadPairs(csvPath, dirA, dirB string) ([]util.ImagePair, error) {
	switch {
	case csvPath != "" && (dirA != "" || dirB != ""):
		return nil, errors.New("use either --csv or --dir-a/--dir-b, not both")
	case csvPath != "":
		fmt.Printf("📂 Reading manifest: %s\n", csvPath)
		pairs, skipped, err := util.LoadPairsCSV(csvPath)
		for _, s := range skipped {
			fmt.Printf("⚠️  Row %d: %s\n", s.RowNumber, s.Reason)
		}
		return pairs, err
	case dirA != "" && dirB != "":
		return util.LoadDirectoryPairs(dirA, dirB)
	default:
		return nil, errors.New("either --csv or both --dir-a and --dir-b are required")
	}
}

func writeSummaries(dir string, summary report.Summary) error {
	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{summaryJSONFile, func(f *os.File) error { return report.WriteSummaryJSON(f, summary) }},
		{summaryCSVFile, func(f *os.File) error { return report.WriteSummaryCSV(f, summary.Results) }},
		{summaryHTMLFile, func(f *os.File) error { return report.WriteSummaryHTML(f, summary) }},
	}

	for _, file := range files {
		path := filepath.Join(dir, file.name)
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", path)
		}
		werr := file.write(f)
		cerr := f.Close()
		if werr != nil {
			return werr
		}
		if cerr != nil {
			return errors.Wrapf(cerr, "failed to close %s", path)
		}
	}
	return nil
}

// Package batch - Concurrent comparison of many image pairs.
//
// Pairs are independent, so they run on a fixed-size worker pool. Results are
// delivered back in input order regardless of which pair finishes first, and
// a failing pair never stops the others.
package batch

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/nvr-ai/go-imgdiff/diff"
	"github.com/nvr-ai/go-imgdiff/images"
	"github.com/nvr-ai/go-imgdiff/profiler"
	"github.com/nvr-ai/go-imgdiff/report"
	"github.com/nvr-ai/go-imgdiff/util"
	"github.com/sourcegraph/conc/stream"
)

// Result is the outcome of one pair.
type Result = report.PairResult

// Runner compares a list of image pairs on a bounded worker pool.
type Runner struct {
	// Workers is the pool size; values below 1 mean 1.
	Workers int
	// OutputDir receives one row_<n>_<name> directory per successful pair.
	// When empty, pairs are analyzed but nothing is written.
	OutputDir string
	// Options are the render and statistics parameters for every pair.
	Options report.Options
	// Profiler optionally records stage timings and outcomes.
	Profiler *profiler.Profiler
	// Logger optionally receives one line per failed pair and resampling notices.
	Logger *log.Logger
	// OnResult, when set, is called once per pair in input order as results
	// become available. Calls never overlap.
	OnResult func(Result)
}

// Run compares every pair and returns one result per pair, in input order.
//
// Cancelling ctx stops new pairs from starting; pairs already running finish
// normally and the rest are reported with report.StatusSkipped.
//
// Arguments:
//   - ctx: Cancels the batch at pair granularity.
//   - pairs: The pairs to compare.
//
// Returns:
//   - []Result: One entry per pair, same order as pairs.
//
// Example:
//
// ```go
//
//	runner := &batch.Runner{Workers: 4, OutputDir: "out", Options: report.DefaultOptions()}
//	results := runner.Run(ctx, pairs)
//	summary := report.Summarize(results, time.Now())
//
// ```
func (r *Runner) Run(ctx context.Context, pairs []util.ImagePair) []Result {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(pairs))
	s := stream.New().WithMaxGoroutines(workers)

	for i, pair := range pairs {
		s.Go(func() stream.Callback {
			res := r.runPair(ctx, pair)
			return func() {
				results[i] = res
				r.record(res)
				if r.OnResult != nil {
					r.OnResult(res)
				}
			}
		})
	}
	s.Wait()

	return results
}

func (r *Runner) runPair(ctx context.Context, pair util.ImagePair) Result {
	res := Result{
		RowNumber:   pair.RowNumber,
		Name:        pair.Name,
		Description: pair.Description,
		Image1:      pair.Image1,
		Image2:      pair.Image2,
	}
	if ctx.Err() != nil {
		res.Status = report.StatusSkipped
		res.ErrorMessage = ctx.Err().Error()
		return res
	}

	start := time.Now()
	err := r.compare(pair, &res)
	res.Duration = time.Since(start)
	if r.Profiler != nil {
		r.Profiler.RecordDuration(profiler.StagePair, res.Duration)
	}

	if err != nil {
		res.Status = report.StatusError
		res.ErrorMessage = err.Error()
		if r.Logger != nil {
			r.Logger.Printf("❌ row %d (%s): %v", pair.RowNumber, pair.Name, err)
		}
		return res
	}
	res.Status = report.StatusSuccess

	return res
}

func (r *Runner) compare(pair util.ImagePair, res *Result) error {
	done := r.time(profiler.StageLoad)
	a, err := images.Load(pair.Image1)
	if err != nil {
		done()
		return err
	}
	b, err := images.Load(pair.Image2)
	done()
	if err != nil {
		return err
	}

	var opts []diff.Option
	if r.Logger != nil {
		opts = append(opts, diff.WithLogger(r.Logger))
	}
	done = r.time(profiler.StageDiff)
	cmp, err := diff.FromImages(a, b, opts...)
	done()
	if err != nil {
		return err
	}

	reportOpts := r.Options
	reportOpts.SourceA, reportOpts.SourceB = pair.Image1, pair.Image2

	if r.OutputDir == "" {
		done = r.time(profiler.StageRegions)
		info, err := report.Analyze(cmp, reportOpts)
		done()
		if err != nil {
			return err
		}
		res.Fill(info)
		return nil
	}

	done = r.time(profiler.StageSave)
	defer done()
	return report.SavePair(cmp, filepath.Join(r.OutputDir, pair.DirName()), reportOpts, res)
}

func (r *Runner) time(stage string) func() {
	if r.Profiler == nil {
		return func() {}
	}
	return r.Profiler.StartOperation(stage)
}

func (r *Runner) record(res Result) {
	if r.Profiler != nil {
		r.Profiler.RecordPair(string(res.Status), res.DiffPercentage)
	}
}

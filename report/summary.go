package report

import (
	"encoding/csv"
	"encoding/json"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Status is the outcome of one batch pair.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	// StatusSkipped marks pairs never started because the batch was cancelled.
	StatusSkipped Status = "skipped"
)

// PairResult is one row of a batch run.
type PairResult struct {
	RowNumber   int    `json:"row_number"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image1      string `json:"image1"`
	Image2      string `json:"image2"`
	Status      Status `json:"status"`

	DiffPercentage    float64 `json:"diff_percentage,omitempty"`
	ChangedPixels     int     `json:"changed_pixels,omitempty"`
	ChangedPercentage float64 `json:"changed_percentage,omitempty"`
	MeanDiffR         float64 `json:"mean_diff_r,omitempty"`
	MeanDiffG         float64 `json:"mean_diff_g,omitempty"`
	MeanDiffB         float64 `json:"mean_diff_b,omitempty"`
	ImageWidth        int     `json:"image_width,omitempty"`
	ImageHeight       int     `json:"image_height,omitempty"`
	Resampled         bool    `json:"resampled,omitempty"`
	RegionCount       int     `json:"region_count,omitempty"`
	Identical         bool    `json:"identical,omitempty"`

	// OutputDir is the directory holding this pair's artifacts.
	OutputDir string `json:"output_dir,omitempty"`
	// ErrorMessage is set when Status is StatusError.
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration_ns,omitempty"`
}

// Summary aggregates a batch.
type Summary struct {
	Total       int          `json:"total"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	AverageDiff float64      `json:"average_diff_percentage"`
	GeneratedAt time.Time    `json:"generated_at"`
	Results     []PairResult `json:"results"`
}

// Summarize counts statuses and averages the difference of successful rows.
func Summarize(results []PairResult, now time.Time) Summary {
	s := Summary{Total: len(results), GeneratedAt: now, Results: results}
	var sum float64
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
			sum += r.DiffPercentage
		case StatusError:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	if s.Succeeded > 0 {
		s.AverageDiff = sum / float64(s.Succeeded)
	}
	return s
}

// WriteSummaryJSON writes the summary as indented JSON.
func WriteSummaryJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, "failed to encode summary")
	}
	return nil
}

var csvHeader = []string{
	"row_number", "name", "description", "image1", "image2",
	"status", "diff_percentage", "changed_percentage", "error_message",
}

// WriteSummaryCSV writes one line per result. Percentages are empty for rows
// that did not succeed.
func WriteSummaryCSV(w io.Writer, results []PairResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}
	for _, r := range results {
		diffPct, changedPct := "", ""
		if r.Status == StatusSuccess {
			diffPct = strconv.FormatFloat(r.DiffPercentage, 'f', -1, 64)
			changedPct = strconv.FormatFloat(r.ChangedPercentage, 'f', -1, 64)
		}
		record := []string{
			strconv.Itoa(r.RowNumber), r.Name, r.Description, r.Image1, r.Image2,
			string(r.Status), diffPct, changedPct, r.ErrorMessage,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write csv row %d", r.RowNumber)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"shade":   shadeClass,
	"upper":   func(s Status) string { return strings.ToUpper(string(s)) },
	"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + "%" },
	"ok":      func(s Status) bool { return s == StatusSuccess },
}).Parse(summaryHTML))

// WriteSummaryHTML renders the summary as a standalone HTML page.
func WriteSummaryHTML(w io.Writer, s Summary) error {
	if err := summaryTemplate.Execute(w, s); err != nil {
		return errors.Wrap(err, "failed to render html summary")
	}
	return nil
}

const summaryHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Image comparison results</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 20px; background-color: #f5f5f5; }
h1 { color: #333; border-bottom: 2px solid #4CAF50; padding-bottom: 10px; }
.summary { background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.summary-stats { display: flex; gap: 20px; margin-top: 10px; }
.stat-box { flex: 1; padding: 15px; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; border-radius: 8px; text-align: center; }
.stat-box.success { background: linear-gradient(135deg, #56ab2f 0%, #a8e063 100%); }
.stat-box.error { background: linear-gradient(135deg, #eb3349 0%, #f45c43 100%); }
.stat-number { font-size: 2em; font-weight: bold; }
table { width: 100%; border-collapse: collapse; background: white; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
th { background: #4CAF50; color: white; padding: 12px; text-align: left; }
td { padding: 10px; border-bottom: 1px solid #ddd; }
.status-success { color: green; font-weight: bold; }
.status-error, .status-skipped { color: red; font-weight: bold; }
.diff-low { background: #c8e6c9; }
.diff-medium { background: #fff9c4; }
.diff-high { background: #ffccbc; }
.timestamp { color: #666; font-size: 0.9em; margin-top: 20px; }
</style>
</head>
<body>
<h1>Image comparison results</h1>
<div class="summary">
<h2>Summary</h2>
<div class="summary-stats">
<div class="stat-box"><div class="stat-number">{{.Total}}</div><div>Compared</div></div>
<div class="stat-box success"><div class="stat-number">{{.Succeeded}}</div><div>Succeeded</div></div>
<div class="stat-box error"><div class="stat-number">{{.Failed}}</div><div>Failed</div></div>
</div>
{{if .Succeeded}}<p>Average difference: {{percent .AverageDiff}}</p>{{end}}
</div>
<h2>Details</h2>
<table>
<thead>
<tr><th>Row</th><th>Name</th><th>Description</th><th>Status</th><th>Difference</th><th>Changed pixels</th><th>Output</th></tr>
</thead>
<tbody>
{{- range .Results}}
<tr{{if ok .Status}} class="{{shade .DiffPercentage}}"{{end}}>
<td>{{.RowNumber}}</td>
<td>{{.Name}}</td>
<td>{{.Description}}</td>
<td class="status-{{.Status}}">{{upper .Status}}</td>
{{if ok .Status}}<td>{{percent .DiffPercentage}}</td><td>{{percent .ChangedPercentage}}</td>{{else}}<td>N/A</td><td>{{.ErrorMessage}}</td>{{end}}
<td>{{.OutputDir}}</td>
</tr>
{{- end}}
</tbody>
</table>
<div class="timestamp">Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</div>
</body>
</html>
`

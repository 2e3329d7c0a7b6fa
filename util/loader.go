package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvr-ai/go-imgdiff/images"
	"github.com/pkg/errors"
)

// ImagePair is one comparison job read from a manifest.
type ImagePair struct {
	// RowNumber is the 1-based line of the manifest the pair came from; the
	// first data row after the header is 2. Directory pairs are numbered the
	// same way in name order.
	RowNumber int `json:"row_number"`
	// Name labels the pair in reports and names its output directory.
	Name string `json:"name"`
	// Description is free text carried into reports.
	Description string `json:"description,omitempty"`
	// Image1 and Image2 are the paths being compared.
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`
}

// DirName returns the per-pair output directory name, row_<n>_<name>, with
// spaces and path separators replaced by underscores.
func (p ImagePair) DirName() string {
	name := strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(p.Name)
	return fmt.Sprintf("row_%d_%s", p.RowNumber, name)
}

// SkippedRow records a manifest row that could not become a pair.
type SkippedRow struct {
	RowNumber int
	Reason    string
}

// LoadPairsCSV reads a pair manifest. The first row is a header and is
// ignored. Columns are image1, image2, an optional name (defaults to
// Row_<n>) and an optional description. Rows with fewer than two non-empty
// path columns are skipped and reported.
//
// Arguments:
//   - path: The CSV file.
//
// Returns:
//   - []ImagePair: The pairs in file order.
//   - []SkippedRow: Rows that were ignored and why.
//   - error: An error if the file cannot be opened or parsed.
func LoadPairsCSV(path string) ([]ImagePair, []SkippedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return ReadPairsCSV(f)
}

// ReadPairsCSV is LoadPairsCSV over an already open reader.
func ReadPairsCSV(r io.Reader) ([]ImagePair, []SkippedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		pairs   []ImagePair
		skipped []SkippedRow
	)
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to parse csv row %d", line)
		}
		if line == 1 {
			continue
		}

		field := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		if len(row) < 2 || field(0) == "" || field(1) == "" {
			skipped = append(skipped, SkippedRow{RowNumber: line, Reason: "incomplete row, need image1 and image2"})
			continue
		}

		name := field(2)
		if name == "" {
			name = fmt.Sprintf("Row_%d", line)
		}
		pairs = append(pairs, ImagePair{
			RowNumber:   line,
			Name:        name,
			Description: field(3),
			Image1:      field(0),
			Image2:      field(1),
		})
	}

	return pairs, skipped, nil
}

// LoadDirectoryPairs pairs every image in dirA with the file of the same name
// in dirB. Files present on only one side are ignored.
//
// Arguments:
//   - dirA: Directory of reference images.
//   - dirB: Directory of images to compare.
//
// Returns:
//   - []ImagePair: Pairs sorted by file name, numbered from 2 like CSV rows.
//   - error: An error if either directory cannot be read.
func LoadDirectoryPairs(dirA, dirB string) ([]ImagePair, error) {
	namesA, err := imageFileNames(dirA)
	if err != nil {
		return nil, err
	}
	namesB, err := imageFileNames(dirB)
	if err != nil {
		return nil, err
	}

	var common []string
	for name := range namesA {
		if namesB[name] {
			common = append(common, name)
		}
	}
	sort.Strings(common)

	pairs := make([]ImagePair, 0, len(common))
	for i, name := range common {
		pairs = append(pairs, ImagePair{
			RowNumber: i + 2,
			Name:      strings.TrimSuffix(name, filepath.Ext(name)),
			Image1:    filepath.Join(dirA, name),
			Image2:    filepath.Join(dirB, name),
		})
	}

	return pairs, nil
}

func imageFileNames(dir string) (map[string]bool, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	names := make(map[string]bool, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if isImageFile(file.Name()) {
			names[file.Name()] = true
		}
	}

	return names, nil
}

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range images.SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPairsCSV(t *testing.T) {
	manifest := strings.Join([]string{
		"image1,image2,name,description",
		"a/1.png,b/1.png,Home page,landing hero",
		"a/2.png,b/2.png",
		"only-one.png",
		"a/3.png, b/3.png ,,",
		",b/4.png,empty first",
	}, "\n")

	pairs, skipped, err := ReadPairsCSV(strings.NewReader(manifest))
	require.NoError(t, err)

	require.Len(t, pairs, 3)
	assert.Equal(t, ImagePair{RowNumber: 2, Name: "Home page", Description: "landing hero", Image1: "a/1.png", Image2: "b/1.png"}, pairs[0])
	assert.Equal(t, "Row_3", pairs[1].Name)
	assert.Equal(t, "b/3.png", pairs[2].Image2)
	assert.Equal(t, 5, pairs[2].RowNumber)

	require.Len(t, skipped, 2)
	assert.Equal(t, 4, skipped[0].RowNumber)
	assert.Equal(t, 6, skipped[1].RowNumber)
}

func TestReadPairsCSVHeaderOnly(t *testing.T) {
	pairs, skipped, err := ReadPairsCSV(strings.NewReader("image1,image2\n"))
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Empty(t, skipped)
}

func TestLoadPairsCSVMissingFile(t *testing.T) {
	_, _, err := LoadPairsCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImagePairDirName(t *testing.T) {
	p := ImagePair{RowNumber: 7, Name: "Home page/v2"}
	assert.Equal(t, "row_7_Home_page_v2", p.DirName())
}

func TestLoadDirectoryPairs(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "only-a.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dirA, name), []byte("x"), 0o644))
	}
	for _, name := range []string{"a.JPG", "b.png", "only-b.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dirB, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dirA, "sub.png"), 0o755))

	pairs, err := LoadDirectoryPairs(dirA, dirB)
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, "a", pairs[0].Name)
	assert.Equal(t, 2, pairs[0].RowNumber)
	assert.Equal(t, filepath.Join(dirA, "a.JPG"), pairs[0].Image1)
	assert.Equal(t, filepath.Join(dirB, "b.png"), pairs[1].Image2)
}

func TestLoadDirectoryPairsMissingDir(t *testing.T) {
	_, err := LoadDirectoryPairs(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.Error(t, err)
}

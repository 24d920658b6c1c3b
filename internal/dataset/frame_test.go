package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"landslide-backend/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "alti,slope,label\n120.5,30,landslide\n80,12.25,stable\n")

	frame, err := dataset.ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"alti", "slope", "label"}, frame.Columns)
	assert.Equal(t, 2, frame.NumRows())
	assert.True(t, frame.HasColumn("slope"))
	assert.False(t, frame.HasColumn("aspect"))

	labels, err := frame.Column("label")
	require.NoError(t, err)
	assert.Equal(t, []string{"landslide", "stable"}, labels)

	matrix, err := frame.Matrix([]string{"slope", "alti"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{30, 120.5}, {12.25, 80}}, matrix)
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := dataset.ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestMissingColumns(t *testing.T) {
	path := writeCSV(t, "alti,slope\n1,2\n")
	frame, err := dataset.ReadCSV(path)
	require.NoError(t, err)

	assert.Empty(t, frame.MissingColumns([]string{"alti", "slope"}))
	assert.Equal(t, []string{"clay", "aspect"}, frame.MissingColumns([]string{"clay", "slope", "aspect"}))
}

func TestMatrixNonNumeric(t *testing.T) {
	path := writeCSV(t, "alti,label\n1,landslide\n")
	frame, err := dataset.ReadCSV(path)
	require.NoError(t, err)

	_, err = frame.Matrix([]string{"label"})
	assert.ErrorContains(t, err, "non-numeric")
}

func TestNewFrameRejectsRaggedRows(t *testing.T) {
	_, err := dataset.NewFrame([]string{"a", "b"}, [][]string{{"1"}})
	assert.Error(t, err)

	_, err = dataset.NewFrame([]string{"a", "a"}, nil)
	assert.ErrorContains(t, err, "duplicate column")
}

func TestEncodeLabels(t *testing.T) {
	classes, encoded := dataset.EncodeLabels([]string{"stable", "landslide", "stable", "landslide"})
	assert.Equal(t, []string{"landslide", "stable"}, classes)
	assert.Equal(t, []int{1, 0, 1, 0}, encoded)
}

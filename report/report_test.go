package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

func sampleTable() *table.Table {
	return table.MustNew(
		table.NewNumeric("Age", []float64{25, 30, math.NaN(), 40, 50}),
		table.NewNumeric("Salary", []float64{50000, 60000, 70000, 80000, 90000}),
		table.NewText("City", []string{"Tokyo", "Osaka", "Tokyo", "Nagoya", "Tokyo"}, nil),
	)
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, sampleTable()))
	out := buf.String()

	for _, want := range []string{"column", "mean", "25%", "Age", "Salary", "unique", "City", "Tokyo"} {
		assert.Contains(t, out, want)
	}
	// Age: 4 values, mean 36.25
	assert.Contains(t, out, "36.25")
	assert.Contains(t, out, "70000")

	numericOnly := table.MustNew(table.NewNumeric("x", []float64{1, 2, 3}))
	buf.Reset()
	require.NoError(t, Summary(&buf, numericOnly))
	assert.NotContains(t, buf.String(), "unique")
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, Generate(sampleTable(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	assert.Contains(t, string(data), "%%EOF")
}

func TestWriteWithoutHeatmap(t *testing.T) {
	single := table.MustNew(
		table.NewNumeric("x", []float64{1, 2, 3}),
		table.NewText("label", []string{"a", "b", "a"}, nil),
	)
	var withImage, withoutImage bytes.Buffer
	require.NoError(t, Write(&withImage, sampleTable()))
	require.NoError(t, Write(&withoutImage, single))

	assert.True(t, strings.HasPrefix(withoutImage.String(), "%PDF-"))
	assert.Contains(t, withImage.String(), "/Subtype /Image")
	assert.NotContains(t, withoutImage.String(), "/Subtype /Image")
}

func TestGenerateErrors(t *testing.T) {
	err := Generate(sampleTable(), filepath.Join(t.TempDir(), "missing", "report.pdf"))
	assert.True(t, errors.Is(err, errors.ErrIOFailure))

	var buf bytes.Buffer
	empty, err := table.New()
	require.NoError(t, err)
	err = Write(&buf, empty)
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

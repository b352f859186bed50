package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/parkeval/internal/assess"
	"github.com/dshills/parkeval/internal/profile"
	"github.com/dshills/parkeval/internal/project"
)

func sampleReport(t *testing.T) *assess.Report {
	t.Helper()
	prof, err := profile.LoadBuiltin("park")
	require.NoError(t, err)
	sub, err := project.Load("../../testdata/submissions/park.yaml")
	require.NoError(t, err)
	r, err := assess.Assess(sub, prof, assess.Options{})
	require.NoError(t, err)
	r.ID = "report-1"
	r.Tool = "parkeval"
	r.Version = "test"
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"MD", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"pdf", FormatPDF},
		{"docx", FormatDOCX},
		{"word", FormatDOCX},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestExportFormats(t *testing.T) {
	r := sampleReport(t)

	data, err := Export(r, FormatJSON, Options{})
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "通过/签约", decoded["decision"])
	assert.Equal(t, "report-1", decoded["id"])

	data, err = Export(r, FormatMarkdown, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("# 项目研判报告")))

	data, err = Export(r, FormatPDF, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	data, err = Export(r, FormatDOCX, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestExportUnsupported(t *testing.T) {
	_, err := Export(sampleReport(t), Format("xlsx"), Options{})
	var ee *ExportError
	require.True(t, errors.As(err, &ee), "expected ExportError, got %v", err)
	assert.Equal(t, Format("xlsx"), ee.Format)
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, ToFile(sampleReport(t), FormatMarkdown, Options{}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "三、结论与建议")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestToFileRenderFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	err := ToFile(sampleReport(t), FormatPDF, Options{FontPath: filepath.Join(dir, "missing.ttf")}, path)
	var ee *ExportError
	require.True(t, errors.As(err, &ee), "expected ExportError, got %v", err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no partial file may be written")
}

func TestToFileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "report.json")
	err := ToFile(sampleReport(t), FormatJSON, Options{}, path)
	var ee *ExportError
	require.True(t, errors.As(err, &ee), "expected ExportError, got %v", err)
	assert.Equal(t, path, ee.Path)
}

func TestWriteFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteFile(path, []byte("old")))
	require.NoError(t, WriteFile(path, []byte("new")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

// Package export serializes assessment reports and writes them to disk.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/parkeval/internal/assess"
	"github.com/dshills/parkeval/internal/render"
)

// Format is an output document format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatPDF, FormatDOCX}

// ParseFormat accepts a format name or a common alias such as "markdown" or "word".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, md, pdf or docx)", s)
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Options configures rendering.
type Options struct {
	FontPath string
}

// ExportError reports a failure to render or write a report.
type ExportError struct {
	Format Format
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export %s to %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Export renders the report in the given format.
func Export(r *assess.Report, f Format, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatJSON:
		data, err = json.MarshalIndent(r, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatMarkdown:
		data = []byte(render.Markdown(r))
	case FormatPDF:
		data, err = render.PDF(r, render.PDFOptions{FontPath: opts.FontPath})
	case FormatDOCX:
		data, err = render.DOCX(r)
	default:
		err = fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return nil, &ExportError{Format: f, Err: err}
	}
	return data, nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so path is either left untouched or fully written.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return err
	}
	return os.Rename(name, path)
}

// ToFile renders the report and writes it atomically to path.
func ToFile(r *assess.Report, f Format, opts Options, path string) error {
	data, err := Export(r, f, opts)
	if err != nil {
		return err
	}
	if err := WriteFile(path, data); err != nil {
		return &ExportError{Format: f, Path: path, Err: err}
	}
	return nil
}

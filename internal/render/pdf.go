package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dshills/parkeval/internal/assess"
)

// PDFOptions configures PDF output.
type PDFOptions struct {
	// FontPath is a UTF-8 TrueType font used for all text. Without it the
	// built-in Helvetica is used, which cannot show CJK characters.
	FontPath string
}

const (
	utf8Family = "report"
	coreFamily = "Helvetica"
	baseSize   = 10.0
	lineHeight = 5.5
	pageWidth  = 180.0
)

func parseMarkdown(source []byte) ast.Node {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	return md.Parser().Parse(text.NewReader(source))
}

// PDF renders the report's Markdown as an A4 PDF document.
func PDF(r *assess.Report, opts PDFOptions) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	if !r.GeneratedAt.IsZero() {
		pdf.SetCreationDate(r.GeneratedAt)
		pdf.SetModificationDate(r.GeneratedAt)
	}

	family := coreFamily
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		for _, style := range []string{"", "B"} {
			pdf.AddUTF8Font(utf8Family, style, opts.FontPath)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("render.PDF: font %s: %w", opts.FontPath, err)
		}
		family = utf8Family
		translate = func(s string) string { return s }
	}

	title := TitleGeneric
	if r.Project != nil {
		title = TitlePark
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("parkeval", true)
	pdf.AddPage()
	pdf.SetFont(family, "", baseSize)

	source := []byte(Markdown(r))
	w := &pdfWriter{pdf: pdf, source: source, family: family, size: baseSize, tr: translate}
	if err := ast.Walk(parseMarkdown(source), w.walk); err != nil {
		return nil, fmt.Errorf("render.PDF: %w", err)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render.PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render.PDF: output: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	source []byte
	family string
	size   float64
	bold   bool
	tr     func(string) string

	listLevel int
	ordinal   int
}

func (w *pdfWriter) setFont() {
	style := ""
	if w.bold {
		style = "B"
	}
	w.pdf.SetFont(w.family, style, w.size)
}

func (w *pdfWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := n.(type) {
	case *ast.Heading:
		if entering {
			w.pdf.Ln(3)
			w.size = map[int]float64{1: 16, 2: 13, 3: 11.5}[n.Level]
			if w.size == 0 {
				w.size = baseSize
			}
			w.bold = true
		} else {
			w.pdf.Ln(lineHeight + 2)
			w.size, w.bold = baseSize, false
		}
		w.setFont()
	case *ast.Paragraph:
		if _, inItem := n.Parent().(*ast.ListItem); inItem {
			return ast.WalkContinue, nil
		}
		if !entering {
			w.pdf.Ln(lineHeight + 1.5)
		}
	case *ast.Text:
		if entering {
			w.pdf.Write(lineHeight, w.tr(textValue(n.Segment.Value(w.source))))
			if n.SoftLineBreak() || n.HardLineBreak() {
				w.pdf.Ln(lineHeight)
			}
		}
	case *ast.String:
		if entering {
			w.pdf.Write(lineHeight, w.tr(string(n.Value)))
		}
	case *ast.Emphasis:
		w.bold = entering && n.Level == 2
		w.setFont()
	case *ast.List:
		if entering {
			w.listLevel++
			w.ordinal = n.Start
		} else {
			w.listLevel--
			w.pdf.Ln(1.5)
		}
	case *ast.ListItem:
		if entering {
			w.pdf.SetX(15 + float64(w.listLevel-1)*5)
			marker := "- "
			if list, ok := n.Parent().(*ast.List); ok && list.IsOrdered() {
				marker = fmt.Sprintf("%d. ", w.ordinal)
				w.ordinal++
			}
			w.pdf.Write(lineHeight, marker)
		} else {
			w.pdf.Ln(lineHeight)
		}
	case *extast.Table:
		if entering {
			w.table(tableRows(n, w.source))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (w *pdfWriter) table(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	cols := len(rows[0])
	widths := make([]float64, cols)
	first := pageWidth * 0.3
	widths[0] = first
	for i := 1; i < cols; i++ {
		widths[i] = (pageWidth - first) / float64(cols-1)
	}

	size := w.size
	w.size = 9
	defer func() {
		w.size = size
		w.bold = false
		w.setFont()
		w.pdf.Ln(3)
	}()

	for i, row := range rows {
		w.bold = i == 0
		w.setFont()
		fill := i == 0
		if fill {
			w.pdf.SetFillColor(230, 230, 230)
		}
		for j := 0; j < cols; j++ {
			v := ""
			if j < len(row) {
				v = row[j]
			}
			align := "R"
			if j == 0 {
				align = "L"
			}
			w.pdf.CellFormat(widths[j], 6.5, w.tr(v), "1", 0, align, fill, 0, "")
		}
		w.pdf.Ln(-1)
	}
}

// tableRows extracts cell text from a Markdown table, header first.
func tableRows(t *extast.Table, source []byte) [][]string {
	var rows [][]string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, strings.TrimSpace(plainText(c, source)))
		}
		rows = append(rows, cells)
	}
	return rows
}

// textValue returns the literal text of a Markdown text segment, with
// backslash escapes removed and character references resolved.
func textValue(segment []byte) string {
	v := util.UnescapePunctuations(segment)
	v = util.ResolveNumericReferences(v)
	return string(util.ResolveEntityNames(v))
}

// plainText concatenates the text content below n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.WriteString(textValue(c.Segment.Value(source)))
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

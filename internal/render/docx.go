package render

import (
	"bytes"
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/dshills/parkeval/internal/assess"
)

// DOCX renders the report's Markdown as a Word document.
func DOCX(r *assess.Report) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("render.DOCX: %w", err)
	}

	source := []byte(Markdown(r))
	w := &docxWriter{doc: doc, source: source}
	if err := ast.Walk(parseMarkdown(source), w.walk); err != nil {
		return nil, fmt.Errorf("render.DOCX: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("render.DOCX: %w", err)
	}
	return buf.Bytes(), nil
}

type docxWriter struct {
	doc    *docx.RootDoc
	source []byte
	para   *docx.Paragraph
	bold   bool

	ordinal int
}

// run appends text to the current paragraph, opening one if needed.
func (w *docxWriter) run(s string) {
	if s == "" {
		return
	}
	if w.para == nil {
		w.para = w.doc.AddParagraph("")
	}
	run := w.para.AddText(s)
	if w.bold {
		run.Bold(true)
	}
}

func (w *docxWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := n.(type) {
	case *ast.Heading:
		if entering {
			if _, err := w.doc.AddHeading(plainText(n, w.source), uint(min(n.Level, 3))); err != nil {
				return ast.WalkStop, err
			}
			w.para = nil
			return ast.WalkSkipChildren, nil
		}
	case *ast.Paragraph:
		if _, inItem := n.Parent().(*ast.ListItem); inItem {
			return ast.WalkContinue, nil
		}
		w.para = nil
	case *ast.TextBlock:
		// tight list items hold a TextBlock instead of a Paragraph
	case *ast.Text:
		if entering {
			w.run(textValue(n.Segment.Value(w.source)))
			if n.SoftLineBreak() || n.HardLineBreak() {
				w.para = nil
			}
		}
	case *ast.String:
		if entering {
			w.run(string(n.Value))
		}
	case *ast.Emphasis:
		w.bold = entering && n.Level == 2
	case *ast.List:
		if entering {
			w.ordinal = n.Start
		}
	case *ast.ListItem:
		if entering {
			w.para = w.doc.AddParagraph("")
			marker := "• "
			if list, ok := n.Parent().(*ast.List); ok && list.IsOrdered() {
				marker = fmt.Sprintf("%d. ", w.ordinal)
				w.ordinal++
			}
			w.run(marker)
		} else {
			w.para = nil
		}
	case *extast.Table:
		if entering {
			w.table(tableRows(n, w.source))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (w *docxWriter) table(rows [][]string) {
	tbl := w.doc.AddTable()
	tbl.Style("TableGrid")
	for i, row := range rows {
		tr := tbl.AddRow()
		for _, c := range row {
			run := tr.AddCell().AddParagraph("").AddText(c)
			if i == 0 {
				run.Bold(true)
			}
		}
	}
	w.para = nil
}

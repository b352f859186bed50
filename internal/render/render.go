// Package render produces Markdown, PDF and Word output from an assessment report.
package render

import (
	"fmt"
	"strings"

	"github.com/dshills/parkeval/internal/assess"
)

// Headings used in rendered reports.
const (
	TitlePark    = "项目研判报告"
	TitleGeneric = "综合评估报告"
)

// Markdown renders a report as a Markdown document. PDF and DOCX output are
// produced from this document.
func Markdown(r *assess.Report) string {
	var b strings.Builder

	park := r.Project != nil
	if park {
		fmt.Fprintf(&b, "# %s\n\n", TitlePark)
		fmt.Fprintf(&b, "**项目名称：** %s\n", inline(r.Project.Name))
	} else {
		fmt.Fprintf(&b, "# %s\n\n", TitleGeneric)
	}
	fmt.Fprintf(&b, "**评估方案：** %s (v%d)\n", r.Input.Profile, r.Input.ProfileVersion)
	if r.ID != "" {
		fmt.Fprintf(&b, "**报告编号：** %s\n", r.ID)
	}
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "**生成时间：** %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString("\n")

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		for _, p := range s.Paragraphs {
			fmt.Fprintf(&b, "%s\n\n", inline(p))
		}
	}

	if park {
		fmt.Fprintf(&b, "## %s\n\n", assess.TitleConclusion)
	} else {
		b.WriteString("## 结论\n\n")
	}
	fmt.Fprintf(&b, "**结论（系统判定）：** %s\n", r.Decision)
	fmt.Fprintf(&b, "**综合评分：** %.1f / 100（评分档位：%s）\n", r.Result.Score, r.Result.Label)
	if park {
		fmt.Fprintf(&b, "**投决会意向（是否拟同意入园）：** %s\n", r.IntentText())
	}
	b.WriteString("\n")
	for _, line := range strings.Split(r.Result.Narrative, "\n") {
		if strings.TrimSpace(line) != "" {
			fmt.Fprintf(&b, "%s\n\n", inline(line))
		}
	}

	if len(r.Reasons) > 0 {
		b.WriteString("### 判定理由\n\n")
		for _, reason := range r.Reasons {
			fmt.Fprintf(&b, "- %s\n", inline(reason))
		}
		b.WriteString("\n")
	}

	if len(r.Advice) > 0 {
		b.WriteString("### 建议\n\n")
		for i, a := range r.Advice {
			fmt.Fprintf(&b, "%d. %s\n", i+1, inline(a))
		}
		b.WriteString("\n")
	}

	if len(r.Result.Contributions) > 0 {
		b.WriteString("### 评分明细\n\n")
		b.WriteString("| 指标 | 权重 | 占比 | 标准化得分 | 得分 | 失分 |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, c := range r.Result.Contributions {
			fmt.Fprintf(&b, "| %s | %g | %.1f%% | %.1f | %.1f | %.1f |\n",
				cell(c.Title), c.Weight, c.Share*100, c.Normalized, c.Points, c.Shortfall)
		}
		b.WriteString("\n")
	}

	return b.String()
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

// inline escapes Markdown syntax in free text so it renders literally.
func inline(s string) string {
	return inlineEscaper.Replace(strings.TrimSpace(s))
}

func cell(s string) string {
	return strings.ReplaceAll(inline(s), "|", `\|`)
}

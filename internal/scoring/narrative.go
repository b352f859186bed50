package scoring

import (
	"fmt"
	"strings"
	"text/template"
)

// NarrativeTemplates are text/template sources filled after scoring. The
// strengths and weaknesses templates are skipped when their list is empty.
type NarrativeTemplates struct {
	Summary    string `yaml:"summary" json:"summary,omitempty"`
	Strengths  string `yaml:"strengths" json:"strengths,omitempty"`
	Weaknesses string `yaml:"weaknesses" json:"weaknesses,omitempty"`
}

// DefaultNarrative is used for any template left empty.
var DefaultNarrative = NarrativeTemplates{
	Summary:    `Composite score {{score .Score}} / 100, conclusion: {{.Label}}.`,
	Strengths:  `Strongest criteria: {{list .Strengths ", "}}.`,
	Weaknesses: `Largest gaps: {{titles .Weaknesses ", "}}.`,
}

type narrativeData struct {
	Score      float64
	Label      string
	Strengths  []Contribution
	Weaknesses []Contribution
}

type parsedNarrative struct {
	summary, strengths, weaknesses *template.Template
}

var narrativeFuncs = template.FuncMap{
	"score": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"list": func(cs []Contribution, sep string) string {
		parts := make([]string, len(cs))
		for i, c := range cs {
			parts[i] = fmt.Sprintf("%s (%.1f)", c.Title, c.Points)
		}
		return strings.Join(parts, sep)
	},
	"titles": func(cs []Contribution, sep string) string {
		parts := make([]string, len(cs))
		for i, c := range cs {
			parts[i] = c.Title
		}
		return strings.Join(parts, sep)
	},
}

func (n NarrativeTemplates) parse() (*parsedNarrative, error) {
	pick := func(s, def string) string {
		if strings.TrimSpace(s) == "" {
			return def
		}
		return s
	}
	var p parsedNarrative
	var err error
	if p.summary, err = parseOne("summary", pick(n.Summary, DefaultNarrative.Summary)); err != nil {
		return nil, err
	}
	if p.strengths, err = parseOne("strengths", pick(n.Strengths, DefaultNarrative.Strengths)); err != nil {
		return nil, err
	}
	if p.weaknesses, err = parseOne("weaknesses", pick(n.Weaknesses, DefaultNarrative.Weaknesses)); err != nil {
		return nil, err
	}
	return &p, nil
}

func parseOne(name, src string) (*template.Template, error) {
	return template.New(name).Funcs(narrativeFuncs).Option("missingkey=error").Parse(src)
}

func renderNarrative(p *parsedNarrative, data narrativeData) (string, error) {
	var parts []string
	exec := func(t *template.Template) error {
		var b strings.Builder
		if err := t.Execute(&b, data); err != nil {
			return err
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			parts = append(parts, s)
		}
		return nil
	}
	if err := exec(p.summary); err != nil {
		return "", err
	}
	if len(data.Strengths) > 0 {
		if err := exec(p.strengths); err != nil {
			return "", err
		}
	}
	if len(data.Weaknesses) > 0 {
		if err := exec(p.weaknesses); err != nil {
			return "", err
		}
	}
	return strings.Join(parts, "\n"), nil
}

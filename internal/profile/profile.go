// Package profile handles loading and describing evaluation profiles.
package profile

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dshills/parkeval/internal/scoring"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Profile bundles the criteria catalog, weights, threshold bands and decision
// rules used for one kind of evaluation.
type Profile struct {
	Name        string                     `yaml:"name" validate:"required"`
	Version     int                        `yaml:"version" validate:"gte=1"`
	Description string                     `yaml:"description"`
	Criteria    scoring.Catalog            `yaml:"criteria" validate:"required,min=1,dive"`
	Weights     scoring.Weights            `yaml:"weights" validate:"required,min=1"`
	Thresholds  scoring.Thresholds         `yaml:"thresholds" validate:"required,min=1"`
	Narrative   scoring.NarrativeTemplates `yaml:"narrative"`
	TopN        int                        `yaml:"top_n" validate:"gte=0"`
	Missing     scoring.MissingPolicy      `yaml:"missing"`
	Standards   Standards                  `yaml:"standards"`
	Decision    Decision                   `yaml:"decision"`
	Horizons    map[string]int             `yaml:"horizons" validate:"dive,gte=0"`
}

// Standards are the hard per-mu intensity requirements for park projects.
type Standards struct {
	InvestPerMu float64 `yaml:"invest_per_mu" validate:"gte=0"`
	TaxPerMu    float64 `yaml:"tax_per_mu" validate:"gte=0"`
}

// Enabled reports whether any hard standard is configured.
func (s Standards) Enabled() bool {
	return s.InvestPerMu > 0 || s.TaxPerMu > 0
}

// Decision adjusts the scored label for veto risks and hard standards.
type Decision struct {
	// VetoLabel is forced when any veto risk is present.
	VetoLabel string `yaml:"veto_label"`
	// CeilingLabel is the highest label allowed when a hard standard fails.
	CeilingLabel string `yaml:"ceiling_label"`
	// FloorLabel is the lowest label given when all hard standards pass.
	FloorLabel string `yaml:"floor_label"`
}

// LoadBuiltin loads a built-in profile by name.
func LoadBuiltin(name string) (*Profile, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: unknown profile %q: %w", name, err)
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: parse %q: %w", name, err)
	}
	return p, nil
}

// LoadFile loads a profile from a YAML file on disk.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadFile: %w", err)
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadFile: parse %s: %w", path, err)
	}
	return p, nil
}

func parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the names of all available built-in profiles.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	return names, nil
}

// Engine builds the scoring engine described by the profile.
func (p *Profile) Engine() *scoring.Engine {
	return &scoring.Engine{
		Catalog:   p.Criteria,
		Narrative: p.Narrative,
		TopN:      p.TopN,
		Missing:   p.Missing,
	}
}

// Validate checks the profile structure, the scoring configuration and the
// decision labels. Every failure is a *scoring.ConfigurationError.
func (p *Profile) Validate() error {
	ce := &scoring.ConfigurationError{}

	if err := validator.New().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &scoring.ConfigurationError{Problems: []string{err.Error()}}
		}
		for _, fe := range verrs {
			ce.Problems = append(ce.Problems, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	if err := p.Engine().ValidateConfig(p.Weights, p.Thresholds); err != nil {
		var inner *scoring.ConfigurationError
		if errors.As(err, &inner) {
			ce.Problems = append(ce.Problems, inner.Problems...)
		}
	}

	for field, label := range map[string]string{
		"decision.veto_label":    p.Decision.VetoLabel,
		"decision.ceiling_label": p.Decision.CeilingLabel,
		"decision.floor_label":   p.Decision.FloorLabel,
	} {
		if label != "" && p.Thresholds.RankOf(label) < 0 {
			ce.Problems = append(ce.Problems, fmt.Sprintf("%s: %q is not a threshold label", field, label))
		}
	}
	sort.Strings(ce.Problems)

	if len(ce.Problems) > 0 {
		return ce
	}
	return nil
}

// Describe renders the profile as human-readable text.
func Describe(p *Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Profile: %s (v%d)\n\n", p.Name, p.Version)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(p.Description))
	}

	total := p.Weights.Total()
	b.WriteString("### Criteria\n\n")
	for _, c := range p.Criteria {
		w, weighted := p.Weights[c.Name]
		if !weighted {
			fmt.Fprintf(&b, "- %s (%s, %s): unweighted\n", c.DisplayName(), c.Name, c.Kind)
			continue
		}
		share := 0.0
		if total > 0 {
			share = w / total * 100
		}
		fmt.Fprintf(&b, "- %s (%s, %s): weight %g (%.1f%%)\n", c.DisplayName(), c.Name, c.Kind, w, share)
		describeScale(&b, c)
	}
	b.WriteString("\n")

	b.WriteString("### Threshold bands\n\n")
	for _, band := range p.Thresholds {
		fmt.Fprintf(&b, "- >= %g: %s\n", band.Lower, band.Label)
	}
	b.WriteString("\n")

	if p.Standards.Enabled() {
		b.WriteString("### Hard standards\n\n")
		fmt.Fprintf(&b, "- investment >= %g per mu\n", p.Standards.InvestPerMu)
		fmt.Fprintf(&b, "- tax >= %g per mu per year\n", p.Standards.TaxPerMu)
		if p.Decision.CeilingLabel != "" {
			fmt.Fprintf(&b, "- failing a standard caps the conclusion at %s\n", p.Decision.CeilingLabel)
		}
		if p.Decision.FloorLabel != "" {
			fmt.Fprintf(&b, "- meeting both standards lifts the conclusion to at least %s\n", p.Decision.FloorLabel)
		}
		b.WriteString("\n")
	}
	if p.Decision.VetoLabel != "" {
		fmt.Fprintf(&b, "Any veto risk forces: %s\n\n", p.Decision.VetoLabel)
	}

	if len(p.Horizons) > 0 {
		b.WriteString("### Ramp-up horizons (months)\n\n")
		keys := make([]string, 0, len(p.Horizons))
		for k := range p.Horizons {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %d\n", k, p.Horizons[k])
		}
		b.WriteString("\n")
	}

	return b.String()
}

func describeScale(b *strings.Builder, c scoring.Criterion) {
	switch c.Kind {
	case scoring.KindCategorical:
		choices := make([]string, 0, len(c.Levels))
		for k := range c.Levels {
			choices = append(choices, k)
		}
		sort.Slice(choices, func(i, j int) bool {
			if c.Levels[choices[i]] != c.Levels[choices[j]] {
				return c.Levels[choices[i]] > c.Levels[choices[j]]
			}
			return choices[i] < choices[j]
		})
		for _, ch := range choices {
			fmt.Fprintf(b, "  - %s = %g\n", ch, c.Levels[ch])
		}
	case scoring.KindText:
		for _, rule := range c.Keywords {
			fmt.Fprintf(b, "  - contains %s = %g\n", strings.Join(rule.Contains, " / "), rule.Score)
		}
	}
}

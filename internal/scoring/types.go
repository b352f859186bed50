// Package scoring implements the weighted criterion scoring engine.
package scoring

import "sort"

// Criterion describes one named input dimension and how its value is normalized
// onto the common 0-100 scale.
type Criterion struct {
	Name     string             `yaml:"name" json:"name" validate:"required"`
	Title    string             `yaml:"title" json:"title,omitempty"`
	Kind     Kind               `yaml:"kind" json:"kind" validate:"required"`
	Min      float64            `yaml:"min" json:"min,omitempty"`
	Max      float64            `yaml:"max" json:"max,omitempty"`
	Invert   bool               `yaml:"invert" json:"invert,omitempty"`
	Levels   map[string]float64 `yaml:"levels" json:"levels,omitempty"`
	Keywords []KeywordRule      `yaml:"keywords" json:"keywords,omitempty"`
	Default  float64            `yaml:"default" json:"default,omitempty"`
}

// DisplayName returns the title, falling back to the name.
func (c Criterion) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// KeywordRule scores a text criterion when the text contains any of the keywords.
type KeywordRule struct {
	Contains []string `yaml:"contains" json:"contains"`
	Score    float64  `yaml:"score" json:"score"`
}

// Catalog is the ordered set of criteria a profile knows about.
type Catalog []Criterion

// Get looks up a criterion by name.
func (c Catalog) Get(name string) (Criterion, bool) {
	for _, cr := range c {
		if cr.Name == name {
			return cr, true
		}
	}
	return Criterion{}, false
}

// Value is a single criterion value supplied by the form layer.
type Value struct {
	Kind   Kind
	Number float64
	Choice string
	Flag   bool
	Text   string
}

// NumberValue returns a numeric value.
func NumberValue(v float64) Value { return Value{Kind: KindNumeric, Number: v} }

// ChoiceValue returns a categorical choice.
func ChoiceValue(s string) Value { return Value{Kind: KindCategorical, Choice: s} }

// FlagValue returns a yes/no value.
func FlagValue(b bool) Value { return Value{Kind: KindFlag, Flag: b} }

// TextValue returns a free-text value.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// Input maps criterion names to values for a single evaluation.
type Input map[string]Value

// Weights maps criterion names to their relative weight.
type Weights map[string]float64

// Names returns the weighted criterion names in sorted order.
func (w Weights) Names() []string {
	names := make([]string, 0, len(w))
	for k := range w {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	var total float64
	for _, name := range w.Names() {
		total += w[name]
	}
	return total
}

// Band maps every score at or above Lower (up to the next band) to Label.
type Band struct {
	Lower float64 `yaml:"lower" json:"lower"`
	Label string  `yaml:"label" json:"label"`
}

// Thresholds is the ordered list of bands, lowest first.
type Thresholds []Band

// Labels returns the band labels in ascending order.
func (t Thresholds) Labels() []string {
	labels := make([]string, len(t))
	for i, b := range t {
		labels[i] = b.Label
	}
	return labels
}

// RankOf returns the highest rank carrying the label, or -1.
func (t Thresholds) RankOf(label string) int {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Label == label {
			return i
		}
	}
	return -1
}

// Contribution records how one criterion fed into the composite score.
type Contribution struct {
	Criterion  string  `json:"criterion"`
	Title      string  `json:"title"`
	Weight     float64 `json:"weight"`
	Share      float64 `json:"share"`
	Normalized float64 `json:"normalized"`
	Points     float64 `json:"points"`
	Shortfall  float64 `json:"shortfall"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Score         float64        `json:"score"`
	Label         string         `json:"label"`
	Rank          int            `json:"rank"`
	Contributions []Contribution `json:"contributions"`
	Strengths     []Contribution `json:"strengths,omitempty"`
	Weaknesses    []Contribution `json:"weaknesses,omitempty"`
	Narrative     string         `json:"narrative"`
	Substituted   []string       `json:"substituted,omitempty"`
}

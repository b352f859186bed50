package scoring

import (
	"fmt"
	"math"
)

const (
	// DefaultTopN is the number of strengths and weaknesses named in the narrative.
	DefaultTopN = 3
	// NeutralScore is substituted for missing criteria under MissingNeutral.
	NeutralScore = 50.0
)

// Engine evaluates inputs against a criterion catalog. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	Catalog   Catalog
	Narrative NarrativeTemplates
	TopN      int
	Missing   MissingPolicy
}

// ValidateConfig checks the catalog, weights, thresholds and narrative templates.
// All problems are reported together in a *ConfigurationError.
func (e *Engine) ValidateConfig(w Weights, t Thresholds) error {
	ce := &ConfigurationError{}
	validateCatalog(e.Catalog, ce)
	if !e.Missing.Valid() {
		ce.add("missing policy %q is not one of fail, neutral", e.Missing)
	}

	var total float64
	for _, name := range w.Names() {
		weight := w[name]
		c, ok := e.Catalog.Get(name)
		if !ok {
			ce.add("weights: %q references an unknown criterion", name)
		} else if c.Kind == KindText && len(c.Keywords) == 0 && c.Default == 0 {
			ce.add("weights: %q is narrative-only text and cannot carry weight", name)
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
			ce.add("weights: %q has invalid weight %g", name, weight)
			continue
		}
		total += weight
	}
	if total <= 0 {
		ce.add("weights: total weight must be positive")
	}

	validateThresholds(t, ce)

	if _, err := e.Narrative.parse(); err != nil {
		ce.add("narrative: %v", err)
	}
	return ce.orNil()
}

func validateCatalog(cat Catalog, ce *ConfigurationError) {
	seen := make(map[string]bool, len(cat))
	for i, c := range cat {
		if c.Name == "" {
			ce.add("criteria[%d]: name required", i)
		} else if seen[c.Name] {
			ce.add("criteria[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		if !c.Kind.Valid() {
			ce.add("criteria[%d]: invalid kind %q", i, c.Kind)
			continue
		}
		switch c.Kind {
		case KindNumeric:
			if lo, hi := c.bounds(); hi <= lo {
				ce.add("criteria[%d]: max %g must exceed min %g", i, hi, lo)
			}
		case KindCategorical:
			if len(c.Levels) == 0 {
				ce.add("criteria[%d]: categorical criterion %q has no levels", i, c.Name)
			}
			for choice, s := range c.Levels {
				if s < 0 || s > 100 {
					ce.add("criteria[%d]: level %q score %g outside 0-100", i, choice, s)
				}
			}
		case KindText:
			for j, rule := range c.Keywords {
				if len(rule.Contains) == 0 {
					ce.add("criteria[%d].keywords[%d]: at least one keyword required", i, j)
				}
				if rule.Score < 0 || rule.Score > 100 {
					ce.add("criteria[%d].keywords[%d]: score %g outside 0-100", i, j, rule.Score)
				}
			}
		}
	}
}

// Evaluate computes the composite score, label and narrative for one input.
// It fails with *ConfigurationError for an inconsistent configuration and with
// *MissingCriterionError when a weighted criterion has no usable value; no
// partial result is returned in either case.
func (e *Engine) Evaluate(in Input, w Weights, t Thresholds) (*Result, error) {
	if err := e.ValidateConfig(w, t); err != nil {
		return nil, err
	}
	tmpl, _ := e.Narrative.parse()

	total := w.Total()
	res := &Result{}
	var sum float64
	for _, name := range w.Names() {
		c, _ := e.Catalog.Get(name)
		norm, err := e.normalized(c, in)
		if err != nil {
			if e.Missing != MissingNeutral {
				return nil, err
			}
			norm = NeutralScore
			res.Substituted = append(res.Substituted, name)
		}
		share := w[name] / total
		sum += w[name] * norm
		res.Contributions = append(res.Contributions, Contribution{
			Criterion:  name,
			Title:      c.DisplayName(),
			Weight:     w[name],
			Share:      share,
			Normalized: round1(norm),
			Points:     round1(share * norm),
			Shortfall:  round1(share * (100 - norm)),
		})
	}

	res.Score = clamp(round1(sum/total), 0, 100)
	band, rank := AssignLabel(res.Score, t)
	res.Label = band.Label
	res.Rank = rank

	topN := e.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	res.Strengths = Top(SortByPoints(res.Contributions), topN, func(c Contribution) bool { return c.Points > 0 })
	res.Weaknesses = Top(SortByShortfall(res.Contributions), topN, func(c Contribution) bool { return c.Shortfall > 0 })

	narrative, err := renderNarrative(tmpl, narrativeData{
		Score:      res.Score,
		Label:      res.Label,
		Strengths:  res.Strengths,
		Weaknesses: res.Weaknesses,
	})
	if err != nil {
		return nil, &ConfigurationError{Problems: []string{"narrative: " + err.Error()}}
	}
	res.Narrative = narrative
	return res, nil
}

func (e *Engine) normalized(c Criterion, in Input) (float64, error) {
	v, ok := in[c.Name]
	if !ok {
		return 0, &MissingCriterionError{Criterion: c.Name}
	}
	norm, ok := Normalize(c, v)
	if !ok {
		reason := "value is not a " + string(c.Kind) + " value"
		if v.Kind == KindCategorical && c.Kind == KindCategorical {
			reason = fmt.Sprintf("unrecognised choice %q", v.Choice)
		}
		return 0, &MissingCriterionError{Criterion: c.Name, Reason: reason}
	}
	return norm, nil
}

// Names returns the criterion names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, cr := range c {
		names[i] = cr.Name
	}
	return names
}

package project

import (
	"fmt"
	"math"

	"github.com/dshills/parkeval/internal/profile"
	"github.com/dshills/parkeval/internal/redact"
	"github.com/dshills/parkeval/internal/scoring"
)

// SqmPerMu converts building area to mu.
const SqmPerMu = 666.67

// Metrics are the per-mu figures derived from a project.
type Metrics struct {
	Mu               float64 `json:"mu"`
	InvestIntensity  float64 `json:"invest_intensity"`
	TaxIntensity     float64 `json:"tax_intensity"`
	InvestAttainment float64 `json:"invest_attainment"`
	TaxAttainment    float64 `json:"tax_attainment"`
	InvestNeed       float64 `json:"invest_need"`
	TaxNeed          float64 `json:"tax_need"`
	PassHard         bool    `json:"pass_hard"`
	Improving        bool    `json:"improving"`

	Standards profile.Standards `json:"standards"`
}

// Mu returns the land area, or the area implied by building area and floor
// ratio when no land area was given.
func Mu(landMu, buildingArea, floorRatio float64) float64 {
	if landMu > 0 {
		return landMu
	}
	if buildingArea > 0 && floorRatio > 0 {
		return buildingArea / (floorRatio * SqmPerMu)
	}
	return 0
}

// Derive computes intensities and shortfalls against the hard standards.
func Derive(p *Project, s profile.Standards) Metrics {
	m := Metrics{Standards: s}
	m.Mu = Mu(p.LandMu, p.BuildingArea, p.FloorRatio)
	if m.Mu > 0 {
		m.InvestIntensity = p.Investment / m.Mu
		m.TaxIntensity = p.AnnualTax / m.Mu
	}
	m.InvestAttainment = attainment(m.InvestIntensity, s.InvestPerMu)
	m.TaxAttainment = attainment(m.TaxIntensity, s.TaxPerMu)
	m.PassHard = m.InvestIntensity >= s.InvestPerMu && m.TaxIntensity >= s.TaxPerMu
	m.InvestNeed = math.Max(0, s.InvestPerMu*m.Mu-p.Investment)
	m.TaxNeed = math.Max(0, s.TaxPerMu*m.Mu-p.AnnualTax)
	m.Improving = p.RevenuePrev1 >= p.RevenuePrev2 && p.TaxPrev1 >= p.TaxPrev2
	return m
}

func attainment(actual, standard float64) float64 {
	if standard <= 0 {
		return 100
	}
	return math.Min(actual/standard, 1) * 100
}

// Input builds the scoring input: values derived from the project first, then
// the explicit form values, which take precedence. On error the readable
// values are still returned.
func (s *Submission) Input(cat scoring.Catalog, m *Metrics) (scoring.Input, error) {
	raw := make(map[string]any)
	if p := s.Project; p != nil {
		if m != nil {
			raw["invest_attainment"] = m.InvestAttainment
			raw["tax_attainment"] = m.TaxAttainment
		}
		raw["tech_titles"] = p.TechTitles
		raw["chain_fill"] = p.ChainSegment != ""
		for name, v := range map[string]string{
			"customer_stability": p.CustomerStability,
			"chain_maturity":     p.ChainMaturity,
			"innovation":         p.Innovation,
			"market_base":        p.MarketBase,
			"industry_trend":     p.IndustryTrend,
		} {
			if v != "" {
				raw[name] = v
			}
		}
	}
	for k, v := range s.Values {
		raw[k] = v
	}
	in, err := scoring.InputFromRaw(cat, raw)
	if err != nil {
		return in, fmt.Errorf("project.Input: %w", err)
	}
	return in, nil
}

// RedactText masks personal data in the free-text fields.
func (s *Submission) RedactText() {
	if p := s.Project; p != nil {
		for _, f := range []*string{
			&p.Location, &p.Content, &p.RegisteredAt, &p.ImportBusiness,
			&p.NewBusiness, &p.TechTitles, &p.ChainSegment,
		} {
			*f = redact.Redact(*f)
		}
	}
	for k, v := range s.Values {
		if str, ok := v.(string); ok {
			s.Values[k] = redact.Redact(str)
		}
	}
}

// Clone returns a copy that can be modified without touching s.
func (s *Submission) Clone() *Submission {
	c := *s
	if s.Project != nil {
		p := *s.Project
		c.Project = &p
	}
	if s.Values != nil {
		c.Values = make(map[string]any, len(s.Values))
		for k, v := range s.Values {
			c.Values[k] = v
		}
	}
	return &c
}

// Package project loads park project submissions and derives their metrics.
package project

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Submission is one filled-in evaluation form.
type Submission struct {
	Project *Project       `yaml:"project" json:"project,omitempty"`
	Values  map[string]any `yaml:"values" json:"values,omitempty"`
	Risks   Risks          `yaml:"risks" json:"risks"`
	// IntentAgree records the committee's intent to admit the project; nil means yes.
	IntentAgree *bool `yaml:"intent_agree" json:"intent_agree,omitempty"`

	FilePath string `yaml:"-" json:"-"`
	Hash     string `yaml:"-" json:"-"`
}

// Agreed reports the committee intent, defaulting to true.
func (s *Submission) Agreed() bool {
	return s.IntentAgree == nil || *s.IntentAgree
}

// Project mirrors the park project form. Money is in units of 10k CNY.
type Project struct {
	Name         string  `yaml:"name" json:"name" validate:"required"`
	Location     string  `yaml:"location" json:"location,omitempty"`
	Type         string  `yaml:"type" json:"type" validate:"required,oneof=land existingNoPolicy ownFactoryWithPolicy"`
	LandMu       float64 `yaml:"land_mu" json:"land_mu" validate:"gte=0"`
	BuildingArea float64 `yaml:"building_area" json:"building_area" validate:"gte=0"`
	FloorRatio   float64 `yaml:"floor_ratio" json:"floor_ratio" validate:"gte=0"`
	Investment   float64 `yaml:"investment" json:"investment" validate:"gte=0"`
	Output       float64 `yaml:"expected_output" json:"expected_output" validate:"gte=0"`
	AnnualTax    float64 `yaml:"expected_tax" json:"expected_tax" validate:"gte=0"`
	Jobs         int     `yaml:"expected_jobs" json:"expected_jobs" validate:"gte=0"`
	Content      string  `yaml:"content" json:"content,omitempty"`

	Industry          string `yaml:"industry" json:"industry" validate:"required,oneof=low svc eqp"`
	Company           string `yaml:"company" json:"company,omitempty"`
	EstablishedYear   string `yaml:"established_year" json:"established_year,omitempty" validate:"omitempty,numeric,len=4"`
	RegisteredAt      string `yaml:"registered_at" json:"registered_at,omitempty"`
	LocallyRegistered bool   `yaml:"locally_registered" json:"locally_registered"`
	ImportBusiness    string `yaml:"import_business" json:"import_business,omitempty"`
	NewBusiness       string `yaml:"new_business" json:"new_business,omitempty"`

	NeedType          string `yaml:"need_type" json:"need_type" validate:"required,oneof=buy rent ipark buy_land"`
	Carrier           string `yaml:"carrier" json:"carrier" validate:"required,oneof=kcg ipark social"`
	TechTitles        string `yaml:"tech_titles" json:"tech_titles,omitempty"`
	ChainMaturity     string `yaml:"chain_maturity" json:"chain_maturity,omitempty" validate:"omitempty,oneof=完善 成熟 一般"`
	Innovation        string `yaml:"innovation" json:"innovation,omitempty" validate:"omitempty,oneof=强 较强 一般"`
	CustomerStability string `yaml:"customer_stability" json:"customer_stability,omitempty" validate:"omitempty,oneof=稳定 一般 不稳定"`
	MarketBase        string `yaml:"market_base" json:"market_base,omitempty" validate:"omitempty,oneof=扎实 一般 较弱"`
	ChainSegment      string `yaml:"chain_segment" json:"chain_segment,omitempty"`

	RevenuePrev2  float64 `yaml:"revenue_prev2" json:"revenue_prev2" validate:"gte=0"`
	RevenuePrev1  float64 `yaml:"revenue_prev1" json:"revenue_prev1" validate:"gte=0"`
	TaxPrev2      float64 `yaml:"tax_prev2" json:"tax_prev2" validate:"gte=0"`
	TaxPrev1      float64 `yaml:"tax_prev1" json:"tax_prev1" validate:"gte=0"`
	IndustryTrend string  `yaml:"industry_trend" json:"industry_trend,omitempty" validate:"omitempty,oneof=向好 平稳 承压"`
}

// Risks are the veto items; any one of them blocks admission.
type Risks struct {
	Dishonest      bool `yaml:"dishonest" json:"dishonest"`
	Environmental  bool `yaml:"environmental" json:"environmental"`
	IllegalLand    bool `yaml:"illegal_land" json:"illegal_land"`
	LicenseMissing bool `yaml:"license_missing" json:"license_missing"`
}

// Reasons lists the veto items that are set, in a fixed order.
func (r Risks) Reasons() []string {
	var out []string
	if r.Dishonest {
		out = append(out, "失信被执行/严重信用风险")
	}
	if r.Environmental {
		out = append(out, "重大环保/安监处罚未结")
	}
	if r.IllegalLand {
		out = append(out, "违法违规用地")
	}
	if r.LicenseMissing {
		out = append(out, "核心资质缺失且短期不可补齐")
	}
	return out
}

// Display names for the enumerated form fields.
var (
	Industries = map[string]string{"low": "低空经济", "svc": "服务类", "eqp": "装备制造类"}
	Types      = map[string]string{
		"land":                 "征地项目",
		"existingNoPolicy":     "购买/租赁园区或社会现房（无需政策）",
		"ownFactoryWithPolicy": "购买园区自有厂房（需政策）",
	}
	NeedTypes = map[string]string{"buy": "购买厂房", "rent": "租赁厂房", "ipark": "产业港定制建设", "buy_land": "购买土地"}
	Carriers  = map[string]string{"kcg": "园区自有科创谷厂房", "ipark": "产业港厂房", "social": "社会现房"}
)

// Load reads a YAML or JSON submission and computes its SHA-256 hash.
func Load(path string) (*Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project.Load: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("project.Load: parse %s: %w", path, err)
	}
	s.FilePath = path
	return s, nil
}

// Parse decodes a submission document. Unknown fields are rejected.
func Parse(data []byte) (*Submission, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Submission
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	h := sha256.Sum256(data)
	s.Hash = fmt.Sprintf("sha256:%x", h)
	return &s, nil
}

package assess

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/parkeval/internal/profile"
	"github.com/dshills/parkeval/internal/project"
	"github.com/dshills/parkeval/internal/scoring"
)

// Assess scores a submission against a profile and applies the profile's
// decision rules. It does not modify sub and performs no I/O; ID, Tool,
// Version and GeneratedAt are left for the caller to fill.
func Assess(sub *project.Submission, prof *profile.Profile, opts Options) (*Report, error) {
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("assess.Assess: profile %s: %w", prof.Name, err)
	}
	if opts.Redact {
		sub = sub.Clone()
		sub.RedactText()
	}

	var m *project.Metrics
	if sub.Project != nil {
		d := project.Derive(sub.Project, prof.Standards)
		m = &d
	}

	in, err := sub.Input(prof.Criteria, m)
	if err != nil && prof.Missing != scoring.MissingNeutral {
		return nil, fmt.Errorf("assess.Assess: %w", err)
	}
	res, err := prof.Engine().Evaluate(in, prof.Weights, prof.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("assess.Assess: %w", err)
	}

	r := &Report{
		Input: Input{
			SubmissionHash: sub.Hash,
			Profile:        prof.Name,
			ProfileVersion: prof.Version,
		},
		Metrics:     m,
		Result:      *res,
		IntentAgree: sub.Agreed(),
		VetoReasons: sub.Risks.Reasons(),
	}
	if sub.FilePath != "" {
		r.Input.SubmissionFile = filepath.Base(sub.FilePath)
	}
	if sub.Project != nil {
		p := *sub.Project
		r.Project = &p
		r.Horizon = prof.Horizons[p.Type]
	}

	r.DecisionRank = decide(res.Rank, m, len(r.VetoReasons) > 0, prof)
	r.Decision = prof.Thresholds[r.DecisionRank].Label
	r.Vetoed = len(r.VetoReasons) > 0

	r.Reasons = reasons(r, prof)
	if r.Project != nil {
		r.Advice = advice(r.Project)
		r.Sections = sections(r)
	}
	return r, nil
}

// decide applies veto, ceiling and floor rules to the scored band rank.
func decide(rank int, m *project.Metrics, vetoed bool, prof *profile.Profile) int {
	t := prof.Thresholds
	if vetoed {
		if v := t.RankOf(prof.Decision.VetoLabel); v >= 0 {
			return v
		}
		return 0
	}
	if m == nil || !prof.Standards.Enabled() {
		return rank
	}
	if m.PassHard {
		if f := t.RankOf(prof.Decision.FloorLabel); f >= 0 && rank < f {
			return f
		}
		return rank
	}
	if c := t.RankOf(prof.Decision.CeilingLabel); c >= 0 && rank > c {
		return c
	}
	return rank
}

func reasons(r *Report, prof *profile.Profile) []string {
	var out []string
	if r.Vetoed {
		out = append(out, "命中一票否决："+strings.Join(r.VetoReasons, "；"))
	}
	if m := r.Metrics; m != nil && prof.Standards.Enabled() && !m.PassHard {
		if m.Mu <= 0 {
			out = append(out, "未提供占地面积或建筑面积，无法折算亩均强度")
		}
		if m.InvestNeed > 0 {
			out = append(out, fmt.Sprintf("投资强度未达标：需追加固定投资约 %.0f 万元", m.InvestNeed))
		}
		if m.TaxNeed > 0 {
			out = append(out, fmt.Sprintf("税收强度未达标：需新增年税收约 %.0f 万元", m.TaxNeed))
		}
	}
	if len(r.Result.Substituted) > 0 {
		titles := make([]string, 0, len(r.Result.Substituted))
		for _, name := range r.Result.Substituted {
			c, _ := prof.Criteria.Get(name)
			titles = append(titles, c.DisplayName())
		}
		out = append(out, fmt.Sprintf("以下指标未填写，按中性分%.0f计：%s", scoring.NeutralScore, strings.Join(titles, "、")))
	}
	return out
}

// Advice texts, in the order they are listed in a report.
const (
	AdviceSigning      = "签约：在入驻协议中明确企业注册园区、经济效益考核、厂房不可转租/分割，建立项目跟踪与服务机制，确保业务按约导入并投产达效。"
	AdviceIndustryPort = "产业港项目：产发公司采取“双同步”推进——推进载体建设（征收→设计→施工→验收），并同步匹配地块/厂房与企业需求，防止“签约不落地”。"
	AdviceStatistics   = "经济服务局做好项目经济指标跟踪与入统指导，确保达条件后及时纳入统计范围。"
	AdviceSynergy      = "协同发展：产发公司与经济服务局协同做好企业服务与培育，围绕补链环节开展上下游对接。"
	AdviceLand         = "土地要素：与企业对接土地收储、摘牌等工作；协助办理环评、消防、安评等，确保建设与生产合法合规。"
)

func advice(p *project.Project) []string {
	out := []string{AdviceSigning}
	if p.NeedType == "ipark" || p.Carrier == "ipark" {
		out = append(out, AdviceIndustryPort)
	}
	if p.AnnualTax >= 2000 || p.Output >= 20000 {
		out = append(out, AdviceStatistics)
	}
	if p.ChainSegment != "" {
		out = append(out, AdviceSynergy)
	}
	if p.Type == "land" || p.NeedType == "buy_land" {
		out = append(out, AdviceLand)
	}
	return out
}

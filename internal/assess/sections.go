package assess

import (
	"fmt"
	"strings"

	"github.com/dshills/parkeval/internal/project"
)

// Section titles used in park reports.
const (
	TitleIntro      = "一、项目简介"
	TitleJudgement  = "二、研判"
	TitleConclusion = "三、结论与建议"
)

func sections(r *Report) []Section {
	p, m := r.Project, r.Metrics

	judge := []string{
		"1）项目类别与主体：" + judgeEntity(p),
		"2）需求与能力、产业协同：" + judgeNeeds(p),
		"3）经营情况与趋势：" + judgeTrend(p, m),
		standardLine(p, m, r.Horizon),
	}
	if !m.PassHard && m.Standards.Enabled() {
		if m.InvestNeed > 0 {
			judge = append(judge, fmt.Sprintf("投资补齐建议：追加固定投资约 %.0f 万元。", m.InvestNeed))
		}
		if m.TaxNeed > 0 {
			judge = append(judge, fmt.Sprintf("税收补齐建议：年税收提高约 %.0f 万元。", m.TaxNeed))
		}
	}
	if r.Vetoed {
		judge = append(judge, "风险提示（命中一票否决）："+strings.Join(r.VetoReasons, "；")+"。")
	}

	return []Section{
		{Title: TitleIntro, Paragraphs: []string{intro(p)}},
		{Title: TitleJudgement, Paragraphs: judge},
	}
}

func intro(p *project.Project) string {
	return fmt.Sprintf("%s，计划投资%.0f万元，%s；占地%.2f亩/实际建筑面积%.0f㎡，建设内容：%s；"+
		"预计经济效益：年产值%.0f万元、年税收%.0f万元、预计带动就业%d人。",
		orDefault(p.Name, "本项目"), p.Investment, orDefault(p.Location, "拟选址待定"),
		p.LandMu, p.BuildingArea, orDefault(p.Content, "——"),
		p.Output, p.AnnualTax, p.Jobs)
}

func judgeEntity(p *project.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "项目为%s方向，符合园区发展规划；项目主体为%s", display(project.Industries, p.Industry), orDefault(p.Company, "——"))
	if p.EstablishedYear != "" {
		fmt.Fprintf(&b, "，%s年注册于%s", p.EstablishedYear, orDefault(p.RegisteredAt, "—"))
	}
	b.WriteString("；")
	if !p.LocallyRegistered {
		b.WriteString("尚未注册于园区，")
	}
	fmt.Fprintf(&b, "拟将%s业务导入园区", orDefault(p.ImportBusiness, "相关"))
	if p.NewBusiness != "" {
		fmt.Fprintf(&b, "，并拓展%s新业务", p.NewBusiness)
	}
	b.WriteString("。")
	return b.String()
}

func judgeNeeds(p *project.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "该项目主要需求为%s，拟承接载体：%s。", display(project.NeedTypes, p.NeedType), display(project.Carriers, p.Carrier))
	fmt.Fprintf(&b, "项目拟开展业务：%s；具有%s技术/称号，产业链%s、技术创新%s，客户资源%s、市场基础%s。",
		orDefault(p.Content, "—"), orDefault(p.TechTitles, "相关"),
		orDefault(p.ChainMaturity, "—"), orDefault(p.Innovation, "—"),
		orDefault(p.CustomerStability, "—"), orDefault(p.MarketBase, "—"))
	if p.ChainSegment != "" {
		fmt.Fprintf(&b, "入园后，有望填补园区产业链“%s”环节。", p.ChainSegment)
	}
	return b.String()
}

func judgeTrend(p *project.Project, m *project.Metrics) string {
	trend := "存在波动"
	if m.Improving {
		trend = "稳中向好"
	}
	outlook := "需持续观察"
	if m.Improving || p.IndustryTrend == "向好" {
		outlook = "向好"
	}
	return fmt.Sprintf("企业近两年营收由%.0f万元%s%.0f万元，税收由%.0f万元%s%.0f万元，整体%s；"+
		"结合行业当前趋势“%s”，预计落地园区后经济效益%s，并带动产业协同发展。",
		p.RevenuePrev2, direction(p.RevenuePrev2, p.RevenuePrev1), p.RevenuePrev1,
		p.TaxPrev2, direction(p.TaxPrev2, p.TaxPrev1), p.TaxPrev1,
		trend, orDefault(p.IndustryTrend, "—"), outlook)
}

func standardLine(p *project.Project, m *project.Metrics, horizon int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "达标校验：按折算亩%.2f亩，投资强度%.1f万/亩，税收强度%.1f万/亩·年",
		m.Mu, m.InvestIntensity, m.TaxIntensity)
	if m.Standards.Enabled() {
		fmt.Fprintf(&b, "；阈值为投资≥%g万/亩、税收≥%g万/亩·年", m.Standards.InvestPerMu, m.Standards.TaxPerMu)
	}
	b.WriteString("。")
	if horizon > 0 {
		fmt.Fprintf(&b, "按%s口径，达产期%d个月。", display(project.Types, p.Type), horizon)
	}
	return b.String()
}

func direction(from, to float64) string {
	if to < from {
		return "降至"
	}
	return "增至"
}

func display(names map[string]string, key string) string {
	if v, ok := names[key]; ok {
		return v
	}
	return orDefault(key, "—")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

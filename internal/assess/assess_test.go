package assess

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/parkeval/internal/profile"
	"github.com/dshills/parkeval/internal/project"
	"github.com/dshills/parkeval/internal/scoring"
)

func testdata(parts ...string) string {
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(append([]string{root, "testdata"}, parts...)...)
}

func loadSubmission(t *testing.T, name string) *project.Submission {
	t.Helper()
	s, err := project.Load(testdata("submissions", name))
	require.NoError(t, err)
	return s
}

func loadProfile(t *testing.T, name string) *profile.Profile {
	t.Helper()
	p, err := profile.LoadBuiltin(name)
	require.NoError(t, err)
	return p
}

func TestAssessParkSubmission(t *testing.T) {
	r, err := Assess(loadSubmission(t, "park.yaml"), loadProfile(t, "park"), Options{})
	require.NoError(t, err)

	assert.InDelta(t, 96.8, r.Result.Score, 1e-9)
	assert.Equal(t, "通过/签约", r.Result.Label)
	assert.Equal(t, "通过/签约", r.Decision)
	assert.Equal(t, 2, r.DecisionRank)
	assert.False(t, r.Vetoed)
	assert.Empty(t, r.Reasons)
	assert.Equal(t, 36, r.Horizon)
	assert.Equal(t, "park.yaml", r.Input.SubmissionFile)
	assert.Equal(t, "park", r.Input.Profile)
	assert.True(t, strings.HasPrefix(r.Input.SubmissionHash, "sha256:"))
	assert.Equal(t, "同意", r.IntentText())

	require.NotNil(t, r.Metrics)
	assert.True(t, r.Metrics.PassHard)

	assert.Equal(t, []string{
		"签约：在入驻协议中明确企业注册园区、经济效益考核、厂房不可转租/分割，建立项目跟踪与服务机制，确保业务按约导入并投产达效。",
		"经济服务局做好项目经济指标跟踪与入统指导，确保达条件后及时纳入统计范围。",
		"协同发展：产发公司与经济服务局协同做好企业服务与培育，围绕补链环节开展上下游对接。",
		"土地要素：与企业对接土地收储、摘牌等工作；协助办理环评、消防、安评等，确保建设与生产合法合规。",
	}, r.Advice)

	require.Len(t, r.Sections, 2)
	assert.Equal(t, TitleIntro, r.Sections[0].Title)
	assert.Contains(t, r.Sections[0].Paragraphs[0], "计划投资10000万元")
	assert.Equal(t, TitleJudgement, r.Sections[1].Title)
	judge := strings.Join(r.Sections[1].Paragraphs, "\n")
	assert.Contains(t, judge, "装备制造类")
	assert.Contains(t, judge, "营收由18000万元增至22000万元")
	assert.Contains(t, judge, "稳中向好")
	assert.Contains(t, judge, "达产期36个月")
}

func TestAssessVeto(t *testing.T) {
	s := loadSubmission(t, "park.yaml")
	s.Risks.Dishonest = true
	s.Risks.LicenseMissing = true

	r, err := Assess(s, loadProfile(t, "park"), Options{})
	require.NoError(t, err)

	assert.True(t, r.Vetoed)
	assert.Equal(t, "通过/签约", r.Result.Label, "score band is kept in the result")
	assert.Equal(t, "暂缓/拒绝", r.Decision)
	assert.Equal(t, 0, r.DecisionRank)
	require.NotEmpty(t, r.Reasons)
	assert.Equal(t, "命中一票否决：失信被执行/严重信用风险；核心资质缺失且短期不可补齐", r.Reasons[0])
	judge := strings.Join(r.Sections[1].Paragraphs, "\n")
	assert.Contains(t, judge, "风险提示")
}

func TestAssessParkBandBoundary(t *testing.T) {
	// 100 mu at 240 invest and 12.5 tax per mu: 40 + 15 + 4 = 59 of 95 points.
	base := project.Project{
		Name: "边界项目", Type: "land", LandMu: 100, Investment: 24000, AnnualTax: 1250,
		Industry: "eqp", NeedType: "buy", Carrier: "kcg", CustomerStability: "稳定",
	}
	tests := []struct {
		name     string
		values   map[string]any
		score    float64
		label    string
		decision string
	}{
		{"59 points", nil, 62.1, "暂缓/拒绝", "暂缓/拒绝"},
		{"60 points", map[string]any{"invest_attainment": 82}, 63.2, "附条件通过", "附条件通过"},
		{"75 points", map[string]any{"invest_attainment": 100, "tax_attainment": 70}, 78.9, "通过/签约", "附条件通过"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			r, err := Assess(&project.Submission{Project: &p, Values: tt.values}, loadProfile(t, "park"), Options{})
			require.NoError(t, err)
			assert.InDelta(t, tt.score, r.Result.Score, 1e-9)
			assert.Equal(t, tt.label, r.Result.Label)
			assert.Equal(t, tt.decision, r.Decision)
		})
	}
}

func TestAssessHardStandardCeiling(t *testing.T) {
	s := loadSubmission(t, "park.yaml")
	s.Project.LandMu = 50 // 200 per mu against 300

	r, err := Assess(s, loadProfile(t, "park"), Options{})
	require.NoError(t, err)

	assert.False(t, r.Metrics.PassHard)
	assert.Equal(t, "通过/签约", r.Result.Label)
	assert.Equal(t, "附条件通过", r.Decision)
	require.Len(t, r.Reasons, 1)
	assert.Equal(t, "投资强度未达标：需追加固定投资约 5000 万元", r.Reasons[0])
	judge := strings.Join(r.Sections[1].Paragraphs, "\n")
	assert.Contains(t, judge, "投资补齐建议：追加固定投资约 5000 万元")
}

func TestAssessNoArea(t *testing.T) {
	s := loadSubmission(t, "park.yaml")
	s.Project.LandMu = 0

	r, err := Assess(s, loadProfile(t, "park"), Options{})
	require.NoError(t, err)
	assert.False(t, r.Metrics.PassHard)
	assert.Contains(t, r.Reasons, "未提供占地面积或建筑面积，无法折算亩均强度")
}

func TestAssessHardStandardFloor(t *testing.T) {
	prof := loadProfile(t, "basic")
	prof.Standards = profile.Standards{InvestPerMu: 300, TaxPerMu: 25}
	prof.Decision.FloorLabel = "推荐"

	s := &project.Submission{
		Project: &project.Project{Name: "x", LandMu: 10, Investment: 5000, AnnualTax: 500},
		Values:  map[string]any{"tech": 10, "market": 10, "risk": 10},
	}
	r, err := Assess(s, prof, Options{})
	require.NoError(t, err)

	assert.Equal(t, "不合格", r.Result.Label)
	assert.Equal(t, "推荐", r.Decision)
	assert.Equal(t, 2, r.DecisionRank)
}

func TestAssessGenericProfile(t *testing.T) {
	r, err := Assess(loadSubmission(t, "basic.yaml"), loadProfile(t, "basic"), Options{})
	require.NoError(t, err)

	assert.InDelta(t, 66.0, r.Result.Score, 1e-9)
	assert.Equal(t, "合格", r.Decision)
	assert.Nil(t, r.Project)
	assert.Nil(t, r.Metrics)
	assert.Empty(t, r.Sections)
	assert.Empty(t, r.Advice)
	assert.NotEmpty(t, r.Result.Narrative)
}

func TestAssessMissingCriterion(t *testing.T) {
	_, err := Assess(loadSubmission(t, "basic_missing.yaml"), loadProfile(t, "basic"), Options{})
	var mce *scoring.MissingCriterionError
	require.True(t, errors.As(err, &mce), "expected MissingCriterionError, got %v", err)
	assert.Equal(t, "risk", mce.Criterion)
}

func TestAssessNeutralReason(t *testing.T) {
	prof := loadProfile(t, "basic")
	prof.Missing = scoring.MissingNeutral

	r, err := Assess(loadSubmission(t, "basic_missing.yaml"), prof, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 68.0, r.Result.Score, 1e-9)
	require.Len(t, r.Reasons, 1)
	assert.Contains(t, r.Reasons[0], "Risk control")
}

func TestAssessWrongKindIsMissing(t *testing.T) {
	s := &project.Submission{Values: map[string]any{"tech": "lots", "market": 1, "risk": 1}}
	_, err := Assess(s, loadProfile(t, "basic"), Options{})
	var mce *scoring.MissingCriterionError
	require.True(t, errors.As(err, &mce), "expected MissingCriterionError, got %v", err)
	assert.Equal(t, "tech", mce.Criterion)
}

func TestAssessWrongKindNeutral(t *testing.T) {
	prof := loadProfile(t, "basic")
	prof.Missing = scoring.MissingNeutral

	s := &project.Submission{Values: map[string]any{"tech": "lots", "market": 60, "risk": 40}}
	r, err := Assess(s, prof, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 51.0, r.Result.Score, 1e-9)
	assert.Equal(t, []string{"tech"}, r.Result.Substituted)
}

func TestAssessInvalidProfile(t *testing.T) {
	prof := loadProfile(t, "basic")
	prof.Weights = scoring.Weights{"tech": 1, "ghost": 1}

	_, err := Assess(loadSubmission(t, "basic.yaml"), prof, Options{})
	var ce *scoring.ConfigurationError
	require.True(t, errors.As(err, &ce), "expected ConfigurationError, got %v", err)
	assert.Contains(t, ce.Error(), "ghost")
}

func TestAssessRedact(t *testing.T) {
	s := loadSubmission(t, "park.yaml")
	s.Project.Content = "新建产线，联系人13912345678"

	r, err := Assess(s, loadProfile(t, "park"), Options{Redact: true})
	require.NoError(t, err)

	assert.NotContains(t, r.Project.Content, "13912345678")
	assert.NotContains(t, r.Sections[0].Paragraphs[0], "13912345678")
	assert.Contains(t, s.Project.Content, "13912345678", "input submission must not be modified")
}

func TestAssessDeterministic(t *testing.T) {
	prof := loadProfile(t, "park")
	a, err := Assess(loadSubmission(t, "park.yaml"), prof, Options{})
	require.NoError(t, err)
	b, err := Assess(loadSubmission(t, "park.yaml"), prof, Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecide(t *testing.T) {
	prof := loadProfile(t, "park")
	pass := &project.Metrics{PassHard: true, Standards: prof.Standards}
	fail := &project.Metrics{PassHard: false, Standards: prof.Standards}

	tests := []struct {
		name   string
		rank   int
		m      *project.Metrics
		vetoed bool
		want   int
	}{
		{"veto wins", 2, pass, true, 0},
		{"pass keeps high", 2, pass, false, 2},
		{"pass lifts low", 0, pass, false, 1},
		{"fail caps high", 2, fail, false, 1},
		{"fail keeps low", 0, fail, false, 0},
		{"no metrics", 2, nil, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decide(tt.rank, tt.m, tt.vetoed, prof))
		})
	}
}

func TestAdviceIndustrialPort(t *testing.T) {
	got := advice(&project.Project{NeedType: "rent", Carrier: "ipark"})
	require.Len(t, got, 2)
	assert.Equal(t, "产业港项目：产发公司采取“双同步”推进——推进载体建设（征收→设计→施工→验收），并同步匹配地块/厂房与企业需求，防止“签约不落地”。", got[1])

	got = advice(&project.Project{NeedType: "buy_land", Carrier: "social", AnnualTax: 2000})
	assert.Equal(t, []string{AdviceSigning, AdviceStatistics, AdviceLand}, got)
}

package internal

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dshills/parkeval/internal/assess"
	"github.com/dshills/parkeval/internal/export"
	"github.com/dshills/parkeval/internal/profile"
	"github.com/dshills/parkeval/internal/project"
	"github.com/dshills/parkeval/internal/schema"
)

func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Dir(filepath.Dir(filename))
}

type goldenCase struct {
	Submission string  `yaml:"submission"`
	Profile    string  `yaml:"profile"`
	Score      float64 `yaml:"score"`
	Label      string  `yaml:"label"`
	Decision   string  `yaml:"decision"`
	Vetoed     bool    `yaml:"vetoed"`
	Reasons    int     `yaml:"reasons"`
	Advice     int     `yaml:"advice"`
}

func loadGolden(t *testing.T) []goldenCase {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(projectRoot(), "testdata", "golden", "expected.yaml"))
	if err != nil {
		t.Fatalf("failed to read golden file: %v", err)
	}
	var cases []goldenCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		t.Fatalf("failed to parse golden file: %v", err)
	}
	return cases
}

func TestGoldenSubmissions(t *testing.T) {
	for _, gc := range loadGolden(t) {
		t.Run(gc.Submission, func(t *testing.T) {
			sub, err := project.Load(filepath.Join(projectRoot(), "testdata", "submissions", gc.Submission))
			if err != nil {
				t.Fatalf("load submission: %v", err)
			}
			if errs := schema.ValidateSubmission(sub); len(errs) > 0 {
				t.Fatalf("submission invalid: %v", errs)
			}
			prof, err := profile.LoadBuiltin(gc.Profile)
			if err != nil {
				t.Fatalf("load profile: %v", err)
			}

			rep, err := assess.Assess(sub, prof, assess.Options{Redact: true})
			if err != nil {
				t.Fatalf("assess: %v", err)
			}
			rep.ID, rep.Tool, rep.Version = "golden", "parkeval", "test"

			if rep.Result.Score != gc.Score {
				t.Errorf("score = %v, want %v", rep.Result.Score, gc.Score)
			}
			if rep.Result.Label != gc.Label {
				t.Errorf("label = %q, want %q", rep.Result.Label, gc.Label)
			}
			if rep.Decision != gc.Decision {
				t.Errorf("decision = %q, want %q", rep.Decision, gc.Decision)
			}
			if rep.Vetoed != gc.Vetoed {
				t.Errorf("vetoed = %v, want %v", rep.Vetoed, gc.Vetoed)
			}
			if len(rep.Reasons) != gc.Reasons {
				t.Errorf("reasons = %q, want %d entries", rep.Reasons, gc.Reasons)
			}
			if len(rep.Advice) != gc.Advice {
				t.Errorf("advice = %q, want %d entries", rep.Advice, gc.Advice)
			}

			for _, e := range schema.ValidateReport(rep, prof) {
				t.Errorf("report validation: %s", e)
			}

			for _, f := range export.Formats {
				data, err := export.Export(rep, f, export.Options{})
				if err != nil {
					t.Errorf("export %s: %v", f, err)
					continue
				}
				if len(data) == 0 {
					t.Errorf("export %s produced no output", f)
				}
			}
			md, _ := export.Export(rep, export.FormatMarkdown, export.Options{})
			if !strings.Contains(string(md), gc.Decision) {
				t.Errorf("markdown does not state the decision %q", gc.Decision)
			}
		})
	}
}

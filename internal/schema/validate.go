// Package schema validates submissions and the reports produced from them.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dshills/parkeval/internal/assess"
	"github.com/dshills/parkeval/internal/profile"
	"github.com/dshills/parkeval/internal/project"
	"github.com/dshills/parkeval/internal/scoring"
)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateSubmission checks the project form fields. A submission must carry
// a project, explicit values, or both.
func ValidateSubmission(s *project.Submission) []ValidationError {
	var errs []ValidationError
	if s.Project == nil && len(s.Values) == 0 {
		errs = append(errs, ValidationError{"values", "a project or explicit values are required"})
	}
	if s.Project == nil {
		return errs
	}

	err := validate.Struct(s.Project)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return append(errs, ValidationError{"project", err.Error()})
	}
	for _, fe := range verrs {
		path := "project" + strings.TrimPrefix(fe.Namespace(), "Project")
		errs = append(errs, ValidationError{path, message(fe)})
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "numeric":
		return fmt.Sprintf("must be numeric, got %q", fe.Value())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}

// ValidateReport checks a report for internal consistency with the profile
// that produced it.
func ValidateReport(r *assess.Report, prof *profile.Profile) []ValidationError {
	var errs []ValidationError

	if r.ID == "" {
		errs = append(errs, ValidationError{"id", "required"})
	}
	if r.Tool == "" {
		errs = append(errs, ValidationError{"tool", "required"})
	}
	if r.Version == "" {
		errs = append(errs, ValidationError{"version", "required"})
	}
	if r.Input.Profile != prof.Name {
		errs = append(errs, ValidationError{"input.profile", fmt.Sprintf("expected %q, got %q", prof.Name, r.Input.Profile)})
	}

	res := r.Result
	if math.IsNaN(res.Score) || res.Score < 0 || res.Score > 100 {
		errs = append(errs, ValidationError{"result.score", fmt.Sprintf("must be within [0, 100], got %g", res.Score)})
	} else {
		band, rank := scoring.AssignLabel(res.Score, prof.Thresholds)
		if res.Label != band.Label {
			errs = append(errs, ValidationError{"result.label", fmt.Sprintf("score %.1f maps to %q, got %q", res.Score, band.Label, res.Label)})
		}
		if res.Rank != rank {
			errs = append(errs, ValidationError{"result.rank", fmt.Sprintf("expected %d, got %d", rank, res.Rank)})
		}
	}

	var share float64
	for i, c := range res.Contributions {
		prefix := fmt.Sprintf("result.contributions[%d]", i)
		if _, ok := prof.Weights[c.Criterion]; !ok {
			errs = append(errs, ValidationError{prefix + ".criterion", fmt.Sprintf("%q is not weighted in profile %s", c.Criterion, prof.Name)})
		}
		if c.Normalized < 0 || c.Normalized > 100 {
			errs = append(errs, ValidationError{prefix + ".normalized", "must be within [0, 100]"})
		}
		share += c.Share
	}
	if len(res.Contributions) > 0 && math.Abs(share-1) > 1e-6 {
		errs = append(errs, ValidationError{"result.contributions", fmt.Sprintf("shares sum to %g, expected 1", share)})
	}

	if r.DecisionRank < 0 || r.DecisionRank >= len(prof.Thresholds) {
		errs = append(errs, ValidationError{"decision_rank", fmt.Sprintf("out of range: %d", r.DecisionRank)})
	} else if got := prof.Thresholds[r.DecisionRank].Label; got != r.Decision {
		errs = append(errs, ValidationError{"decision", fmt.Sprintf("rank %d is %q, got %q", r.DecisionRank, got, r.Decision)})
	}

	if r.Vetoed {
		if len(r.VetoReasons) == 0 {
			errs = append(errs, ValidationError{"veto_reasons", "required when vetoed"})
		}
		if v := prof.Decision.VetoLabel; v != "" && r.Decision != v {
			errs = append(errs, ValidationError{"decision", fmt.Sprintf("vetoed report must conclude %q, got %q", v, r.Decision)})
		}
	}

	for i, s := range r.Sections {
		if s.Title == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("sections[%d].title", i), "required"})
		}
	}

	return errs
}

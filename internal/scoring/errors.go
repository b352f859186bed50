package scoring

import (
	"fmt"
	"strings"
)

// MissingCriterionError reports a weighted criterion with no usable value.
type MissingCriterionError struct {
	Criterion string
	Reason    string
}

func (e *MissingCriterionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing criterion %q", e.Criterion)
	}
	return fmt.Sprintf("missing criterion %q: %s", e.Criterion, e.Reason)
}

// ConfigurationError reports an internally inconsistent catalog, weight set,
// threshold list or narrative template.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid scoring configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigurationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ConfigurationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

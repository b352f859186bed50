package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Normalize maps a value onto 0-100 according to the criterion definition.
// ok is false when the value has the wrong kind or an unknown choice.
func Normalize(c Criterion, v Value) (score float64, ok bool) {
	if v.Kind != c.Kind {
		return 0, false
	}
	switch c.Kind {
	case KindNumeric:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return 0, false
		}
		lo, hi := c.bounds()
		score = clamp((v.Number-lo)/(hi-lo)*100, 0, 100)
		if c.Invert {
			score = 100 - score
		}
		return score, true
	case KindCategorical:
		s, found := c.Levels[v.Choice]
		if !found {
			return 0, false
		}
		return clamp(s, 0, 100), true
	case KindFlag:
		if v.Flag {
			return 100, true
		}
		return 0, true
	case KindText:
		for _, rule := range c.Keywords {
			for _, kw := range rule.Contains {
				if kw != "" && strings.Contains(v.Text, kw) {
					return clamp(rule.Score, 0, 100), true
				}
			}
		}
		return clamp(c.Default, 0, 100), true
	}
	return 0, false
}

// bounds returns the numeric range, defaulting to 0-100.
func (c Criterion) bounds() (float64, float64) {
	if c.Min == 0 && c.Max == 0 {
		return 0, 100
	}
	return c.Min, c.Max
}

// ParseValue converts a raw decoded form value into a Value of the criterion's kind.
func ParseValue(c Criterion, raw any) (Value, error) {
	switch c.Kind {
	case KindNumeric:
		f, err := toFloat(raw)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	case KindCategorical:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected a choice, got %T", raw)
		}
		return ChoiceValue(strings.TrimSpace(s)), nil
	case KindFlag:
		switch v := raw.(type) {
		case bool:
			return FlagValue(v), nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return Value{}, fmt.Errorf("expected true/false, got %q", v)
			}
			return FlagValue(b), nil
		}
		return Value{}, fmt.Errorf("expected true/false, got %T", raw)
	case KindText:
		if raw == nil {
			return TextValue(""), nil
		}
		return TextValue(fmt.Sprint(raw)), nil
	}
	return Value{}, fmt.Errorf("unknown kind %q", c.Kind)
}

// InputFromRaw builds an Input from decoded form values. Keys the catalog does
// not know are ignored. A value that cannot be read as the criterion's kind is
// left out of the Input and reported as a *MissingCriterionError; the returned
// Input still holds every value that could be read.
func InputFromRaw(cat Catalog, raw map[string]any) (Input, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	in := make(Input, len(raw))
	var firstErr error
	for _, name := range names {
		c, ok := cat.Get(name)
		if !ok {
			continue
		}
		val, err := ParseValue(c, raw[name])
		if err != nil {
			if firstErr == nil {
				firstErr = &MissingCriterionError{Criterion: name, Reason: err.Error()}
			}
			continue
		}
		in[name] = val
	}
	return in, firstErr
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", raw)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

package scoring

import "sort"

// SortByPoints returns a copy of the contributions ordered by points earned
// (highest first), then by criterion name.
func SortByPoints(cs []Contribution) []Contribution {
	out := append([]Contribution(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Criterion < out[j].Criterion
	})
	return out
}

// SortByShortfall returns a copy of the contributions ordered by points lost
// (largest first), then by criterion name.
func SortByShortfall(cs []Contribution) []Contribution {
	out := append([]Contribution(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Shortfall != out[j].Shortfall {
			return out[i].Shortfall > out[j].Shortfall
		}
		return out[i].Criterion < out[j].Criterion
	})
	return out
}

// Top keeps at most n contributions that satisfy keep, preserving order.
func Top(cs []Contribution, n int, keep func(Contribution) bool) []Contribution {
	var out []Contribution
	for _, c := range cs {
		if len(out) == n {
			break
		}
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

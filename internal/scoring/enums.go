package scoring

// Kind identifies how a criterion value is interpreted.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindFlag        Kind = "flag"
	KindText        Kind = "text"
)

// Valid reports whether k is a known criterion kind.
func (k Kind) Valid() bool {
	switch k {
	case KindNumeric, KindCategorical, KindFlag, KindText:
		return true
	}
	return false
}

// MissingPolicy decides what happens when a weighted criterion has no value.
type MissingPolicy string

const (
	MissingFail    MissingPolicy = "fail"
	MissingNeutral MissingPolicy = "neutral"
)

// Valid reports whether m is a known missing-value policy.
func (m MissingPolicy) Valid() bool {
	switch m {
	case MissingFail, MissingNeutral, "":
		return true
	}
	return false
}

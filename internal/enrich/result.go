package enrich

import (
	"math"
	"strconv"
	"strings"
)

// Group is the coarse semantic category of a column.
type Group string

const (
	GroupIdentifier  Group = "identifier"
	GroupNumeric     Group = "numeric"
	GroupCategorical Group = "categorical"
	GroupDatetime    Group = "datetime"
)

// Groups lists the allowed groups in prompt order.
var Groups = []Group{GroupIdentifier, GroupNumeric, GroupCategorical, GroupDatetime}

// Valid reports whether g is one of Groups. Matching is case-sensitive.
func (g Group) Valid() bool {
	switch g {
	case GroupIdentifier, GroupNumeric, GroupCategorical, GroupDatetime:
		return true
	}
	return false
}

const DefaultDescription = "Unable to determine description"

// Result is the enrichment written back for one dictionary row.
type Result struct {
	Group       Group   `json:"group"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// DefaultResult is substituted whenever a reply cannot be used.
func DefaultResult() Result {
	return Result{Group: GroupCategorical, Description: DefaultDescription, Confidence: 0}
}

// FormatConfidence renders c with at least one decimal digit (0.0, 0.95, 1.0).
func FormatConfidence(c float64) string {
	s := strconv.FormatFloat(c, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Clamp bounds c to [0,1].
func Clamp(c float64) float64 {
	return math.Max(0, math.Min(1, c))
}

package stats

import (
	"fmt"
	"strings"
)

// SortKey is a Record field that stats can be ordered by
type SortKey string

// Sort keys
const (
	SortByCount    SortKey = "count"
	SortByDelta    SortKey = "delta"
	SortByChars    SortKey = "chars"
	SortByPercent  SortKey = "percent"
	SortByIncrease SortKey = "increase"
	SortByAverage  SortKey = "average"
)

// DefaultSortKey is the SortKey used when none is given
const DefaultSortKey = SortByCount

var sortKeyAccessors = map[SortKey]func(r *Record) float64{
	SortByCount:    func(r *Record) float64 { return float64(r.Count) },
	SortByDelta:    func(r *Record) float64 { return float64(r.Delta) },
	SortByChars:    func(r *Record) float64 { return float64(r.Chars) },
	SortByPercent:  func(r *Record) float64 { return r.Percent },
	SortByIncrease: func(r *Record) float64 { return r.Increase },
	SortByAverage:  func(r *Record) float64 { return r.Average },
}

// SortKeys lists all valid sort keys in column order
var SortKeys = []SortKey{SortByCount, SortByDelta, SortByChars, SortByPercent, SortByIncrease, SortByAverage}

// UnknownSortKeyError is returned when parsing a sort key that isn't one of SortKeys
type UnknownSortKeyError struct {
	Key string
}

func (e *UnknownSortKeyError) Error() string {
	valid := make([]string, 0, len(SortKeys))
	for _, k := range SortKeys {
		valid = append(valid, string(k))
	}

	return fmt.Sprintf("unknown sort key [%s], valid keys are: %s", e.Key, strings.Join(valid, ", "))
}

// ParseSortKey returns the SortKey matching raw (case-insensitive). An empty value returns the DefaultSortKey
func ParseSortKey(raw string) (key SortKey, err error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return DefaultSortKey, nil
	}

	key = SortKey(normalized)
	if _, ok := sortKeyAccessors[key]; !ok {
		return "", &UnknownSortKeyError{Key: raw}
	}

	return key, nil
}

// Value returns the value of the field identified by k on record r
func (k SortKey) Value(r *Record) float64 {
	return sortKeyAccessors[k](r)
}

package harvest

import (
	"fmt"
	"strconv"
	"strings"
)

// BatchLimit is the caller-supplied ceiling on the number of batches a stage run may execute.
// The zero value means "all".
type BatchLimit struct {
	n int
}

// AllBatches runs a stage until its frontier is exhausted.
func AllBatches() BatchLimit { return BatchLimit{} }

// Batches runs at most n batches. n <= 0 means all.
func Batches(n int) BatchLimit {
	if n < 0 {
		n = 0
	}
	return BatchLimit{n: n}
}

// ParseBatchLimit accepts "all", "0" (also all) or a positive batch count.
func ParseBatchLimit(s string) (BatchLimit, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return BatchLimit{}, fmt.Errorf("batch limit is required: use a positive number or \"all\"")
	}
	if s == "all" {
		return AllBatches(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return BatchLimit{}, fmt.Errorf("invalid batch limit %q: use a positive number or \"all\"", s)
	}
	return Batches(n), nil
}

// IsAll reports whether the limit is unbounded.
func (l BatchLimit) IsAll() bool { return l.n == 0 }

// Plan returns how many of total batches to run.
func (l BatchLimit) Plan(total int) int {
	if l.IsAll() || l.n > total {
		return total
	}
	return l.n
}

func (l BatchLimit) String() string {
	if l.IsAll() {
		return "all"
	}
	return strconv.Itoa(l.n)
}

package chem

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrUnknownOxide = errors.New("unknown oxide")
	ErrBadFormula   = errors.New("not an oxide formula")
)

var oxideFormula = regexp.MustCompile(`^([A-Z][a-z]?)(\d*)O(\d*)t?$`)

// Formula is the cation/oxygen make-up of a simple oxide such as Al2O3.
type Formula struct {
	Cation  string
	Cations int
	Oxygens int
}

// CationsPerOxygen returns the number of cations per oxygen.
func (f Formula) CationsPerOxygen() float64 {
	return float64(f.Cations) / float64(f.Oxygens)
}

// ParseFormula reads a simple oxide formula. A trailing "t" (total iron,
// FeOt) is accepted.
func ParseFormula(oxide string) (Formula, error) {
	m := oxideFormula.FindStringSubmatch(oxide)
	if m == nil {
		return Formula{}, fmt.Errorf("%w: %q", ErrBadFormula, oxide)
	}
	f := Formula{Cation: m[1], Cations: 1, Oxygens: 1}
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Formula{}, fmt.Errorf("%w: %q", ErrBadFormula, oxide)
		}
		f.Cations = n
	}
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return Formula{}, fmt.Errorf("%w: %q", ErrBadFormula, oxide)
		}
		f.Oxygens = n
	}
	return f, nil
}

package cipw

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type columnKind int

const (
	kindOxide    columnKind = iota // weight percent
	kindTracePPM                   // element ppm folded into its oxide
	kindAnionPPM                   // F, Cl, S in ppm
)

type chemColumn struct {
	index  int
	name   string
	target Component
	kind   columnKind
	factor float64 // converts the cell value to oxide weight percent
}

// columnPlan maps table columns onto the fixed composition schema.
type columnPlan struct {
	skip      int
	idColumns []string
	chem      []chemColumn
	total     int
	ignored   []string
}

func (e *Engine) planColumns(columns []string, opts Options) (columnPlan, []Warning, error) {
	if len(columns) == 0 {
		return columnPlan{}, nil, ErrEmptyTable
	}
	if opts.SkipCols > len(columns) {
		return columnPlan{}, nil, fmt.Errorf("%w: %d exceeds %d columns", ErrInvalidSkipCols, opts.SkipCols, len(columns))
	}

	plan := columnPlan{
		skip:      opts.SkipCols,
		idColumns: append([]string(nil), columns[:opts.SkipCols]...),
		total:     -1,
	}
	var warnings []Warning
	seen := make(map[string]bool)

	for i := opts.SkipCols; i < len(columns); i++ {
		name := strings.TrimSpace(columns[i])
		if name == "Total" || name == "Sum" {
			if plan.total < 0 {
				plan.total = i
				continue
			}
		}
		col, ok := e.recognize(name, opts.MinorIncluded)
		if !ok || seen[name] {
			plan.ignored = append(plan.ignored, columns[i])
			warnings = append(warnings, Warning{Sample: -1, Kind: WarnIgnoredColumn, Message: fmt.Sprintf("column %q ignored", columns[i])})
			continue
		}
		seen[name] = true
		col.index = i
		plan.chem = append(plan.chem, col)
	}

	if plan.total < 0 {
		warnings = append(warnings, Warning{Sample: -1, Kind: WarnMissingTotal, Message: "Total column not found"})
	}
	return plan, warnings, nil
}

func (e *Engine) recognize(name string, minor bool) (chemColumn, bool) {
	for _, c := range majorComponents {
		if c.String() == name {
			return chemColumn{name: name, target: c, kind: kindOxide, factor: 1}, true
		}
	}
	if name == CO2.String() {
		return chemColumn{name: name, target: CO2, kind: kindOxide, factor: 1}, true
	}
	if !minor {
		return chemColumn{}, false
	}
	for _, c := range minorComponents {
		if c.String() != name {
			continue
		}
		if c.elemental() {
			return chemColumn{name: name, target: c, kind: kindAnionPPM, factor: 1e-4}, true
		}
		return chemColumn{name: name, target: c, kind: kindOxide, factor: 1}, true
	}
	if ox, ok := traceElements[name]; ok {
		ratio, ok := e.ref.ElementRatio(ox.String())
		if !ok || ratio == 0 {
			return chemColumn{}, false
		}
		return chemColumn{name: name, target: ox, kind: kindTracePPM, factor: 1 / (ratio * 1e4)}, true
	}
	return chemColumn{}, false
}

// sample is a prepared composition in oxide weight percent.
type sample struct {
	index      int
	id         []string
	wt         [numComponents]float64
	sumInput   float64
	inputTotal float64
	ratios     ratios
	warnings   []Warning
}

type ratios struct {
	feotMgO  float64
	k2oNa2O  float64
	si       float64
	mgNumber float64
	ar       float64
}

func (e *Engine) prepare(plan columnPlan, index int, row []Cell, opts Options) sample {
	s := sample{index: index, id: make([]string, plan.skip)}
	for i := 0; i < plan.skip; i++ {
		if i < len(row) {
			s.id[i] = string(row[i])
		}
	}

	for _, col := range plan.chem {
		var raw Cell
		if col.index < len(row) {
			raw = row[col.index]
		}
		v, err := parseCell(raw)
		if err != nil {
			s.warnings = append(s.warnings, Warning{Sample: index, Kind: WarnInvalidValue,
				Message: fmt.Sprintf("%s: %q read as 0", col.name, string(raw))})
			continue
		}
		if v < 0 {
			s.warnings = append(s.warnings, Warning{Sample: index, Kind: WarnInvalidValue,
				Message: fmt.Sprintf("%s: negative value %g read as 0", col.name, v)})
			continue
		}
		s.wt[col.target] += v * col.factor
	}

	for _, v := range s.wt {
		s.sumInput += v
	}
	s.inputTotal = s.sumInput
	if opts.NormalizeEntry {
		if s.sumInput > 0 {
			k := 100 / s.sumInput
			s.inputTotal = 0
			for c := range s.wt {
				s.wt[c] *= k
				s.inputTotal += s.wt[c]
			}
		} else {
			s.warnings = append(s.warnings, Warning{Sample: index, Kind: WarnZeroTotal,
				Message: "composition sums to zero, not normalized"})
		}
	}

	s.ratios = e.petrogeneticRatios(&s.wt)
	return s
}

func (e *Engine) petrogeneticRatios(wt *[numComponents]float64) ratios {
	m := &e.consts.mass
	var r ratios
	feot := 2*m[FeO]/m[Fe2O3]*wt[Fe2O3] + wt[FeO]
	r.feotMgO = safeDiv(feot, wt[MgO])
	r.k2oNa2O = safeDiv(wt[K2O], wt[Na2O])
	r.si = safeDiv(100*wt[MgO], wt[MgO]+wt[FeO]+wt[Fe2O3]+wt[Na2O]+wt[K2O])
	mg := wt[MgO] / m[MgO]
	r.mgNumber = safeDiv(100*mg, mg+wt[FeO]/m[FeO])

	// Wright (1969): 2·Na2O stands for total alkalis in potassic silicic rocks.
	alk := wt[Na2O] + wt[K2O]
	if wt[SiO2] > 50 && r.k2oNa2O > 1 && r.k2oNa2O < 2.5 {
		alk = 2 * wt[Na2O]
	}
	r.ar = safeDiv(wt[Al2O3]+wt[CaO]+alk, wt[Al2O3]+wt[CaO]-alk)
	return r
}

func parseCell(c Cell) (float64, error) {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return 0, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

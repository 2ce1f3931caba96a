package cipw

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Component is an oxide or anion column of the molar pool.
type Component int

const (
	SiO2 Component = iota
	TiO2
	Al2O3
	Fe2O3
	FeO
	MnO
	MgO
	CaO
	Na2O
	K2O
	P2O5
	CO2
	F
	Cl
	S
	SO3
	NiO
	CoO
	BaO
	SrO
	Rb2O
	Cs2O
	Li2O
	ZrO2
	Cr2O3
	V2O3
	numComponents
)

var componentNames = [numComponents]string{
	"SiO2", "TiO2", "Al2O3", "Fe2O3", "FeO", "MnO", "MgO", "CaO", "Na2O", "K2O", "P2O5",
	"CO2", "F", "Cl", "S", "SO3",
	"NiO", "CoO", "BaO", "SrO", "Rb2O", "Cs2O", "Li2O", "ZrO2", "Cr2O3", "V2O3",
}

func (c Component) String() string {
	if c < 0 || c >= numComponents {
		return "Component(" + strconv.Itoa(int(c)) + ")"
	}
	return componentNames[c]
}

// elemental reports whether the component is weighed as an element (F, Cl, S).
func (c Component) elemental() bool {
	return c == F || c == Cl || c == S
}

// major oxides are always read and always present (zero when absent).
var majorComponents = []Component{SiO2, TiO2, Al2O3, Fe2O3, FeO, MnO, MgO, CaO, Na2O, K2O, P2O5}

// minorComponents are only read when minor elements are included.
var minorComponents = []Component{F, Cl, S, SO3, NiO, CoO, BaO, SrO, Rb2O, Cs2O, Li2O, ZrO2, Cr2O3, V2O3}

// trace elements reported in ppm and the oxide they are folded into.
var traceElements = map[string]Component{
	"Ni": NiO,
	"Co": CoO,
	"Ba": BaO,
	"Sr": SrO,
	"Rb": Rb2O,
	"Cs": Cs2O,
	"Li": Li2O,
	"Zr": ZrO2,
	"Cr": Cr2O3,
	"V":  V2O3,
}

// Mineral indexes the normative phase ledger.
type Mineral int

const (
	Quartz Mineral = iota
	Corundum
	Zircon
	Orthoclase
	Albite
	Anorthite
	Leucite
	Nepheline
	Kaliophilite
	SodiumCarbonate
	Thenardite
	Halite
	Acmite
	SodiumMetasilicate
	PotassiumMetasilicate
	DiopsideMg
	DiopsideFe
	Wollastonite
	DicalciumSilicate
	HyperstheneMg
	HyperstheneFe
	OlivineMg
	OlivineFe
	Magnetite
	Chromite
	Ilmenite
	Hematite
	Sphene
	Perovskite
	Rutile
	FluorApatite
	HydroxyApatite
	Fluorite
	Pyrite
	Calcite
	numMinerals
)

var mineralCodes = [numMinerals]string{
	"Q", "C", "Z", "Or", "Ab", "An", "Lc", "Ne", "Kp", "Nc", "Th", "Hl", "Ac", "Ns", "Ks",
	"Di-mg", "Di-fe", "Wo", "Cs", "Hy-mg", "Hy-fe", "Ol-mg", "Ol-fe",
	"Mt", "Cm", "Il", "Hm", "Tn", "Pf", "Ru", "Ap-F", "Ap-O", "Fr", "Pr", "Cc",
}

// Code returns the conventional abbreviation of the mineral.
func (m Mineral) Code() string {
	if m < 0 || m >= numMinerals {
		return "Mineral(" + strconv.Itoa(int(m)) + ")"
	}
	return mineralCodes[m]
}

func (m Mineral) String() string { return m.Code() }

// Options configures a norm computation.
type Options struct {
	SkipCols       int     `json:"skip_cols" toml:"skip_cols"`
	NormalizeEntry bool    `json:"normalize_entry" toml:"normalize_entry"`
	MinorIncluded  bool    `json:"minor_included" toml:"minor_included"`
	ToRound        int     `json:"to_round" toml:"to_round"`
	CO2Cancrinite  float64 `json:"co2_cancrinite" toml:"co2_cancrinite"`
	CO2Calcite     float64 `json:"co2_calcite" toml:"co2_calcite"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{ToRound: 4}
}

const maxRound = 12

// Validate checks the options that do not depend on the table.
func (o Options) Validate() error {
	if o.SkipCols < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSkipCols, o.SkipCols)
	}
	if o.ToRound < 0 || o.ToRound > maxRound {
		return fmt.Errorf("%w: %d", ErrInvalidRounding, o.ToRound)
	}
	if o.CO2Cancrinite < 0 || o.CO2Calcite < 0 {
		return fmt.Errorf("%w: negative proportion", ErrInvalidCO2Split)
	}
	if o.CO2Cancrinite == 0 && o.CO2Calcite == 0 {
		return nil
	}
	if math.Abs(o.CO2Cancrinite+o.CO2Calcite-1) > 1e-9 {
		return fmt.Errorf("%w: cancrinite %g + calcite %g", ErrInvalidCO2Split, o.CO2Cancrinite, o.CO2Calcite)
	}
	return nil
}

// Cell is a raw table value. It decodes from JSON strings, numbers and null.
type Cell string

func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cell(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	*c = Cell(n.String())
	return nil
}

// Table is a set of analyses: SkipCols identification columns followed by
// chemistry columns.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// NewTable builds a table from string rows, as returned by CSV or XLSX readers.
func NewTable(columns []string, rows [][]string) Table {
	t := Table{Columns: columns, Rows: make([][]Cell, len(rows))}
	for i, r := range rows {
		cells := make([]Cell, len(r))
		for j, v := range r {
			cells[j] = Cell(v)
		}
		t.Rows[i] = cells
	}
	return t
}

// WarningKind classifies non-fatal conditions.
type WarningKind string

const (
	WarnMissingTotal    WarningKind = "missing_total"
	WarnIgnoredColumn   WarningKind = "ignored_column"
	WarnInvalidValue    WarningKind = "invalid_value"
	WarnZeroTotal       WarningKind = "zero_total"
	WarnSilicaExhausted WarningKind = "silica_exhausted"
	WarnSilicaDeficit   WarningKind = "silica_deficit"
)

// Warning is a non-fatal condition. Sample is -1 for table-level warnings.
type Warning struct {
	Sample  int         `json:"sample"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Sample < 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("sample %d: %s: %s", w.Sample, w.Kind, w.Message)
}

// SampleNorm is the norm of one row. Values are rounded to Options.ToRound.
type SampleNorm struct {
	Index    int      `json:"index"`
	ID       []string `json:"id,omitempty"`
	Terminal string   `json:"terminal"`
	Steps    []string `json:"steps"`

	partitions    [numPartitionColumns]float64
	free          [numFreeColumns]float64
	supplementary [numSupplementaryColumns]float64
}

// Saturated reports whether the sample had enough silica for every
// provisional phase.
func (s *SampleNorm) Saturated() bool {
	for _, st := range s.Steps {
		if st == stepOlivine.String() {
			return false
		}
	}
	return true
}

// Partition returns a weight percent column such as "Q", "Di" or "Total".
func (s *SampleNorm) Partition(name string) (float64, bool) {
	i, ok := partitionIndex[name]
	if !ok {
		return 0, false
	}
	return s.partitions[i], true
}

// Free returns a free-component column such as "CO2" or "O_wt%".
func (s *SampleNorm) Free(name string) (float64, bool) {
	i, ok := freeIndex[name]
	if !ok {
		return 0, false
	}
	return s.free[i], true
}

// Supplementary returns an index or diagnostic such as "diff_sum" or "pp_Mg#".
func (s *SampleNorm) Supplementary(name string) (float64, bool) {
	i, ok := supplementaryIndex[name]
	if !ok {
		return 0, false
	}
	return s.supplementary[i], true
}

// Result is the norm of a whole table.
type Result struct {
	Options       Options      `json:"options"`
	Samples       []SampleNorm `json:"samples"`
	Partitions    Frame        `json:"partitions"`
	Free          Frame        `json:"free"`
	Supplementary Frame        `json:"supplementary"`
	Ignored       []string     `json:"ignored_columns,omitempty"`
	Warnings      []Warning    `json:"warnings,omitempty"`
}

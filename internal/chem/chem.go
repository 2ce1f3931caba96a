// Package chem holds the reference data used by the norm calculations:
// molar masses of oxides and elements, element-to-oxide mass ratios and
// formula helpers.
package chem

import (
	"fmt"
	"sort"
)

// Molar masses after Verma et al. (2003) for oxides and De Laeter et al. (2003)
// for elements.
var oxideMolarMass = map[string]float64{
	"SiO2":   60.0843,
	"TiO2":   79.8658,
	"Al2O3":  101.961276,
	"Fe2O3":  159.6882,
	"Fe2O3t": 159.6882,
	"FeO":    71.8444,
	"FeOt":   71.8444,
	"MnO":    70.937449,
	"MgO":    40.3044,
	"CaO":    56.0774,
	"Li2O":   29.8814,
	"Na2O":   61.97894,
	"K2O":    94.1960,
	"SrO":    103.6194,
	"BaO":    153.3264,
	"Rb2O":   186.935,
	"Cs2O":   281.8103,
	"ZrO2":   123.228,
	"P2O5":   141.944522,
	"NiO":    74.6928,
	"CoO":    74.9326,
	"Cr2O3":  151.9904,
	"V2O3":   149.8812,
	"CO2":    44.0095,
	"SO3":    80.0642,
	"SnO":    134.689,
	"Ta2O5":  441.891,
	"H2O":    18.0154,
}

var elementMolarMass = map[string]float64{
	"H":  1.00794,
	"Li": 6.941,
	"C":  12.0107,
	"O":  15.9994,
	"F":  18.9984032,
	"Na": 22.989770,
	"Mg": 24.3050,
	"Al": 26.981538,
	"Si": 28.0855,
	"P":  30.973761,
	"S":  32.065,
	"Cl": 35.4527,
	"K":  39.0983,
	"Ca": 40.078,
	"Ti": 47.867,
	"Mn": 54.938049,
	"Fe": 55.845,
	"Rb": 85.4678,
	"Nb": 92.90638,
	"Ta": 180.9479,
}

// Mass fraction of the element in its oxide.
var elementToOxideRatio = map[string]float64{
	"SiO2":  0.467,
	"TiO2":  0.600,
	"Al2O3": 0.529,
	"Fe2O3": 0.699,
	"FeO":   0.777,
	"MnO":   0.774,
	"MgO":   0.603,
	"CaO":   0.715,
	"Li2O":  0.464570,
	"Na2O":  0.742,
	"K2O":   0.830,
	"Rb2O":  0.914412,
	"Cs2O":  0.943226,
	"BaO":   0.895651,
	"Cr2O3": 0.684202,
	"P2O5":  0.436,
	"SnO":   0.881,
	"Ta2O5": 0.819,
	"NiO":   0.785797,
	"CoO":   0.786483,
	"SrO":   0.845595,
	"ZrO2":  0.740318,
	"V2O3":  0.684324,
	"SO3":   0.400504,
}

var defaultOxide = map[string]string{
	"Si": "SiO2",
	"Ti": "TiO2",
	"Al": "Al2O3",
	"Fe": "FeOt",
	"Mn": "MnO",
	"Mg": "MgO",
	"Ca": "CaO",
	"Li": "Li2O",
	"Na": "Na2O",
	"K":  "K2O",
	"Rb": "Rb2O",
	"Cs": "Cs2O",
	"Ba": "BaO",
	"Sr": "SrO",
	"Ni": "NiO",
	"Co": "CoO",
	"Zr": "ZrO2",
	"Cr": "Cr2O3",
	"V":  "V2O3",
	"P":  "P2O5",
	"Sn": "SnO",
	"Ta": "Ta2O5",
	"Nb": "Nb2O5",
}

// Reference is a read-only set of chemical tables. Values are copied on
// construction so that callers may own and adjust their instance freely.
type Reference struct {
	oxides   map[string]float64
	elements map[string]float64
	ratios   map[string]float64
	defaults map[string]string
}

// NewReference returns the standard tables.
func NewReference() *Reference {
	return &Reference{
		oxides:   copyFloats(oxideMolarMass),
		elements: copyFloats(elementMolarMass),
		ratios:   copyFloats(elementToOxideRatio),
		defaults: copyStrings(defaultOxide),
	}
}

// OxideMass returns the molar mass (g/mol) of an oxide.
func (r *Reference) OxideMass(oxide string) (float64, bool) {
	m, ok := r.oxides[oxide]
	return m, ok
}

// ElementMass returns the atomic mass (g/mol) of an element.
func (r *Reference) ElementMass(el string) (float64, bool) {
	m, ok := r.elements[el]
	return m, ok
}

// MolarMass looks a symbol up in the oxide table first, then in the element
// table.
func (r *Reference) MolarMass(symbol string) (float64, bool) {
	if m, ok := r.oxides[symbol]; ok {
		return m, true
	}
	return r.ElementMass(symbol)
}

// ElementRatio returns the mass fraction of the cation in the oxide.
func (r *Reference) ElementRatio(oxide string) (float64, bool) {
	v, ok := r.ratios[oxide]
	return v, ok
}

// DefaultOxide returns the oxide an element is reported as.
func (r *Reference) DefaultOxide(el string) (string, bool) {
	ox, ok := r.defaults[el]
	return ox, ok
}

// SetOxideMass overrides or adds an oxide molar mass.
func (r *Reference) SetOxideMass(oxide string, mass float64) error {
	if mass <= 0 {
		return fmt.Errorf("molar mass of %s must be positive", oxide)
	}
	r.oxides[oxide] = mass
	return nil
}

// Oxides lists the oxides of the table in alphabetical order.
func (r *Reference) Oxides() []string {
	out := make([]string, 0, len(r.oxides))
	for k := range r.oxides {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OxideToElementPPM converts an oxide weight percent into ppm of its cation.
func (r *Reference) OxideToElementPPM(value float64, oxide string) (float64, error) {
	ratio, ok := r.ratios[oxide]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOxide, oxide)
	}
	return value * ratio * 10000, nil
}

// ElementPPMToOxide converts ppm of an element into weight percent of the
// given oxide.
func (r *Reference) ElementPPMToOxide(ppm float64, oxide string) (float64, error) {
	ratio, ok := r.ratios[oxide]
	if !ok || ratio == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOxide, oxide)
	}
	return ppm / (ratio * 10000), nil
}

// MilliCations converts an oxide weight percent into millications.
func (r *Reference) MilliCations(value float64, oxide string) (float64, error) {
	m, ok := r.oxides[oxide]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOxide, oxide)
	}
	f, err := ParseFormula(oxide)
	if err != nil {
		return 0, err
	}
	return 1000 * value / m * float64(f.Cations), nil
}

func copyFloats(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

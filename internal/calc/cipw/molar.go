package cipw

import (
	"fmt"

	"Petronorm/internal/chem"
)

// constants are the per-engine reference values resolved once from a
// chem.Reference.
type constants struct {
	mass   [numComponents]float64
	oxygen float64
}

func newConstants(ref *chem.Reference) (constants, error) {
	var c constants
	for i := Component(0); i < numComponents; i++ {
		var (
			m  float64
			ok bool
		)
		if i.elemental() {
			m, ok = ref.ElementMass(i.String())
		} else {
			m, ok = ref.OxideMass(i.String())
		}
		if !ok || m <= 0 {
			return constants{}, fmt.Errorf("%w: %s", ErrMissingReference, i)
		}
		c.mass[i] = m
	}
	o, ok := ref.ElementMass("O")
	if !ok || o <= 0 {
		return constants{}, fmt.Errorf("%w: O", ErrMissingReference)
	}
	c.oxygen = o
	return c, nil
}

// consolidation folds minor oxides into the major oxide that hosts them in
// the normative minerals.
var consolidation = []struct {
	host   Component
	guests []Component
	major  bool // applied even without minor elements
}{
	{FeO, []Component{MnO, NiO, CoO}, true},
	{CaO, []Component{BaO, SrO}, false},
	{K2O, []Component{Rb2O, Cs2O}, false},
	{Na2O, []Component{Li2O}, false},
	{Cr2O3, []Component{V2O3}, false},
}

// molar holds the molar pool and the corrected molecular weights of a sample.
type molar struct {
	pool    [numComponents]float64
	weights [numComponents]float64
}

// toMolar divides weight percents by molar masses, then merges guests into
// their hosts. The corrected weight of a host is the molar-fraction weighted
// mean of the host and guest masses, or 0 when the group is empty.
func (c *constants) toMolar(wt *[numComponents]float64, minor bool) molar {
	var m molar
	for i := range wt {
		m.pool[i] = wt[i] / c.mass[i]
	}
	m.weights = c.mass

	for _, g := range consolidation {
		members := []Component{g.host}
		switch {
		case minor:
			members = append(members, g.guests...)
		case g.major:
			members = append(members, MnO)
		}

		var total float64
		for _, x := range members {
			total += m.pool[x]
		}
		var w float64
		if total > 0 {
			for _, x := range members {
				w += m.pool[x] / total * c.mass[x]
			}
		}
		m.weights[g.host] = w
		m.pool[g.host] = total
		for _, x := range members[1:] {
			m.pool[x] = 0
		}
	}
	return m
}

// mineralWeights returns the molecular weight of every normative mineral
// from corrected oxide weights.
func (c *constants) mineralWeights(w *[numComponents]float64) [numMinerals]float64 {
	o := c.oxygen
	var mw [numMinerals]float64
	mw[Quartz] = w[SiO2]
	mw[Corundum] = w[Al2O3]
	mw[Zircon] = w[SiO2] + w[ZrO2]
	mw[Orthoclase] = w[K2O] + w[Al2O3] + 6*w[SiO2]
	mw[Albite] = w[Na2O] + w[Al2O3] + 6*w[SiO2]
	mw[Anorthite] = w[CaO] + w[Al2O3] + 2*w[SiO2]
	mw[Leucite] = w[K2O] + w[Al2O3] + 4*w[SiO2]
	mw[Nepheline] = w[Na2O] + w[Al2O3] + 2*w[SiO2]
	mw[Kaliophilite] = w[K2O] + w[Al2O3] + 2*w[SiO2]
	mw[SodiumCarbonate] = w[Na2O] + w[CO2]
	mw[Thenardite] = w[Na2O] + w[SO3]
	mw[Halite] = (w[Na2O]-o)/2 + w[Cl]
	mw[Acmite] = w[Na2O] + w[Fe2O3] + 4*w[SiO2]
	mw[SodiumMetasilicate] = w[Na2O] + w[SiO2]
	mw[PotassiumMetasilicate] = w[K2O] + w[SiO2]
	mw[DiopsideMg] = w[CaO] + w[MgO] + 2*w[SiO2]
	mw[DiopsideFe] = w[CaO] + w[FeO] + 2*w[SiO2]
	mw[Wollastonite] = w[CaO] + w[SiO2]
	mw[DicalciumSilicate] = 2*w[CaO] + w[SiO2]
	mw[HyperstheneMg] = w[MgO] + w[SiO2]
	mw[HyperstheneFe] = w[FeO] + w[SiO2]
	mw[OlivineMg] = 2*w[MgO] + w[SiO2]
	mw[OlivineFe] = 2*w[FeO] + w[SiO2]
	mw[Magnetite] = w[FeO] + w[Fe2O3]
	mw[Chromite] = w[FeO] + w[Cr2O3]
	mw[Ilmenite] = w[FeO] + w[TiO2]
	mw[Hematite] = w[Fe2O3]
	mw[Sphene] = w[CaO] + w[TiO2] + w[SiO2]
	mw[Perovskite] = w[CaO] + w[TiO2]
	mw[Rutile] = w[TiO2]
	mw[FluorApatite] = 3*w[CaO] + w[P2O5] + (w[CaO]-o+2*w[F])/3
	mw[HydroxyApatite] = 3*w[CaO] + w[P2O5] + w[CaO]/3
	mw[Fluorite] = w[CaO] - o + 2*w[F]
	mw[Pyrite] = w[FeO] - o + 2*w[S]
	mw[Calcite] = w[CaO] + w[CO2]
	return mw
}

package cipw

import "math"

// Partition columns, in output order. Ap, Di, Hy and Ol merge their
// sub-variants; Total is the unrounded sum of every other column.
var partitionColumns = [...]string{
	"Q", "C", "Z", "Or", "Ab", "An", "Lc", "Ne", "Kp", "Nc", "Th", "Hl", "Ac", "Ns", "Ks",
	"Di", "Wo", "Cs", "Hy", "Ol", "Mt", "Cm", "Il", "Hm", "Tn", "Pf", "Ru", "Ap", "Fr", "Pr", "Cc",
	"CO2", "O", "free_oxides", "Total",
}

// Free columns hold moles, except O_wt% which is the weight of released oxygen.
var freeColumns = [...]string{
	"P2O5", "F", "Cl", "SO3", "S", "Cr2O3", "ZrO2", "CO2",
	"O_12b", "O_12c", "O_13", "O_14", "O_16", "O_wt%",
}

var supplementaryColumns = [...]string{
	"pp_FeOt/MgO", "pp_K2O/Na2O", "pp_SI", "pp_Mg#", "pp_AR",
	"Ap-F", "Ap-O", "Ol-mg", "Ol-fe", "Hy-mg", "Hy-fe", "Di-mg", "Di-fe",
	"defSiO2", "sum_input", "diff_sum",
	"pp_salic", "pp_femic", "pp_CI", "pp_DI", "pp_color",
}

const (
	numPartitionColumns     = len(partitionColumns)
	numFreeColumns          = len(freeColumns)
	numSupplementaryColumns = len(supplementaryColumns)
)

var (
	partitionIndex     = indexOf(partitionColumns[:])
	freeIndex          = indexOf(freeColumns[:])
	supplementaryIndex = indexOf(supplementaryColumns[:])
)

func indexOf(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[n] = i
	}
	return m
}

// mineralColumn maps every phase to its partition column.
var mineralColumn = func() [numMinerals]int {
	var m [numMinerals]int
	for i := Mineral(0); i < numMinerals; i++ {
		code := i.Code()
		switch i {
		case DiopsideMg, DiopsideFe:
			code = "Di"
		case HyperstheneMg, HyperstheneFe:
			code = "Hy"
		case OlivineMg, OlivineFe:
			code = "Ol"
		case FluorApatite, HydroxyApatite:
			code = "Ap"
		}
		m[i] = partitionIndex[code]
	}
	return m
}()

var salicColumns = []string{"Q", "C", "Z", "Or", "Ab", "An", "Lc", "Ne", "Kp"}

// Poldervaart and Parker (1964) crystallization index weights.
const (
	ciDiopside    = 2.1570577
	ciHypersthene = 0.7007616
)

// oxygenFactors scale the released oxygen terms by how far the corrected
// host weights drift from the reference oxide masses.
type oxygenFactors struct {
	apatiteF, apatiteMixed, fluorite, halite, pyrite float64
}

func (c *constants) oxygenFactors(w *[numComponents]float64, mw *[numMinerals]float64, apF, ap float64) oxygenFactors {
	m := &c.mass
	apNominal := 3*m[CaO] + m[P2O5] + m[CaO]/3
	var f oxygenFactors
	drift := mw[FluorApatite]/apNominal - 1
	f.apatiteF = 1 + 0.1*drift
	f.apatiteMixed = 1 + 0.1*safeDiv(apF, ap)*drift
	f.fluorite = w[CaO] / m[CaO]
	f.halite = 1 + 0.5*(w[Na2O]/m[Na2O]-1)
	f.pyrite = w[FeO] / m[FeO]
	return f
}

// finalize converts the ledger to weight percent, rounds, and derives the
// indices.
func (e *Engine) finalize(s *sample, l *ledger, w *[numComponents]float64, opts Options) SampleNorm {
	mw := e.consts.mineralWeights(w)
	out := SampleNorm{Index: s.index, ID: s.id}

	var wt [numMinerals]float64
	for i := Mineral(0); i < numMinerals; i++ {
		wt[i] = l.phase[i] * mw[i]
		out.partitions[mineralColumn[i]] += wt[i]
	}

	fr := &l.free
	free := &out.free
	free[freeIndex["P2O5"]] = fr.p2o5
	free[freeIndex["F"]] = fr.f
	free[freeIndex["Cl"]] = fr.cl
	free[freeIndex["SO3"]] = fr.so3
	free[freeIndex["S"]] = fr.s
	free[freeIndex["Cr2O3"]] = fr.cr2o3
	free[freeIndex["ZrO2"]] = fr.zro2
	free[freeIndex["CO2"]] = fr.co2
	free[freeIndex["O_12b"]] = fr.o12b
	free[freeIndex["O_12c"]] = fr.o12c
	free[freeIndex["O_13"]] = fr.o13
	free[freeIndex["O_14"]] = fr.o14
	free[freeIndex["O_16"]] = fr.o16

	f := e.consts.oxygenFactors(w, &mw, l.phase[FluorApatite], l.phase[FluorApatite]+l.phase[HydroxyApatite])
	o := e.consts.oxygen
	oxygen := o * (f.apatiteF*fr.o12b + f.apatiteMixed*fr.o12c + f.fluorite*fr.o13 + f.halite*fr.o14 + f.pyrite*fr.o16)
	free[freeIndex["O_wt%"]] = oxygen

	oxides := fr.p2o5*w[P2O5] + fr.f*w[F] + fr.cl*w[Cl] + fr.so3*w[SO3] + fr.s*w[S] +
		fr.cr2o3*w[Cr2O3] + fr.zro2*w[ZrO2]
	out.partitions[partitionIndex["CO2"]] = fr.co2 * w[CO2]
	out.partitions[partitionIndex["O"]] = oxygen
	out.partitions[partitionIndex["free_oxides"]] = oxides

	total := partitionIndex["Total"]
	for i := 0; i < total; i++ {
		out.partitions[total] += out.partitions[i]
	}

	sup := &out.supplementary
	set := func(name string, v float64) { sup[supplementaryIndex[name]] = v }
	set("pp_FeOt/MgO", s.ratios.feotMgO)
	set("pp_K2O/Na2O", s.ratios.k2oNa2O)
	set("pp_SI", s.ratios.si)
	set("pp_Mg#", s.ratios.mgNumber)
	set("pp_AR", s.ratios.ar)
	set("Ap-F", wt[FluorApatite])
	set("Ap-O", wt[HydroxyApatite])
	set("Ol-mg", wt[OlivineMg])
	set("Ol-fe", wt[OlivineFe])
	set("Hy-mg", wt[HyperstheneMg])
	set("Hy-fe", wt[HyperstheneFe])
	set("Di-mg", wt[DiopsideMg])
	set("Di-fe", wt[DiopsideFe])
	set("defSiO2", l.defSiO2*w[SiO2])
	set("sum_input", s.sumInput)

	p := func(name string) float64 { return out.partitions[partitionIndex[name]] }
	var salic, minerals float64
	for _, c := range salicColumns {
		salic += p(c)
	}
	for i := range wt {
		minerals += wt[i]
	}
	set("pp_salic", salic)
	set("pp_femic", minerals-salic)
	set("pp_DI", p("Q")+p("Or")+p("Ab")+p("Ne")+p("Lc")+p("Kp"))
	set("pp_CI", p("An")+ciDiopside*wt[DiopsideMg]+wt[OlivineMg]+ciHypersthene*wt[HyperstheneMg])
	set("pp_color", p("Di")+p("Hy")+p("Ol")+p("Mt")+p("Il")+p("Hm"))

	roundAll(out.partitions[:], opts.ToRound)
	roundAll(out.free[:], opts.ToRound)
	set("diff_sum", s.inputTotal-out.partitions[total])
	roundAll(out.supplementary[:], opts.ToRound)
	return out
}

func roundAll(v []float64, digits int) {
	for i := range v {
		v[i] = round(v[i], digits)
	}
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

package cipw

import "fmt"

// epsilon is the molar tolerance used for comparisons and for clamping
// round-off residues to zero.
const epsilon = 1e-12

// provisional holds the phases that the silica resolver may still downgrade.
type provisional struct {
	or, ab, tn, wo, di, hy, lc float64
}

// freeMoles are the components left over once their host is exhausted, plus
// the oxygen released by phases that replace oxygen with F, Cl or S.
type freeMoles struct {
	p2o5, f, cl, so3, s, cr2o3, zro2, co2 float64
	o12b, o12c, o13, o14, o16             float64
}

// ledger is the per-sample working state of the norm. It is never shared
// between samples.
type ledger struct {
	index int
	pool  [numComponents]float64
	phase [numMinerals]float64
	prov  provisional

	// Unsplit pyroxene and olivine, divided into Mg and Fe members at the end.
	di, hy, ol float64
	xMg, xFe   float64

	y, d    float64 // silica demand and deficiency
	defSiO2 float64 // unrecoverable deficiency, in moles of SiO2

	free     freeMoles
	steps    []step
	warnings []Warning
}

// take removes amount from a pool entry. Residues below epsilon are zeroed,
// so no entry is ever negative.
func (l *ledger) take(c Component, amount float64) {
	v := l.pool[c] - amount
	if v < epsilon {
		v = 0
	}
	l.pool[c] = v
}

func (l *ledger) drain(c Component) { l.pool[c] = 0 }

func atLeast(a, b float64) bool { return a >= b-epsilon }

func nonNeg(v float64) float64 {
	if v < epsilon {
		return 0
	}
	return v
}

func (l *ledger) warn(kind WarningKind, format string, args ...any) {
	l.warnings = append(l.warnings, Warning{Sample: l.index, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// allocate runs the ordered allocation. The order encodes geochemical
// priority: accessory and volatile phases, then felsic framework minerals,
// then mafic minerals. It must not be changed.
func (l *ledger) allocate(opts Options) {
	if opts.MinorIncluded {
		l.zircon()
	}
	l.apatite(opts.MinorIncluded)
	if opts.MinorIncluded {
		l.fluorite()
		l.halite()
		l.thenardite()
		l.pyrite()
	}
	l.carbonates(opts.CO2Cancrinite, opts.CO2Calcite)
	if opts.MinorIncluded {
		l.chromite()
	}
	l.ilmenite()
	l.orthoclase()
	l.albite()
	l.acmite()
	l.anorthite()
	l.sphene()
	l.magnetite()
	l.splitFeMg()
	l.pyroxene()
}

// Step 11.
func (l *ledger) zircon() {
	zr := l.pool[ZrO2]
	if zr <= 0 {
		return
	}
	si := l.pool[SiO2]
	if si > zr {
		l.phase[Zircon] = zr
	} else {
		l.phase[Zircon] = si
		l.free.zro2 = zr - si
		l.warn(WarnSilicaExhausted, "no SiO2 left after zircon allocation, check data")
	}
	l.y += l.phase[Zircon]
	l.drain(ZrO2)
}

// Step 12. Apatite takes 3 1/3 CaO per P2O5; its F part is fluorapatite as
// far as F allows.
func (l *ledger) apatite(minor bool) {
	const ca = 3 + 1.0/3
	p := l.pool[P2O5]
	ap := p
	if atLeast(l.pool[CaO], ca*p) {
		l.take(CaO, ca*p)
	} else {
		ap = l.pool[CaO] / ca
		l.drain(CaO)
	}
	l.free.p2o5 = nonNeg(p - ap)
	l.drain(P2O5)

	if !minor {
		l.phase[HydroxyApatite] = ap
		return
	}
	f := l.pool[F]
	if atLeast(f, 2.0/3*ap) {
		l.phase[FluorApatite] = ap
		l.free.o12b = ap / 3
		l.take(F, 2.0/3*ap)
	} else {
		l.phase[FluorApatite] = 1.5 * f
		l.phase[HydroxyApatite] = nonNeg(ap - 1.5*f)
		l.free.o12c = f / 2
		l.drain(F)
	}
}

// Step 13.
func (l *ledger) fluorite() {
	f := l.pool[F]
	if atLeast(l.pool[CaO], f/2) {
		l.phase[Fluorite] = f / 2
		l.take(CaO, f/2)
	} else {
		l.phase[Fluorite] = l.pool[CaO]
		l.free.f = nonNeg(f - 2*l.phase[Fluorite])
		l.drain(CaO)
	}
	l.drain(F)
	l.free.o13 = l.phase[Fluorite]
}

// Step 14. One NaCl takes half a Na2O.
func (l *ledger) halite() {
	cl := l.pool[Cl]
	if atLeast(l.pool[Na2O], cl/2) {
		l.phase[Halite] = cl
		l.take(Na2O, cl/2)
	} else {
		l.phase[Halite] = 2 * l.pool[Na2O]
		l.free.cl = nonNeg(cl - l.phase[Halite])
		l.drain(Na2O)
	}
	l.drain(Cl)
	l.free.o14 = l.phase[Halite] / 2
}

// Step 15.
func (l *ledger) thenardite() {
	so3 := l.pool[SO3]
	if atLeast(l.pool[Na2O], so3) {
		l.phase[Thenardite] = so3
		l.take(Na2O, so3)
	} else {
		l.phase[Thenardite] = l.pool[Na2O]
		l.free.so3 = nonNeg(so3 - l.phase[Thenardite])
		l.drain(Na2O)
	}
	l.drain(SO3)
}

// Step 16. FeS2 takes one FeO per two S.
func (l *ledger) pyrite() {
	s := l.pool[S]
	if atLeast(l.pool[FeO], s/2) {
		l.phase[Pyrite] = s / 2
		l.take(FeO, s/2)
	} else {
		l.phase[Pyrite] = l.pool[FeO]
		l.free.s = nonNeg(s - 2*l.phase[Pyrite])
		l.drain(FeO)
	}
	l.drain(S)
	l.free.o16 = l.phase[Pyrite]
}

// Step 17. The cancrinite share of CO2 goes to sodium carbonate, the rest to
// calcite. Whatever the reservoirs cannot bind stays free.
func (l *ledger) carbonates(cancrinite, calcite float64) {
	co2 := l.pool[CO2]
	if co2 <= epsilon {
		l.drain(CO2)
		return
	}
	if cancrinite == 0 && calcite == 0 {
		l.free.co2 = co2
		l.drain(CO2)
		return
	}

	need := co2 * cancrinite
	if atLeast(l.pool[Na2O], need) {
		l.phase[SodiumCarbonate] = need
		l.take(Na2O, need)
	} else {
		l.phase[SodiumCarbonate] = l.pool[Na2O]
		l.free.co2 += need - l.pool[Na2O]
		l.drain(Na2O)
	}

	rest := co2 - need
	if rest > epsilon {
		if l.pool[CaO] > rest {
			l.phase[Calcite] = rest
			l.take(CaO, rest)
		} else {
			l.phase[Calcite] = l.pool[CaO]
			l.free.co2 += rest - l.pool[CaO]
			l.drain(CaO)
		}
	}
	l.free.co2 = nonNeg(l.free.co2)
	l.drain(CO2)
}

// Step 18.
func (l *ledger) chromite() {
	cr := l.pool[Cr2O3]
	if cr <= 0 {
		return
	}
	if atLeast(l.pool[FeO], cr) {
		l.phase[Chromite] = cr
		l.take(FeO, cr)
	} else {
		l.phase[Chromite] = l.pool[FeO]
		l.free.cr2o3 = nonNeg(cr - l.pool[FeO])
		l.drain(FeO)
	}
	l.drain(Cr2O3)
}

// Step 19. TiO2 left over goes to sphene or rutile.
func (l *ledger) ilmenite() {
	ti := l.pool[TiO2]
	if atLeast(l.pool[FeO], ti) {
		l.phase[Ilmenite] = ti
		l.take(FeO, ti)
		l.drain(TiO2)
	} else {
		l.phase[Ilmenite] = l.pool[FeO]
		l.take(TiO2, l.pool[FeO])
		l.drain(FeO)
	}
}

// Step 20. K2O that Al2O3 cannot balance becomes potassium metasilicate.
func (l *ledger) orthoclase() {
	k := l.pool[K2O]
	if atLeast(l.pool[Al2O3], k) {
		l.prov.or = k
		l.take(Al2O3, k)
	} else {
		l.prov.or = l.pool[Al2O3]
		l.phase[PotassiumMetasilicate] = nonNeg(k - l.prov.or)
		l.drain(Al2O3)
	}
	l.drain(K2O)
	l.y += 6*l.prov.or + l.phase[PotassiumMetasilicate]
}

// Step 21. Na2O left over goes on to acmite.
func (l *ledger) albite() {
	na := l.pool[Na2O]
	if atLeast(l.pool[Al2O3], na) {
		l.prov.ab = na
		l.take(Al2O3, na)
		l.drain(Na2O)
	} else {
		l.prov.ab = l.pool[Al2O3]
		l.take(Na2O, l.prov.ab)
		l.drain(Al2O3)
	}
	l.y += 6 * l.prov.ab
}

// Step 22. Na2O that Fe2O3 cannot balance becomes sodium metasilicate.
func (l *ledger) acmite() {
	na := l.pool[Na2O]
	if atLeast(na, l.pool[Fe2O3]) {
		l.phase[Acmite] = l.pool[Fe2O3]
		l.phase[SodiumMetasilicate] = nonNeg(na - l.phase[Acmite])
		l.drain(Fe2O3)
	} else {
		l.phase[Acmite] = na
		l.take(Fe2O3, na)
	}
	l.drain(Na2O)
	l.y += 4*l.phase[Acmite] + l.phase[SodiumMetasilicate]
}

// Step 23. Al2O3 in excess of CaO is corundum.
func (l *ledger) anorthite() {
	ca := l.pool[CaO]
	if atLeast(l.pool[Al2O3], ca) {
		l.phase[Anorthite] = ca
		l.phase[Corundum] = nonNeg(l.pool[Al2O3] - ca)
		l.drain(CaO)
	} else {
		l.phase[Anorthite] = l.pool[Al2O3]
		l.take(CaO, l.phase[Anorthite])
	}
	l.drain(Al2O3)
	l.y += 2 * l.phase[Anorthite]
}

// Step 24. TiO2 in excess of CaO is rutile.
func (l *ledger) sphene() {
	ti := l.pool[TiO2]
	if atLeast(l.pool[CaO], ti) {
		l.prov.tn = ti
		l.take(CaO, ti)
	} else {
		l.prov.tn = l.pool[CaO]
		l.phase[Rutile] = nonNeg(ti - l.prov.tn)
		l.drain(CaO)
	}
	l.drain(TiO2)
	l.y += l.prov.tn
}

// Step 25. Fe2O3 in excess of FeO is hematite.
func (l *ledger) magnetite() {
	fe := l.pool[FeO]
	if atLeast(l.pool[Fe2O3], fe) {
		l.phase[Magnetite] = fe
		l.phase[Hematite] = nonNeg(l.pool[Fe2O3] - fe)
		l.drain(FeO)
	} else {
		l.phase[Magnetite] = l.pool[Fe2O3]
		l.take(FeO, l.phase[Magnetite])
	}
	l.drain(Fe2O3)
}

// Step 26. The Mg/Fe ratio fixed here is used to split every ferromagnesian
// phase at the end.
func (l *ledger) splitFeMg() {
	femg := l.pool[MgO] + l.pool[FeO]
	l.xMg = safeDiv(l.pool[MgO], femg)
	l.xFe = safeDiv(l.pool[FeO], femg)
}

// Step 27. CaO in excess of FeO+MgO is wollastonite, the opposite excess is
// hypersthene.
func (l *ledger) pyroxene() {
	femg := l.pool[MgO] + l.pool[FeO]
	ca := l.pool[CaO]
	if atLeast(ca, femg) {
		l.prov.di = femg
		l.prov.wo = nonNeg(ca - femg)
		l.y += 2*l.prov.di + l.prov.wo
	} else {
		l.prov.di = ca
		l.prov.hy = nonNeg(femg - ca)
		l.y += 2*l.prov.di + l.prov.hy
	}
	l.drain(CaO)
	l.drain(MgO)
	l.drain(FeO)
}

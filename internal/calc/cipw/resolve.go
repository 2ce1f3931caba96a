package cipw

import "strconv"

// step is a state of the silica-deficiency resolver. Decision states
// (28 to 35) either settle the deficiency or pass the remainder on. Commit
// states (36b to 36g) copy the untouched provisional phases into the ledger.
type step int

const (
	stepQuartz       step = 28 + iota // 28
	stepOlivine                       // 29
	stepPerovskite                    // 30
	stepNepheline                     // 31
	stepLeucite                       // 32
	stepDicalcium                     // 33
	stepDiopside                      // 34
	stepKaliophilite                  // 35
	commitSphene
	commitAlbite
	commitOrthoclase
	commitWollastonite
	commitDiopside
	commitSplit
)

func (s step) String() string {
	switch {
	case s >= stepQuartz && s <= stepKaliophilite:
		return strconv.Itoa(int(s))
	case s >= commitSphene && s <= commitSplit:
		return "36" + string(rune('b'+s-commitSphene))
	}
	return "step(" + strconv.Itoa(int(s)) + ")"
}

func (s step) commit() bool { return s >= commitSphene && s <= commitSplit }

// resolve walks the deficiency chain from step 28 and returns the commit
// state it ended in. Every decision state either clears the deficiency or
// strictly reduces it, so the walk ends after at most eight decisions.
func (l *ledger) resolve() step {
	silica := l.pool[SiO2]
	l.drain(SiO2)
	s := stepQuartz
	for !s.commit() {
		l.steps = append(l.steps, s)
		s = l.decide(s, silica)
	}
	l.commit(s)
	return s
}

func (l *ledger) decide(s step, silica float64) step {
	p := &l.prov
	switch s {
	case stepQuartz:
		if atLeast(silica, l.y) {
			l.phase[Quartz] = nonNeg(silica - l.y)
			l.hy = p.hy
			return commitSphene
		}
		l.d = l.y - silica
		return stepOlivine

	case stepOlivine:
		if l.d < p.hy/2 {
			l.ol = l.d
			l.hy = nonNeg(p.hy - 2*l.d)
			return commitSphene
		}
		l.ol = p.hy / 2
		l.hy = 0
		return l.reduce(p.hy/2, stepPerovskite)

	case stepPerovskite:
		if l.d < p.tn {
			l.phase[Perovskite] = l.d
			l.phase[Sphene] = nonNeg(p.tn - l.d)
			return commitAlbite
		}
		l.phase[Perovskite] = p.tn
		return l.reduce(p.tn, stepNepheline)

	case stepNepheline:
		if l.d < 4*p.ab {
			l.phase[Nepheline] = l.d / 4
			l.phase[Albite] = nonNeg(p.ab - l.d/4)
			return commitOrthoclase
		}
		l.phase[Nepheline] = p.ab
		return l.reduce(4*p.ab, stepLeucite)

	case stepLeucite:
		if l.d < 2*p.or {
			l.phase[Leucite] = l.d / 2
			l.phase[Orthoclase] = nonNeg(p.or - l.d/2)
			return commitWollastonite
		}
		p.lc = p.or
		l.phase[Leucite] = p.lc
		return l.reduce(2*p.or, stepDicalcium)

	case stepDicalcium:
		if l.d < p.wo/2 {
			l.phase[DicalciumSilicate] = l.d
			l.phase[Wollastonite] = nonNeg(p.wo - 2*l.d)
			return commitDiopside
		}
		l.phase[DicalciumSilicate] = p.wo / 2
		return l.reduce(p.wo/2, stepDiopside)

	case stepDiopside:
		if l.d < p.di {
			l.phase[DicalciumSilicate] += l.d / 2
			l.ol += l.d / 2
			l.di = nonNeg(p.di - l.d)
			return commitSplit
		}
		l.phase[DicalciumSilicate] += p.di / 2
		l.ol += p.di / 2
		l.di = 0
		return l.reduce(p.di, stepKaliophilite)

	case stepKaliophilite:
		if atLeast(p.lc, l.d/2) {
			l.phase[Kaliophilite] = l.d / 2
			l.phase[Leucite] = nonNeg(p.lc - l.d/2)
		} else {
			l.phase[Kaliophilite] = p.lc
			l.phase[Leucite] = 0
			l.defSiO2 = nonNeg(l.d - 2*p.lc)
			l.warn(WarnSilicaDeficit, "%.6g mol SiO2 could not be recovered by any desilication step", l.defSiO2)
		}
		l.d = 0
		return commitSplit
	}
	return commitSplit
}

// reduce lowers the deficiency by the silica a fully desilicated phase
// released. A residue within epsilon counts as cleared.
func (l *ledger) reduce(released float64, next step) step {
	l.d -= released
	if l.d <= epsilon {
		l.d = 0
		return l.settled(next)
	}
	return next
}

// settled maps a decision state to the commit state reached when the
// deficiency is cleared just before it.
func (l *ledger) settled(next step) step {
	switch next {
	case stepPerovskite:
		return commitSphene
	case stepNepheline:
		return commitAlbite
	case stepLeucite:
		return commitOrthoclase
	case stepDicalcium:
		return commitWollastonite
	case stepDiopside:
		return commitDiopside
	}
	return commitSplit
}

// commit enters the cascade at s and falls through to the Fe/Mg split.
func (l *ledger) commit(s step) {
	p := &l.prov
	switch s {
	case commitSphene:
		l.steps = append(l.steps, commitSphene)
		l.phase[Sphene] = p.tn
		fallthrough
	case commitAlbite:
		l.steps = append(l.steps, commitAlbite)
		l.phase[Albite] = p.ab
		fallthrough
	case commitOrthoclase:
		l.steps = append(l.steps, commitOrthoclase)
		l.phase[Orthoclase] = p.or
		l.phase[Leucite] = p.lc
		fallthrough
	case commitWollastonite:
		l.steps = append(l.steps, commitWollastonite)
		l.phase[Wollastonite] = p.wo
		fallthrough
	case commitDiopside:
		l.steps = append(l.steps, commitDiopside)
		l.di = p.di
		fallthrough
	case commitSplit:
		l.steps = append(l.steps, commitSplit)
		l.phase[HyperstheneMg] = l.hy * l.xMg
		l.phase[HyperstheneFe] = l.hy * l.xFe
		l.phase[DiopsideMg] = l.di * l.xMg
		l.phase[DiopsideFe] = l.di * l.xFe
		l.phase[OlivineMg] = l.ol * l.xMg
		l.phase[OlivineFe] = l.ol * l.xFe
	}
}

package cipw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepString(t *testing.T) {
	assert.Equal(t, "28", stepQuartz.String())
	assert.Equal(t, "35", stepKaliophilite.String())
	assert.Equal(t, "36b", commitSphene.String())
	assert.Equal(t, "36g", commitSplit.String())
	assert.Equal(t, "step(99)", step(99).String())
}

func newLedger(silica, y float64, p provisional) *ledger {
	l := &ledger{y: y, prov: p, xMg: 0.75, xFe: 0.25}
	l.pool[SiO2] = silica
	return l
}

func TestResolveEntryPoints(t *testing.T) {
	p := provisional{or: 1, ab: 1, tn: 1, wo: 1, di: 1, hy: 2}
	cases := []struct {
		name     string
		deficit  float64
		terminal step
		steps    []string
	}{
		{"saturated", -1, commitSphene, []string{"28", "36b", "36c", "36d", "36e", "36f", "36g"}},
		{"olivine", 0.5, commitSphene, []string{"28", "29", "36b", "36c", "36d", "36e", "36f", "36g"}},
		{"perovskite", 1.5, commitAlbite, []string{"28", "29", "30", "36c", "36d", "36e", "36f", "36g"}},
		{"nepheline", 3, commitOrthoclase, []string{"28", "29", "30", "31", "36d", "36e", "36f", "36g"}},
		{"leucite", 6.5, commitWollastonite, []string{"28", "29", "30", "31", "32", "36e", "36f", "36g"}},
		{"dicalcium", 8.2, commitDiopside, []string{"28", "29", "30", "31", "32", "33", "36f", "36g"}},
		{"diopside", 8.75, commitSplit, []string{"28", "29", "30", "31", "32", "33", "34", "36g"}},
		{"kaliophilite", 9.75, commitSplit, []string{"28", "29", "30", "31", "32", "33", "34", "35", "36g"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			const y = 20.0
			l := newLedger(y-tc.deficit, y, p)
			got := l.resolve()
			assert.Equal(t, tc.terminal, got)
			labels := make([]string, len(l.steps))
			for i, s := range l.steps {
				labels[i] = s.String()
			}
			assert.Equal(t, tc.steps, labels)
			assert.Zero(t, l.pool[SiO2])
		})
	}
}

// Every downgrade releases exactly the silica the deficiency asked for.
func TestResolveReleasesDeficit(t *testing.T) {
	p := provisional{or: 1, ab: 1, tn: 1, wo: 1, di: 1, hy: 2}
	for _, d := range []float64{0.3, 1.2, 2.7, 5.9, 7.4, 8.6, 9.1, 9.75} {
		l := newLedger(20-d, 20, p)
		l.resolve()
		assert.InDelta(t, d, silicaFreed(l, p), 1e-9, "deficit %g", d)
		assert.Zero(t, l.defSiO2)
	}
}

// silicaFreed compares the silica held by the final phases with the demand
// of the provisional ones.
func silicaFreed(l *ledger, p provisional) float64 {
	demand := 6*p.or + 6*p.ab + p.tn + p.wo + 2*p.di + p.hy
	held := 6*l.phase[Orthoclase] + 4*l.phase[Leucite] + 2*l.phase[Kaliophilite] +
		6*l.phase[Albite] + 2*l.phase[Nepheline] +
		l.phase[Sphene] +
		l.phase[Wollastonite] + l.phase[DicalciumSilicate] +
		2*l.di + l.hy + l.ol
	return demand - held
}

func TestResolveKaliophiliteShortfall(t *testing.T) {
	p := provisional{or: 1, ab: 1, tn: 1, wo: 1, di: 1, hy: 2}
	l := newLedger(5, 20, p)
	assert.Equal(t, commitSplit, l.resolve())

	assert.Equal(t, 1.0, l.phase[Kaliophilite])
	assert.Zero(t, l.phase[Leucite])
	assert.InDelta(t, 3.5, l.defSiO2, 1e-12)
	if assert.Len(t, l.warnings, 1) {
		assert.Equal(t, WarnSilicaDeficit, l.warnings[0].Kind)
	}
}

func TestCommitSplitsFeMg(t *testing.T) {
	p := provisional{di: 2, hy: 4}
	l := newLedger(100, 10, p)
	l.resolve()

	assert.InDelta(t, 90, l.phase[Quartz], 1e-12)
	assert.InDelta(t, 3, l.phase[HyperstheneMg], 1e-12)
	assert.InDelta(t, 1, l.phase[HyperstheneFe], 1e-12)
	assert.InDelta(t, 1.5, l.phase[DiopsideMg], 1e-12)
	assert.InDelta(t, 0.5, l.phase[DiopsideFe], 1e-12)
	assert.Zero(t, l.phase[OlivineMg]+l.phase[OlivineFe])
}

func TestResolveExactHypersthene(t *testing.T) {
	// A deficiency of exactly Hyp/2 turns all hypersthene into olivine and
	// stops there.
	p := provisional{hy: 2, tn: 1}
	l := newLedger(9, 10, p)
	assert.Equal(t, commitSphene, l.resolve())
	assert.Equal(t, 1.0, l.ol)
	assert.Zero(t, l.hy)
	assert.Equal(t, 1.0, l.phase[Sphene])
	assert.Zero(t, l.phase[Perovskite])
}

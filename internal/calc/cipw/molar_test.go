package cipw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Petronorm/internal/chem"
)

func testConstants(t *testing.T) constants {
	t.Helper()
	c, err := newConstants(chem.NewReference())
	require.NoError(t, err)
	return c
}

func TestConsolidationIdempotentWithoutGuests(t *testing.T) {
	c := testConstants(t)
	var wt [numComponents]float64
	wt[SiO2], wt[FeO], wt[MnO], wt[CaO], wt[K2O], wt[Na2O] = 50, 8, 0.2, 10, 1.5, 3

	off := c.toMolar(&wt, false)
	on := c.toMolar(&wt, true)
	assert.Equal(t, off.pool, on.pool)
	assert.Equal(t, off.weights, on.weights)
}

func TestConsolidationWeightedMean(t *testing.T) {
	c := testConstants(t)
	var wt [numComponents]float64
	wt[FeO] = c.mass[FeO] // one mole
	wt[MnO] = c.mass[MnO] // one mole
	wt[CaO] = c.mass[CaO]
	wt[SrO] = 3 * c.mass[SrO]

	m := c.toMolar(&wt, true)
	assert.InDelta(t, 2, m.pool[FeO], 1e-12)
	assert.Zero(t, m.pool[MnO])
	assert.InDelta(t, (c.mass[FeO]+c.mass[MnO])/2, m.weights[FeO], 1e-9)
	assert.InDelta(t, 4, m.pool[CaO], 1e-12)
	assert.InDelta(t, (c.mass[CaO]+3*c.mass[SrO])/4, m.weights[CaO], 1e-9)

	// Mass is preserved by the merge.
	assert.InDelta(t, wt[CaO]+wt[SrO], m.pool[CaO]*m.weights[CaO], 1e-9)
}

func TestEmptyHostGroupHasZeroWeight(t *testing.T) {
	c := testConstants(t)
	var wt [numComponents]float64
	wt[SiO2] = 50

	m := c.toMolar(&wt, true)
	assert.Zero(t, m.weights[K2O])
	assert.Zero(t, m.weights[Cr2O3])
	assert.Equal(t, c.mass[SiO2], m.weights[SiO2])
}

func TestAnionsUseElementMasses(t *testing.T) {
	c := testConstants(t)
	assert.InDelta(t, 18.9984032, c.mass[F], 1e-9)
	assert.InDelta(t, 35.4527, c.mass[Cl], 1e-9)
	assert.InDelta(t, 32.065, c.mass[S], 1e-9)
	assert.InDelta(t, 15.9994, c.oxygen, 1e-9)
}

func TestMineralWeights(t *testing.T) {
	c := testConstants(t)
	mw := c.mineralWeights(&c.mass)
	assert.InDelta(t, 556.6631, mw[Orthoclase], 1e-3)
	assert.InDelta(t, 524.4460, mw[Albite], 1e-3)
	assert.InDelta(t, 278.2073, mw[Anorthite], 1e-3)
	assert.InDelta(t, 58.4425, mw[Halite], 1e-3)
	assert.InDelta(t, 328.8692, mw[HydroxyApatite], 1e-3)
}

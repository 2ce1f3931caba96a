package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormula(t *testing.T) {
	tests := []struct {
		oxide   string
		cation  string
		cations int
		oxygens int
	}{
		{"SiO2", "Si", 1, 2},
		{"Al2O3", "Al", 2, 3},
		{"FeO", "Fe", 1, 1},
		{"FeOt", "Fe", 1, 1},
		{"P2O5", "P", 2, 5},
		{"K2O", "K", 2, 1},
		{"CO2", "C", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.oxide, func(t *testing.T) {
			f, err := ParseFormula(tt.oxide)
			require.NoError(t, err)
			assert.Equal(t, tt.cation, f.Cation)
			assert.Equal(t, tt.cations, f.Cations)
			assert.Equal(t, tt.oxygens, f.Oxygens)
		})
	}
}

func TestParseFormulaRejectsNonOxides(t *testing.T) {
	for _, s := range []string{"", "Total", "Ni", "sio2"} {
		_, err := ParseFormula(s)
		assert.ErrorIs(t, err, ErrBadFormula, s)
	}
}

func TestReferenceLookups(t *testing.T) {
	ref := NewReference()

	m, ok := ref.MolarMass("SiO2")
	require.True(t, ok)
	assert.Equal(t, 60.0843, m)

	m, ok = ref.MolarMass("F")
	require.True(t, ok)
	assert.Equal(t, 18.9984032, m)

	_, ok = ref.MolarMass("Unobtainium")
	assert.False(t, ok)

	ox, ok := ref.DefaultOxide("Zr")
	require.True(t, ok)
	assert.Equal(t, "ZrO2", ox)
}

func TestReferenceInstancesAreIndependent(t *testing.T) {
	a := NewReference()
	b := NewReference()
	require.NoError(t, a.SetOxideMass("SiO2", 60))

	ma, _ := a.OxideMass("SiO2")
	mb, _ := b.OxideMass("SiO2")
	assert.Equal(t, 60.0, ma)
	assert.Equal(t, 60.0843, mb)
	assert.Error(t, a.SetOxideMass("SiO2", 0))
}

func TestPPMConversionsRoundTrip(t *testing.T) {
	ref := NewReference()
	ppm, err := ref.OxideToElementPPM(0.5, "NiO")
	require.NoError(t, err)
	back, err := ref.ElementPPMToOxide(ppm, "NiO")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, back, 1e-12)

	_, err = ref.ElementPPMToOxide(10, "XyO")
	assert.ErrorIs(t, err, ErrUnknownOxide)
}

func TestMilliCations(t *testing.T) {
	ref := NewReference()
	mc, err := ref.MilliCations(101.961276, "Al2O3")
	require.NoError(t, err)
	assert.InDelta(t, 2000, mc, 1e-9)
}

func TestOxidesSorted(t *testing.T) {
	ox := NewReference().Oxides()
	require.NotEmpty(t, ox)
	assert.IsNonDecreasing(t, ox)
}

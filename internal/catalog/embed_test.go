package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSnapshot(t *testing.T) {
	snap, err := DefaultSnapshot()
	require.NoError(t, err)
	require.NotNil(t, snap)

	// Same shared snapshot on every call.
	again, err := DefaultSnapshot()
	require.NoError(t, err)
	assert.Same(t, snap, again)

	assert.Greater(t, snap.MaterialCount(), 0)
	assert.Len(t, snap.Version(), 64)
}

func TestDefaultSnapshot_CoreRecords(t *testing.T) {
	snap, err := DefaultSnapshot()
	require.NoError(t, err)

	m, ok := snap.MaterialByID("al-6061")
	require.True(t, ok)
	assert.Equal(t, "aluminum", m.Category)
	assert.InDelta(t, 2.7, m.DensityGPerCC, 1e-9)
	assert.True(t, m.SupportsProcess("cnc_milling"))
	assert.True(t, m.SupportsFinish("anodize-clear"))

	_, ok = snap.FinishByCode("bead-blast")
	assert.True(t, ok)

	cf, err := snap.FactorsFor("cnc_milling", "haas-vf2")
	require.NoError(t, err)
	assert.Greater(t, cf.MachineRatePerHour, 0.0)
	assert.Greater(t, cf.SetupCost, 0.0)
	assert.NotEmpty(t, cf.QuantityBreaks)
}

// Every compatible finish listed on an embedded material must resolve to an
// embedded finish record, otherwise compare requests over default data would
// fail on a dangling code.
func TestDefaultSnapshot_FinishReferencesResolve(t *testing.T) {
	snap, err := DefaultSnapshot()
	require.NoError(t, err)

	for _, id := range []string{"al-6061", "al-7075", "ss-304", "ss-316", "steel-1018", "brass-c360"} {
		m, ok := snap.MaterialByID(id)
		require.True(t, ok, "material %s", id)
		for _, code := range m.CompatibleFinishes {
			_, ok := snap.FinishByCode(code)
			assert.True(t, ok, "material %s references unknown finish %s", id, code)
		}
	}
}

func TestParseSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed json", data: `{"materials": [`},
		{name: "wrong top-level type", data: `[]`},
		{name: "no materials", data: `{"materials": [], "finishes": [], "cost_factors": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

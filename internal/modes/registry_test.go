package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/internal/core"
)

func TestGet(t *testing.T) {
	for _, name := range core.ModeNames {
		e, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, e.Mode())
	}

	_, err := Get("party")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestAll_Order(t *testing.T) {
	var got []core.ModeName
	for _, e := range All() {
		got = append(got, e.Mode())
	}
	assert.Equal(t, []core.ModeName{core.Lockdown, core.Vacay, core.Survival, core.Stability, core.Saver}, got)
}

func TestTips(t *testing.T) {
	tips := Tips("Lockdown Mode")
	require.Len(t, tips, 5)
	assert.Equal(t, "Cut non-essential expenses immediately", tips[0])

	assert.Len(t, Tips("vacay_mode"), 5)

	unknown := Tips("party mode")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)

	// callers get their own copy
	tips[0] = "changed"
	assert.Equal(t, "Cut non-essential expenses immediately", Tips("lockdown")[0])
}

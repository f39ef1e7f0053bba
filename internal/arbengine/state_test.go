package arbengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapState_ReadThenCommit(t *testing.T) {
	st := NewSwapState(1000)

	assert.Equal(t, uint64(1000), st.Read())
	require.NoError(t, st.Commit(900))

	// Overwritten, not accumulated.
	assert.Equal(t, uint64(900), st.Amount())
	assert.Equal(t, uint64(900), st.Read())
	require.NoError(t, st.Commit(1100))
	assert.Equal(t, uint64(1100), st.Amount())
}

func TestSwapState_CommitWithoutRead(t *testing.T) {
	st := NewSwapState(1000)
	assert.ErrorIs(t, st.Commit(5), ErrStateMisuse)

	// A second commit without an intervening read is also misuse.
	st.Read()
	require.NoError(t, st.Commit(5))
	assert.ErrorIs(t, st.Commit(6), ErrStateMisuse)
}

func TestSwapState_AmountDoesNotConsume(t *testing.T) {
	st := NewSwapState(7)
	assert.Equal(t, uint64(7), st.Amount())
	assert.ErrorIs(t, st.Commit(8), ErrStateMisuse)
}

package procfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	entries := []Entry{
		{PID: 4, Exe: "System"},
		{PID: 812, Exe: "explorer.exe"},
		{PID: 9001, Exe: "FactoryGame-Win64-Shipping.exe"},
		{PID: 9002, Exe: "FactoryGame-Win64-Shipping.exe"},
	}

	e, err := Match(entries, "factorygame-win64-shipping.exe")
	require.NoError(t, err)
	assert.Equal(t, uint32(9001), e.PID)

	_, err = Match(entries, "missing.exe")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Match(nil, "explorer.exe")
	assert.ErrorIs(t, err, ErrNotFound)
}

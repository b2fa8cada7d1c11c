package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceCache_GetUnknownSymbol(t *testing.T) {
	c := NewPriceCache()

	_, ok := c.Get("AAPL")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestPriceCache_LastWriteWins(t *testing.T) {
	c := NewPriceCache()

	// Arrival order decides, not price ordering.
	c.Set("AAPL", 191.23)
	c.Set("AAPL", 195.00)
	c.Set("AAPL", 190.10)

	entry, ok := c.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 190.10, entry.Price)
	assert.Equal(t, "AAPL", entry.Symbol)
	assert.False(t, entry.UpdatedAt.IsZero())
	assert.Equal(t, 1, c.Len())
}

func TestPriceCache_SymbolsAreIndependent(t *testing.T) {
	c := NewPriceCache()

	c.Set("AAPL", 191.23)
	c.Set("MSFT", 402.10)

	aapl, ok := c.Get("AAPL")
	require.True(t, ok)
	msft, ok := c.Get("MSFT")
	require.True(t, ok)

	assert.Equal(t, 191.23, aapl.Price)
	assert.Equal(t, 402.10, msft.Price)
}

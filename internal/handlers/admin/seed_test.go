package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetClearsAllStoreData(t *testing.T) {
	// le reset forcé efface aussi les comptes, pas seulement le catalogue
	assert.Contains(t, resetCollections, "users")
	assert.Contains(t, resetCollections, "products")
	assert.Contains(t, resetCollections, "orders")
	assert.Contains(t, resetCollections, "carts")
}

func TestSampleProductsCatalog(t *testing.T) {
	products := sampleProducts()
	require.Len(t, products, 8)

	seen := map[string]bool{}
	for _, p := range products {
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.Price, 0.0)
		assert.GreaterOrEqual(t, p.Stock, 0)
		assert.NotEmpty(t, p.Category)
		assert.False(t, seen[p.Name], "nom dupliqué: %s", p.Name)
		seen[p.Name] = true
	}
}

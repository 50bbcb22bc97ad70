package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcludeSpikes(t *testing.T) {
	t.Run("single spike removed", func(t *testing.T) {
		monthly := []float64{500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 9000}

		kept, excluded := excludeSpikes(monthly, 2.0)

		assert.Equal(t, 1, excluded)
		assert.Len(t, kept, 11)
		assert.NotContains(t, kept, 9000.0)
	})

	t.Run("flat series untouched", func(t *testing.T) {
		monthly := []float64{500, 500, 500, 500}

		kept, excluded := excludeSpikes(monthly, 2.0)

		assert.Equal(t, 0, excluded)
		assert.Equal(t, monthly, kept)
	})

	t.Run("short series passes through", func(t *testing.T) {
		monthly := []float64{500, 9000}

		kept, excluded := excludeSpikes(monthly, 2.0)

		assert.Equal(t, 0, excluded)
		assert.Equal(t, monthly, kept)
	})

	t.Run("normal variation kept", func(t *testing.T) {
		monthly := []float64{480, 510, 495, 505, 490, 520, 500, 515, 485, 505, 498, 502}

		kept, excluded := excludeSpikes(monthly, 2.0)

		assert.Equal(t, 0, excluded)
		assert.Len(t, kept, 12)
	})
}

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

func TestSimulatedDetectorDrawsFromCatalog(t *testing.T) {
	t.Parallel()

	c := catalog.Default()
	d := NewSimulatedDetector(c, NewSequence(1, 0, 5))

	assert.Equal(t, "Powdery Mildew", d.Preview().Name)
	assert.Equal(t, "Healthy", d.Detect().Name)
	assert.Equal(t, "Septoria Leaf Spot", d.Detect().Name)
	// Sequence repeats its last index once exhausted.
	assert.Equal(t, "Septoria Leaf Spot", d.Preview().Name)
}

func TestSimulatedDetectorClampsOutOfRangeSource(t *testing.T) {
	t.Parallel()

	c := catalog.Default()
	d := NewSimulatedDetector(c, RandFunc(func(int) int { return -1 }))
	assert.Equal(t, c.At(c.Len()-1).Name, d.Detect().Name)

	d = NewSimulatedDetector(c, RandFunc(func(n int) int { return n + 2 }))
	assert.Equal(t, c.At(2).Name, d.Detect().Name)
}

func TestSeededRandIsReproducible(t *testing.T) {
	t.Parallel()

	a, b := NewSeededRand(42), NewSeededRand(42)
	for range 20 {
		x, y := a.IntN(6), b.IntN(6)
		assert.Equal(t, x, y)
		assert.GreaterOrEqual(t, x, 0)
		assert.Less(t, x, 6)
	}
}

func TestDefaultRandCoversWholeCatalog(t *testing.T) {
	t.Parallel()

	d := NewSimulatedDetector(catalog.Default(), nil)
	seen := map[string]bool{}
	for range 2000 {
		seen[d.Detect().Name] = true
	}
	assert.Len(t, seen, 6)
}

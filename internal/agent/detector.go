package agent

import (
	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

// Detector is the "AI" behind the analysis workflow.
// No image content is inspected: both draws are independent picks from the catalog.
type Detector interface {
	// Preview is the cosmetic guess shown right after an image is selected.
	Preview() catalog.DiagnosisRecord
	// Detect is the authoritative result at the end of an analysis run.
	Detect() catalog.DiagnosisRecord
}

type simulatedDetector struct {
	catalog *catalog.Catalog
	rand    RandSource
}

// NewSimulatedDetector draws records uniformly at random from c.
// A nil src falls back to DefaultRand.
func NewSimulatedDetector(c *catalog.Catalog, src RandSource) Detector {
	if src == nil {
		src = DefaultRand()
	}
	return &simulatedDetector{catalog: c, rand: src}
}

func (d *simulatedDetector) Preview() catalog.DiagnosisRecord {
	return d.draw()
}

func (d *simulatedDetector) Detect() catalog.DiagnosisRecord {
	return d.draw()
}

func (d *simulatedDetector) draw() catalog.DiagnosisRecord {
	n := d.catalog.Len()
	i := d.rand.IntN(n)
	// Sources are injectable; keep a misbehaving one inside the table.
	if i < 0 || i >= n {
		i = ((i % n) + n) % n
	}
	return d.catalog.At(i)
}

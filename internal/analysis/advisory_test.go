package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

func TestComposeAdvisoryHealthy(t *testing.T) {
	t.Parallel()

	healthy, ok := catalog.Default().Lookup(catalog.HealthyName)
	require.True(t, ok)

	text, err := composeAdvisory(healthy)
	require.NoError(t, err)

	want := "Possible condition: Healthy (98% typical confidence)\n\n" +
		"Overview: " + genericOverview + "\n\n" +
		"How to avoid this: " + strings.Join(healthyPrevention, "; ") + ".\n\n" +
		"Recovery tips: " + strings.Join(healthy.Treatments, "; ") + "."
	assert.Equal(t, want, text)
}

func TestComposeAdvisoryKeepsCatalogTextVerbatim(t *testing.T) {
	t.Parallel()

	text, err := composeAdvisory(catalog.DiagnosisRecord{
		Name:       "Rot <fast> & \"wet\"",
		Confidence: 70,
		Treatments: []string{"Cut < 5cm", "Dry"},
		Status:     catalog.StatusDiseased,
	})
	require.NoError(t, err)

	assert.Contains(t, text, `Possible condition: Rot <fast> & "wet" (70% typical confidence)`)
	assert.Contains(t, text, "Overview: "+genericOverview)
	assert.Contains(t, text, "How to avoid this: "+strings.Join(diseasedPrevention, "; ")+".")
	assert.Contains(t, text, "Recovery tips: Cut < 5cm; Dry.")
}

func TestOverview(t *testing.T) {
	t.Parallel()

	for _, r := range catalog.Default().Records() {
		if r.IsHealthy() {
			assert.Equal(t, genericOverview, Overview(r.Name))
			continue
		}
		assert.NotEqual(t, genericOverview, Overview(r.Name), r.Name)
	}
	assert.Equal(t, genericOverview, Overview("Unknown Blight"))
}

func TestPreventionTips(t *testing.T) {
	t.Parallel()

	assert.Equal(t, healthyPrevention, PreventionTips(catalog.StatusHealthy))
	assert.Equal(t, diseasedPrevention, PreventionTips(catalog.StatusDiseased))
}

func TestDetectionSummary(t *testing.T) {
	t.Parallel()

	r := catalog.Default().At(5)
	assert.Equal(t, "💡 Detection Result: Septoria Leaf Spot (87% confidence)", detectionSummary(r))
}

func TestDefaultScript(t *testing.T) {
	t.Parallel()

	require.Len(t, DefaultScript, 6)
	assert.Equal(t, 5800*time.Millisecond, scriptDuration(DefaultScript, DefaultSettleDelay))
	for i := range DefaultScript {
		want := KindAdvisory
		if i == len(DefaultScript)-1 {
			want = KindStatus
		}
		assert.Equal(t, want, kindForStep(i, len(DefaultScript)))
	}
}

package analysis

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

// advisoryTemplate renders the message posted as soon as an image is selected.
// Triple braces keep catalog text unescaped; the result is plain text.
const advisoryTemplate = `Possible condition: {{{name}}} ({{confidence}}% typical confidence)

Overview: {{{overview}}}

How to avoid this: {{{prevention}}}.

Recovery tips: {{{recovery}}}.`

const maxRecoveryTips = 3

const genericOverview = "The leaf appears generally healthy. Continue preventive care to keep it that way."

var overviews = map[string]string{
	"Powdery Mildew":     "A fungal disease that appears as white powdery spots on leaves and stems, often in warm, dry conditions with poor air circulation.",
	"Leaf Rust":          "Rust diseases produce orange or brown pustules on the undersides of leaves and can weaken plants by reducing photosynthesis.",
	"Bacterial Spot":     "Bacterial spots cause dark, water-soaked lesions on leaves and fruit and spread more readily in wet conditions.",
	"Early Blight":       "A fungal disease that causes concentric rings on leaves and fruit, commonly affecting tomatoes and related plants.",
	"Septoria Leaf Spot": "Small round spots with dark borders on leaves, typically starting on lower foliage and spreading upward in humid conditions.",
}

var (
	healthyPrevention = []string{
		"Maintain consistent watering and balanced fertilization",
		"Ensure good air circulation and avoid overhead watering",
		"Inspect plants regularly and remove debris from soil surface",
	}
	diseasedPrevention = []string{
		"Remove and dispose of infected leaves to reduce inoculum",
		"Avoid overhead watering and water early in the day",
		"Improve spacing for better air circulation and reduce humidity",
	}
)

// Overview returns the one-sentence description of a condition.
func Overview(name string) string {
	if o, ok := overviews[name]; ok {
		return o
	}
	return genericOverview
}

// PreventionTips depends only on whether the plant is healthy, not on the disease.
func PreventionTips(status catalog.HealthStatus) []string {
	if status == catalog.StatusHealthy {
		return healthyPrevention
	}
	return diseasedPrevention
}

// composeAdvisory builds the four-part preview message for a drawn record.
func composeAdvisory(r catalog.DiagnosisRecord) (string, error) {
	recovery := r.Treatments[:min(len(r.Treatments), maxRecoveryTips)]
	text, err := mustache.Render(advisoryTemplate, map[string]interface{}{
		"name":       r.Name,
		"confidence": r.Confidence,
		"overview":   Overview(r.Name),
		"prevention": strings.Join(PreventionTips(r.Status), "; "),
		"recovery":   strings.Join(recovery, "; "),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render advisory: %w", err)
	}
	return text, nil
}

// detectionSummary is the closing status line of an analysis run.
func detectionSummary(r catalog.DiagnosisRecord) string {
	return fmt.Sprintf("💡 Detection Result: %s (%d%% confidence)", r.Name, r.Confidence)
}

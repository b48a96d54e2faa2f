package catalog

import "slices"

// HealthStatus is the coarse outcome of a diagnosis.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDiseased HealthStatus = "diseased"
)

// HealthyName is the sentinel record name meaning no disease was found.
const HealthyName = "Healthy"

// DiagnosisRecord is one canned diagnosis: a condition, its fixed confidence
// and the treatment steps shown to the user in order.
type DiagnosisRecord struct {
	Name       string       `json:"name" yaml:"name"`
	Confidence int          `json:"confidence" yaml:"confidence"` // percent, 0..100
	Treatments []string     `json:"treatments" yaml:"treatments"`
	Status     HealthStatus `json:"status" yaml:"status"`
}

func (r DiagnosisRecord) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// Severity is the label shown next to the result card.
func (r DiagnosisRecord) Severity() string {
	if r.IsHealthy() {
		return "Low"
	}
	return "Medium"
}

// TreatmentDays is the expected treatment window shown on the result card.
func (r DiagnosisRecord) TreatmentDays() string {
	if r.IsHealthy() {
		return "0"
	}
	return "3-7"
}

// Clone returns a copy that shares no memory with r.
func (r DiagnosisRecord) Clone() DiagnosisRecord {
	r.Treatments = slices.Clone(r.Treatments)
	return r
}

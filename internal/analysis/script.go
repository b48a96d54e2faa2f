package analysis

import "time"

// Step is one timed status event of the analysis script.
type Step struct {
	Text  string
	Delay time.Duration
}

// DefaultScript is played, in order, on every analysis run.
var DefaultScript = []Step{
	{Text: "🖼️ Image received successfully!", Delay: 300 * time.Millisecond},
	{Text: "🔍 Initializing AI detection model...", Delay: 800 * time.Millisecond},
	{Text: "🧠 Analyzing leaf patterns and features...", Delay: 1200 * time.Millisecond},
	{Text: "📊 Processing color distribution...", Delay: 1000 * time.Millisecond},
	{Text: "🔬 Scanning for disease indicators...", Delay: 1100 * time.Millisecond},
	{Text: "✅ Analysis complete!", Delay: 900 * time.Millisecond},
}

// DefaultSettleDelay separates the last script event from the diagnosis.
const DefaultSettleDelay = 500 * time.Millisecond

// kindForStep styles every event like a bot message except the closing one.
func kindForStep(i, n int) MessageKind {
	if i == n-1 {
		return KindStatus
	}
	return KindAdvisory
}

// scriptDuration is the total time a run takes at pace 1.
func scriptDuration(script []Step, settle time.Duration) time.Duration {
	total := settle
	for _, s := range script {
		total += s.Delay
	}
	return total
}

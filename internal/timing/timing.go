// Package timing measures how long the engine spends on each replayed keystroke.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Sample is the engine time spent on one step
type Sample struct {
	Label    string
	Duration time.Duration
}

// Recorder collects samples in the order they were taken
type Recorder struct {
	now     func() time.Time
	samples []Sample
}

// NewRecorder creates a recorder using the wall clock
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Start begins a sample. The returned function ends it and returns the duration.
func (r *Recorder) Start(label string) func() time.Duration {
	start := r.now()
	return func() time.Duration {
		d := r.now().Sub(start)
		r.samples = append(r.samples, Sample{Label: label, Duration: d})
		return d
	}
}

// Samples returns a copy of the recorded samples
func (r *Recorder) Samples() []Sample {
	return append([]Sample(nil), r.samples...)
}

// Total returns the sum of all samples
func (r *Recorder) Total() time.Duration {
	var total time.Duration
	for _, s := range r.samples {
		total += s.Duration
	}
	return total
}

// Slowest returns the longest sample
func (r *Recorder) Slowest() (Sample, bool) {
	if len(r.samples) == 0 {
		return Sample{}, false
	}
	slowest := r.samples[0]
	for _, s := range r.samples[1:] {
		if s.Duration > slowest.Duration {
			slowest = s
		}
	}
	return slowest, true
}

// Summary returns a one-line overview of the recorded samples
func (r *Recorder) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Steps: %d, Total: %s", len(r.samples), ms(r.Total()))
	if slowest, ok := r.Slowest(); ok {
		fmt.Fprintf(&b, ", Slowest: %s (%s)", ms(slowest.Duration), slowest.Label)
	}
	return b.String()
}

// Reset drops all samples
func (r *Recorder) Reset() {
	r.samples = nil
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
}

package quality

import (
	"tomorecon/pkg/volume"
)

// Record holds the metric values of one iteration.
type Record struct {
	Iteration int
	Values    map[string]float64
}

// Tracker evaluates a fixed set of metrics once per iteration and appends
// the results to an in-memory trace. A tracker built with no metric names
// is a no-op and its trace stays empty.
type Tracker struct {
	metrics []Metric
	trace   []Record
}

// NewTracker resolves the requested metric names. An empty name list yields
// a disabled tracker; an unknown name fails with ErrUnknownMetric.
func NewTracker(names []string) (*Tracker, error) {
	t := &Tracker{}
	for _, name := range names {
		m, err := ParseMetric(name)
		if err != nil {
			return nil, err
		}
		t.metrics = append(t.metrics, m)
	}
	return t, nil
}

// Enabled reports whether any metrics were requested.
func (t *Tracker) Enabled() bool {
	return len(t.metrics) > 0
}

// Record computes all metrics for the given estimate pair and appends one
// record. prev is nil on the first iteration; metrics then report NaN.
// Disabled trackers ignore the call.
func (t *Tracker) Record(iteration int, prev, curr *volume.Volume) {
	if !t.Enabled() {
		return
	}
	values := make(map[string]float64, len(t.metrics))
	for _, m := range t.metrics {
		values[m.String()] = m.Compute(prev, curr)
	}
	t.trace = append(t.trace, Record{Iteration: iteration, Values: values})
}

// Trace returns the recorded history in iteration order.
func (t *Tracker) Trace() []Record {
	return t.trace
}

package tplib

import "fmt"

// warningCollector accumulates non-fatal diagnostics raised while matching
// a single trace, flattening to the plain string slice PathResult exposes.
// Unlike a long-lived aggregator counting occurrences across many runs,
// this one is scoped to a single Match call, so it keeps messages in the
// order they were raised rather than deduplicating by kind.
type warningCollector struct {
	messages []string
}

func (w *warningCollector) add(format string, args ...interface{}) {
	w.messages = append(w.messages, fmt.Sprintf(format, args...))
}

func (w *warningCollector) addAll(msgs []string) {
	w.messages = append(w.messages, msgs...)
}

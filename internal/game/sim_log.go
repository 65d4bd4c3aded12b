package game

import (
	"fmt"
	"io"
	"sort"
)

// SimEvent is one structured record in the simulation event log. Subject is
// usually an entity ID or player ID; Category groups events (death, combat,
// economy, production, strategy), Key/Value carry the detail.
type SimEvent struct {
	Tick     int
	Subject  int64
	Category string
	Key      string
	Value    string
	NumVal   float64
}

// SimLog collects structured events for the test harness and the headless
// reporter. It is not safe for concurrent use; only the tick pipeline
// writes it.
type SimLog struct {
	verbose bool
	events  []SimEvent
}

// NewSimLog creates an event log. Verbose echoes every event to stdout,
// which is useful when bisecting a failing scenario.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a string-valued event.
func (l *SimLog) Add(tick int, subject int64, category, key, value string) {
	l.push(SimEvent{Tick: tick, Subject: subject, Category: category, Key: key, Value: value})
}

// AddNum records a numeric-valued event.
func (l *SimLog) AddNum(tick int, subject int64, category, key string, num float64) {
	l.push(SimEvent{Tick: tick, Subject: subject, Category: category, Key: key, NumVal: num})
}

func (l *SimLog) push(e SimEvent) {
	l.events = append(l.events, e)
	if l.verbose {
		fmt.Printf("[t%05d] %s/%s subj=%d val=%q num=%.2f\n",
			e.Tick, e.Category, e.Key, e.Subject, e.Value, e.NumVal)
	}
}

// Events returns the full log in insertion order.
func (l *SimLog) Events() []SimEvent { return l.events }

// Filter returns all events in a category.
func (l *SimLog) Filter(category string) []SimEvent {
	var out []SimEvent
	for _, e := range l.events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// FilterKey returns all events matching category and key.
func (l *SimLog) FilterKey(category, key string) []SimEvent {
	var out []SimEvent
	for _, e := range l.events {
		if e.Category == category && e.Key == key {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of events matching category and key.
func (l *SimLog) Count(category, key string) int {
	n := 0
	for _, e := range l.events {
		if e.Category == category && e.Key == key {
			n++
		}
	}
	return n
}

// Last returns the most recent event in a category, if any.
func (l *SimLog) Last(category string) (SimEvent, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Category == category {
			return l.events[i], true
		}
	}
	return SimEvent{}, false
}

// Clear drops all recorded events.
func (l *SimLog) Clear() { l.events = l.events[:0] }

// Dump writes the full log, one line per event.
func (l *SimLog) Dump(w io.Writer) {
	for _, e := range l.events {
		fmt.Fprintf(w, "[t%05d] %s/%s subj=%d val=%q num=%.2f\n",
			e.Tick, e.Category, e.Key, e.Subject, e.Value, e.NumVal)
	}
}

// Summary writes per-category/key counts, sorted, for quick triage.
func (l *SimLog) Summary(w io.Writer) {
	counts := make(map[string]int)
	for _, e := range l.events {
		counts[e.Category+"/"+e.Key]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-40s %d\n", k, counts[k])
	}
}

package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// A very small in-process metrics registry that exports Prometheus-like text.
// It supports counters and simple summaries (count/sum), with labeled samples.

type labelsKey string

func makeKey(lbls map[string]string) labelsKey {
	if len(lbls) == 0 {
		return labelsKey("")
	}
	keys := make([]string, 0, len(lbls))
	for k := range lbls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(strings.ReplaceAll(lbls[k], `"`, `\"`))
		b.WriteByte('"')
	}
	return labelsKey(b.String())
}

func sortedKeys(m map[labelsKey]float64) []labelsKey {
	keys := make([]labelsKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type CounterVec struct {
	Name   string
	Help   string
	mu     sync.RWMutex
	values map[labelsKey]float64
}

func NewCounterVec(name, help string) *CounterVec {
	return &CounterVec{Name: name, Help: help, values: make(map[labelsKey]float64)}
}

func (cv *CounterVec) Inc(lbls map[string]string) {
	key := makeKey(lbls)
	cv.mu.Lock()
	cv.values[key]++
	cv.mu.Unlock()
}

// Value returns the current count for the exact label set.
func (cv *CounterVec) Value(lbls map[string]string) float64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	return cv.values[makeKey(lbls)]
}

// Reset drops every sample.
func (cv *CounterVec) Reset() {
	cv.mu.Lock()
	cv.values = make(map[labelsKey]float64)
	cv.mu.Unlock()
}

func (cv *CounterVec) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n", cv.Name, cv.Help)
	fmt.Fprintf(w, "# TYPE %s counter\n", cv.Name)
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	for _, key := range sortedKeys(cv.values) {
		if key == "" {
			fmt.Fprintf(w, "%s %g\n", cv.Name, cv.values[key])
		} else {
			fmt.Fprintf(w, "%s{%s} %g\n", cv.Name, key, cv.values[key])
		}
	}
}

// SummaryVec stores count and sum; we export metric_count and metric_sum.
type SummaryVec struct {
	Name  string
	Help  string
	mu    sync.RWMutex
	count map[labelsKey]float64
	sum   map[labelsKey]float64
}

func NewSummaryVec(name, help string) *SummaryVec {
	return &SummaryVec{Name: name, Help: help, count: make(map[labelsKey]float64), sum: make(map[labelsKey]float64)}
}

func (sv *SummaryVec) Observe(lbls map[string]string, v float64) {
	key := makeKey(lbls)
	sv.mu.Lock()
	sv.count[key]++
	sv.sum[key] += v
	sv.mu.Unlock()
}

// Count returns the number of observations for the exact label set.
func (sv *SummaryVec) Count(lbls map[string]string) float64 {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.count[makeKey(lbls)]
}

func (sv *SummaryVec) Reset() {
	sv.mu.Lock()
	sv.count = make(map[labelsKey]float64)
	sv.sum = make(map[labelsKey]float64)
	sv.mu.Unlock()
}

func (sv *SummaryVec) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n", sv.Name, sv.Help)
	fmt.Fprintf(w, "# TYPE %s summary\n", sv.Name)
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	for _, key := range sortedKeys(sv.count) {
		if key == "" {
			fmt.Fprintf(w, "%s_sum %g\n", sv.Name, sv.sum[key])
			fmt.Fprintf(w, "%s_count %g\n", sv.Name, sv.count[key])
		} else {
			fmt.Fprintf(w, "%s_sum{%s} %g\n", sv.Name, key, sv.sum[key])
			fmt.Fprintf(w, "%s_count{%s} %g\n", sv.Name, key, sv.count[key])
		}
	}
}

// Global metrics we care about
var (
	// outcome=ok|error
	LLMCalls   = NewCounterVec("dictenrich_llm_calls_total", "Completion calls by provider and outcome")
	LLMCallDur = NewSummaryVec("dictenrich_llm_call_seconds", "Completion call duration seconds")

	// outcome=enriched|defaulted
	Rows = NewCounterVec("dictenrich_rows_total", "Dictionary rows by outcome")

	// kind=group|confidence
	Corrections = NewCounterVec("dictenrich_corrections_total", "Reply fields corrected in place")
)

// Reset clears every global metric.
func Reset() {
	LLMCalls.Reset()
	LLMCallDur.Reset()
	Rows.Reset()
	Corrections.Reset()
}

// Write dumps all metrics in Prometheus text format.
func Write(w io.Writer) {
	LLMCalls.write(w)
	LLMCallDur.write(w)
	Rows.write(w)
	Corrections.write(w)
}

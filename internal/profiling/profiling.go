package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Per-tick CPU timing buckets. Names follow "package.Operation" so related
// buckets can be summed by prefix.

var (
	mu        sync.Mutex
	tickTotal = make(map[string]time.Duration)
)

// Track returns a stop function that adds the elapsed time to the named bucket.
// Usage: defer profiling.Track("render.Present")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		tickTotal[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears the buckets. The driver calls it at the start of every tick.
func ResetFrame() {
	mu.Lock()
	clear(tickTotal)
	mu.Unlock()
}

// Snapshot returns a copy of the current buckets.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(tickTotal))
	for k, v := range tickTotal {
		out[k] = v
	}
	return out
}

// SumWithPrefix sums all buckets whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for k, v := range tickTotal {
		if strings.HasPrefix(k, prefix) {
			sum += v
		}
	}
	return sum
}

// TopN formats the n most expensive buckets of the current tick.
// Example: "render.Present:4.2ms, render.Update:0.3ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		parts = append(parts, p.name+":"+formatMs(p.dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs renders d in milliseconds with one decimal, dropping a trailing ".0".
func formatMs(d time.Duration) string {
	tenths := d.Microseconds() / 100
	s := strconv.FormatInt(tenths/10, 10)
	if frac := tenths % 10; frac != 0 {
		s += "." + strconv.FormatInt(frac, 10)
	}
	return s + "ms"
}

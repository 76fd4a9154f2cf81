package benchmark

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/keydenlabs/keyden/internal/storage/memory"
)

// KeyCounts defines the keyspace sizes for full benchmarks.
var KeyCounts = []int{10000, 50000, 100000, 500000, 1000000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000, 100000}

// benchValue is a representative payload.
var benchValue = strings.Repeat("v", 100)

// benchKey returns the i'th preload key.
func benchKey(i int) string {
	return fmt.Sprintf("key-%d", i)
}

// prefillStore fills a keyspace with count live entries.
func prefillStore(store *memory.Store, count int) {
	for i := 0; i < count; i++ {
		store.Set(benchKey(i), benchValue)
	}
}

// prefillExpired fills a keyspace where every ratio'th entry is already
// past its deadline. Returns the number of expired entries written.
func prefillExpired(store *memory.Store, count, ratio int) int {
	expired := 0
	for i := 0; i < count; i++ {
		if ratio > 0 && i%ratio == 0 {
			store.SetWithTTL(benchKey(i), benchValue, 0)
			expired++
		} else {
			store.Set(benchKey(i), benchValue)
		}
	}
	return expired
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

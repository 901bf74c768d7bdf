package metrics

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/matchkit/core"
)

func TestCountersAndGauges(t *testing.T) {
	c := NewCollector()
	c.Inc("predictions_total", 1)
	c.Inc("predictions_total", 2)
	c.SetGauge("active_tests", 3)
	c.SetGauge("active_tests", 2)

	snap := c.Snapshot()
	if snap.Counters["predictions_total"] != 3 {
		t.Errorf("counter = %d, want 3", snap.Counters["predictions_total"])
	}
	if snap.Gauges["active_tests"] != 2 {
		t.Errorf("gauge = %v, want 2", snap.Gauges["active_tests"])
	}
}

func TestObserveBounded(t *testing.T) {
	c := NewCollector(WithMaxSamples(4))
	for i := 0; i < 10; i++ {
		c.Observe("latency_ms", float64(i))
	}

	stats := c.Snapshot().Distributions["latency_ms"]
	if stats.Count != 4 {
		t.Fatalf("sample count = %d, want 4 (bounded)", stats.Count)
	}
	// 只保留最新的 4 个样本：6 7 8 9
	if stats.Min != 6 || stats.Max != 9 {
		t.Errorf("min/max = %v/%v, want 6/9", stats.Min, stats.Max)
	}
}

func TestComputeStatistics(t *testing.T) {
	stats := ComputeStatistics([]float64{1, 2, 3, 4, 5})
	if stats.Count != 5 {
		t.Fatalf("count = %d, want 5", stats.Count)
	}
	if stats.Mean != 3 {
		t.Errorf("mean = %v, want 3", stats.Mean)
	}
	if stats.Median != 3 {
		t.Errorf("median = %v, want 3", stats.Median)
	}
	if stats.Min != 1 || stats.Max != 5 {
		t.Errorf("min/max = %v/%v, want 1/5", stats.Min, stats.Max)
	}
	if math.Abs(stats.Std-math.Sqrt(2)) > 1e-12 {
		t.Errorf("std = %v, want sqrt(2)", stats.Std)
	}
	if stats.P25 != 2 || stats.P75 != 4 {
		t.Errorf("p25/p75 = %v/%v, want 2/4", stats.P25, stats.P75)
	}

	empty := ComputeStatistics(nil)
	if empty.Count != 0 || empty.Mean != 0 {
		t.Errorf("empty stats = %+v, want zero value", empty)
	}
}

func TestPercentileInterpolation(t *testing.T) {
	// 两个样本，P50 线性插值
	stats := ComputeStatistics([]float64{0, 10})
	if stats.Median != 5 {
		t.Errorf("median = %v, want 5", stats.Median)
	}
	if stats.P99 != 9.9 {
		t.Errorf("p99 = %v, want 9.9", stats.P99)
	}
}

func TestSnapshotIsolated(t *testing.T) {
	c := NewCollector()
	c.Inc("n", 1)
	snap := c.Snapshot()
	c.Inc("n", 1)

	if snap.Counters["n"] != 1 {
		t.Error("snapshot mutated by later writes")
	}
}

func TestExportJSON(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	c := NewCollector(WithClock(func() time.Time { return now }))
	c.Inc("errors_total", 2)
	c.Observe("latency_ms", 10)

	data, err := Export(c.Snapshot(), FormatJSON)
	if err != nil {
		t.Fatalf("Export(json) error = %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded.Counters["errors_total"] != 2 {
		t.Errorf("decoded counter = %d, want 2", decoded.Counters["errors_total"])
	}
	if !decoded.CollectedAt.Equal(now) {
		t.Errorf("decoded timestamp = %v, want %v", decoded.CollectedAt, now)
	}
}

func TestExportCSV(t *testing.T) {
	c := NewCollector()
	c.Inc("b_counter", 1)
	c.Inc("a_counter", 2)
	c.SetGauge("g", 0.5)
	c.Observe("d", 1)

	data, err := Export(c.Snapshot(), FormatCSV)
	if err != nil {
		t.Fatalf("Export(csv) error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("csv parse error = %v", err)
	}
	if len(records) < 2 {
		t.Fatalf("csv rows = %d, want header plus data", len(records))
	}
	header := strings.Join(records[0], ",")
	if header != "section,name,field,value" {
		t.Errorf("csv header = %q", header)
	}
	// 计数器按名称排序
	if records[1][1] != "a_counter" || records[2][1] != "b_counter" {
		t.Errorf("counters not sorted: %v %v", records[1], records[2])
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	c := NewCollector()
	if _, err := Export(c.Snapshot(), "xml"); !core.IsValidationError(err) {
		t.Errorf("Export(xml) error = %v, want validation error", err)
	}
	if _, err := Export(nil, FormatJSON); !core.IsValidationError(err) {
		t.Errorf("Export(nil) error = %v, want validation error", err)
	}
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc("n", 1)
				c.Observe("v", float64(j))
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot().Counters["n"]; got != 800 {
		t.Errorf("counter = %d, want 800", got)
	}
}

package metrics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/rushteam/matchkit/core"
)

// 导出格式
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// csvHeader 固定列顺序，消费方按列名解析。
var csvHeader = []string{"section", "name", "field", "value"}

// Export 把快照序列化为指定格式。不支持的格式报 VALIDATION 错误。
func Export(snap *Snapshot, format string) ([]byte, error) {
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleMetrics, core.ErrorCodeValidation, "metrics: snapshot is required")
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(snap, "", "  ")
	case FormatCSV:
		return exportCSV(snap)
	default:
		return nil, core.NewDomainError(core.ModuleMetrics, core.ErrorCodeValidation, "metrics: unsupported export format: "+format)
	}
}

func exportCSV(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, name := range sortedKeys(snap.Counters) {
		record := []string{"counter", name, "value", strconv.FormatInt(snap.Counters[name], 10)}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(snap.Gauges) {
		record := []string{"gauge", name, "value", formatFloat(snap.Gauges[name])}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(snap.Distributions) {
		stats := snap.Distributions[name]
		fields := []struct {
			field string
			value float64
		}{
			{"count", float64(stats.Count)},
			{"mean", stats.Mean},
			{"std", stats.Std},
			{"min", stats.Min},
			{"max", stats.Max},
			{"median", stats.Median},
			{"p25", stats.P25},
			{"p75", stats.P75},
			{"p95", stats.P95},
			{"p99", stats.P99},
		}
		for _, f := range fields {
			if err := w.Write([]string{"distribution", name, f.field, formatFloat(f.value)}); err != nil {
				return nil, err
			}
		}
	}

	record := []string{"meta", "collected_at", "value", snap.CollectedAt.UTC().Format(time.RFC3339)}
	if err := w.Write(record); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

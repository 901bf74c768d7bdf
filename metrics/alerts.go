package metrics

import (
	"strings"
	"time"

	"github.com/rushteam/matchkit/core"
)

// 告警比较方向
const (
	OpAbove = "above" // 指标值 > 阈值时触发
	OpBelow = "below" // 指标值 < 阈值时触发
)

// AlertRule 是一条阈值告警规则。
//
// Metric 按以下顺序解析：计数器、瞬时值、分布字段。
// 分布字段用 "名称.字段" 形式，如 "latency_ms.p95"。
type AlertRule struct {
	Name      string  `json:"name"`
	Metric    string  `json:"metric"`
	Op        string  `json:"op"`
	Threshold float64 `json:"threshold"`
}

// Alert 是一次触发的告警。
type Alert struct {
	Rule      string    `json:"rule"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	At        time.Time `json:"at"`
}

// EvaluateAlerts 对快照执行全部规则，返回触发的告警。
// 指标不存在的规则不触发；规则非法时报 VALIDATION 错误。
func EvaluateAlerts(snap *Snapshot, rules []AlertRule) ([]Alert, error) {
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleMetrics, core.ErrorCodeValidation, "metrics: snapshot is required")
	}

	var alerts []Alert
	for _, rule := range rules {
		if rule.Metric == "" || (rule.Op != OpAbove && rule.Op != OpBelow) {
			return nil, core.NewDomainError(core.ModuleMetrics, core.ErrorCodeValidation,
				"metrics: invalid alert rule: "+rule.Name)
		}
		value, ok := resolveMetric(snap, rule.Metric)
		if !ok {
			continue
		}
		triggered := (rule.Op == OpAbove && value > rule.Threshold) ||
			(rule.Op == OpBelow && value < rule.Threshold)
		if triggered {
			alerts = append(alerts, Alert{
				Rule:      rule.Name,
				Metric:    rule.Metric,
				Value:     value,
				Threshold: rule.Threshold,
				At:        snap.CollectedAt,
			})
		}
	}
	return alerts, nil
}

func resolveMetric(snap *Snapshot, metric string) (float64, bool) {
	if v, ok := snap.Counters[metric]; ok {
		return float64(v), true
	}
	if v, ok := snap.Gauges[metric]; ok {
		return v, true
	}

	name, field, found := strings.Cut(metric, ".")
	if !found {
		return 0, false
	}
	stats, ok := snap.Distributions[name]
	if !ok {
		return 0, false
	}
	switch field {
	case "count":
		return float64(stats.Count), true
	case "mean":
		return stats.Mean, true
	case "std":
		return stats.Std, true
	case "min":
		return stats.Min, true
	case "max":
		return stats.Max, true
	case "median", "p50":
		return stats.Median, true
	case "p25":
		return stats.P25, true
	case "p75":
		return stats.P75, true
	case "p95":
		return stats.P95, true
	case "p99":
		return stats.P99, true
	default:
		return 0, false
	}
}

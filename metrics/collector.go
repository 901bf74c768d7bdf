// Package metrics 提供轻量的进程内指标收集：计数器、瞬时值与样本分布。
//
// 匹配核心用它跟踪预测延迟、特征缺失率、训练轮次等运行指标。
// 生产环境可在此之上对接 Prometheus、StatsD 等外部系统。
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// defaultMaxSamples 是每个分布指标保留的最大样本数。
const defaultMaxSamples = 1024

// Collector 是线程安全的指标收集器。
type Collector struct {
	mu         sync.RWMutex
	counters   map[string]int64
	gauges     map[string]float64
	samples    map[string][]float64
	maxSamples int
	now        func() time.Time
}

// CollectorOption 配置 Collector。
type CollectorOption func(*Collector)

// WithMaxSamples 设置每个分布指标保留的最大样本数。
func WithMaxSamples(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.maxSamples = n
		}
	}
}

// WithClock 注入时钟，测试用。
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCollector 创建指标收集器。
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		samples:    make(map[string][]float64),
		maxSamples: defaultMaxSamples,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Inc 累加计数器。
func (c *Collector) Inc(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

// SetGauge 设置瞬时值。
func (c *Collector) SetGauge(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

// Observe 记录一个分布样本，超过上限时丢弃最旧样本。
func (c *Collector) Observe(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := c.samples[name]
	if len(values) >= c.maxSamples {
		values = values[1:]
	}
	c.samples[name] = append(values, value)
}

// ObserveDuration 以毫秒记录一段耗时。
func (c *Collector) ObserveDuration(name string, d time.Duration) {
	c.Observe(name, float64(d)/float64(time.Millisecond))
}

// Statistics 是一个分布指标的汇总统计。
type Statistics struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Snapshot 是某一时刻全部指标的只读副本。
type Snapshot struct {
	Counters      map[string]int64      `json:"counters"`
	Gauges        map[string]float64    `json:"gauges"`
	Distributions map[string]Statistics `json:"distributions"`
	CollectedAt   time.Time             `json:"collected_at"`
}

// Snapshot 生成当前指标的快照。
func (c *Collector) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := &Snapshot{
		Counters:      make(map[string]int64, len(c.counters)),
		Gauges:        make(map[string]float64, len(c.gauges)),
		Distributions: make(map[string]Statistics, len(c.samples)),
		CollectedAt:   c.now(),
	}
	for k, v := range c.counters {
		snap.Counters[k] = v
	}
	for k, v := range c.gauges {
		snap.Gauges[k] = v
	}
	for k, values := range c.samples {
		snap.Distributions[k] = *ComputeStatistics(values)
	}
	return snap
}

// Reset 清空全部指标。
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = make(map[string]int64)
	c.gauges = make(map[string]float64)
	c.samples = make(map[string][]float64)
}

// ComputeStatistics 计算样本集合的汇总统计。空样本返回零值。
func ComputeStatistics(values []float64) *Statistics {
	if len(values) == 0 {
		return &Statistics{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	stats := &Statistics{
		Count: len(values),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - stats.Mean) * (v - stats.Mean)
	}
	stats.Std = math.Sqrt(variance / float64(len(values)))

	stats.Median = percentile(sorted, 0.5)
	stats.P25 = percentile(sorted, 0.25)
	stats.P75 = percentile(sorted, 0.75)
	stats.P95 = percentile(sorted, 0.95)
	stats.P99 = percentile(sorted, 0.99)

	return stats
}

// percentile 线性插值分位数，输入必须已排序。
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

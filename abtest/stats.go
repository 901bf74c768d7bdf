// Package abtest 实现模型对照实验：粘性分桶、实时打分路由、转化归因、
// 两比例 z 检验与自动停止评估。
package abtest

import (
	"math"

	"github.com/rushteam/matchkit/core"
)

// NormalCDF 标准正态分布的累积分布函数。
func NormalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// zCritical 求置信水平对应的双侧临界值：NormalCDF(z) = 1 - (1-confidence)/2。
// 在 [0, 10] 上二分求解，精度 1e-9。
func zCritical(confidence float64) float64 {
	target := 1 - (1-confidence)/2
	lo, hi := 0.0, 10.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if NormalCDF(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1e-9 {
			break
		}
	}
	return (lo + hi) / 2
}

// twoProportionTest 两比例 z 检验（合并方差），返回 z 值与双侧 p 值。
// 任一组无样本或合并比例退化（全 0 / 全 1）时 z = 0、p = 1。
func twoProportionTest(control, treatment core.GroupStats) (z, p float64) {
	n1, n2 := float64(control.Participants), float64(treatment.Participants)
	if n1 == 0 || n2 == 0 {
		return 0, 1
	}
	x1, x2 := float64(control.Conversions), float64(treatment.Conversions)
	pooled := (x1 + x2) / (n1 + n2)
	if pooled <= 0 || pooled >= 1 {
		return 0, 1
	}

	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	z = (x2/n2 - x1/n1) / se
	p = 2 * (1 - NormalCDF(math.Abs(z)))
	return z, p
}

// confidenceInterval 转化率差值的置信区间（非合并标准误）。
func confidenceInterval(control, treatment core.GroupStats, confidence float64) (lo, hi float64) {
	n1, n2 := float64(control.Participants), float64(treatment.Participants)
	if n1 == 0 || n2 == 0 {
		return 0, 0
	}
	p1, p2 := control.Rate, treatment.Rate
	diff := p2 - p1
	se := math.Sqrt(p1*(1-p1)/n1 + p2*(1-p2)/n2)
	margin := zCritical(confidence) * se
	return diff - margin, diff + margin
}

// groupStats 汇总分组的参与与转化计数。
// 同一参与者的多次转化只计一次（转化率按去重人数算）。
func groupStats(participants []*core.Participant, conversions []*core.Conversion, group core.Group) core.GroupStats {
	var stats core.GroupStats
	for _, p := range participants {
		if p.Group == group {
			stats.Participants++
		}
	}

	converted := make(map[string]bool)
	for _, c := range conversions {
		if c.Group == group {
			converted[c.UserID] = true
		}
	}
	stats.Conversions = int64(len(converted))
	if stats.Participants > 0 {
		stats.Rate = float64(stats.Conversions) / float64(stats.Participants)
	}
	return stats
}

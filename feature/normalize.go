package feature

// clamp01 将值钳位到 [0, 1]。
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// norm 以固定上界 max 做归一化并钳位到 [0, 1]。
// 上界固定而非按批次计算，保证单个画像可独立抽取且结果与批次无关。
func norm(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return clamp01(v / max)
}

// normRange 以固定区间 [min, max] 做归一化并钳位到 [0, 1]。
func normRange(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return clamp01((v - min) / (max - min))
}

// boolToFloat 布尔转指示值。
func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Renormalize 对向量整体做 min-max 归一化（就地修改）。
// 所有值相等时整体置零。已经归一化过的向量再次调用结果不变。
func Renormalize(values []float64) {
	if len(values) == 0 {
		return
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		for i := range values {
			values[i] = 0
		}
		return
	}
	span := max - min
	for i, v := range values {
		values[i] = (v - min) / span
	}
}

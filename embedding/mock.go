// Package embedding 提供文本 Embedding 服务的若干实现：
// 确定性的 Mock（测试与离线场景）、HTTP 远端服务、以及带界限的缓存装饰器。
package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// mockDimensions Mock Embedding 的默认维度。
const mockDimensions = 64

// Mock 是确定性的 Embedding 服务：向量由文本哈希播种的伪随机序列生成，
// 单位归一化。相同文本永远得到相同向量，适合测试与无外部依赖的部署。
type Mock struct {
	dims int
}

// NewMock 创建 Mock Embedding 服务。dims <= 0 时使用默认维度。
func NewMock(dims int) *Mock {
	if dims <= 0 {
		dims = mockDimensions
	}
	return &Mock{dims: dims}
}

// Embed 生成文本的确定性向量。
func (m *Mock) Embed(_ context.Context, text string) ([]float64, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()
	if state == 0 {
		state = 1
	}

	out := make([]float64, m.dims)
	var norm float64
	for i := range out {
		state = xorshift64(state)
		// 映射到 [-1, 1)
		out[i] = float64(int64(state)) / float64(math.MaxInt64)
		norm += out[i] * out[i]
	}
	if norm > 0 {
		scale := 1 / math.Sqrt(norm)
		for i := range out {
			out[i] *= scale
		}
	}
	return out, nil
}

// ModelName 返回模型名。
func (m *Mock) ModelName() string { return "mock" }

// Dimensions 返回向量维度。
func (m *Mock) Dimensions() int { return m.dims }

// xorshift64 确定性伪随机序列的状态转移。
func xorshift64(s uint64) uint64 {
	s ^= s << 13
	s ^= s >> 7
	s ^= s << 17
	return s
}

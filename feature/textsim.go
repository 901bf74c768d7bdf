package feature

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
)

// textSimilarityFeatures 计算文本相似度块：
// 两段自由文本 Embedding 的余弦相似度与归一化欧氏距离。
// Embedding 调用带超时；任何失败都降级为中性零分，不向上抛错。
func (e *Extractor) textSimilarityFeatures(ctx context.Context, candidate, job *core.Profile) []float64 {
	out := make([]float64, widthTextSimilarity)
	if e.embedding == nil {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, e.embeddingTimeout)
	defer cancel()

	a, err := e.embedding.Embed(ctx, candidate.FreeText())
	if err != nil {
		e.logger.Warn("embedding failed, degrading text similarity to neutral",
			zap.String("profile_id", candidate.ID), zap.Error(err))
		return out
	}
	b, err := e.embedding.Embed(ctx, job.FreeText())
	if err != nil {
		e.logger.Warn("embedding failed, degrading text similarity to neutral",
			zap.String("profile_id", job.ID), zap.Error(err))
		return out
	}

	out[0] = cosineSimilarity(a, b)
	out[1] = normalizedEuclidean(a, b)
	return out
}

// cosineSimilarity 余弦相似度，任一向量为零向量时返回 0。
func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// normalizedEuclidean 归一化欧氏距离相似度：1 / (1 + dist)，
// 距离为 0 时取 1，距离越大越接近 0。
func normalizedEuclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return 1 / (1 + math.Sqrt(sum))
}

// defaultEmbeddingTimeout Embedding 调用的默认超时。
const defaultEmbeddingTimeout = 2 * time.Second

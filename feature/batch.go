package feature

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/matchkit/core"
)

// defaultBatchConcurrency 批量抽取的默认并发度。
const defaultBatchConcurrency = 8

// Pair 是一条待抽取的(候选人, 职位)配对。
type Pair struct {
	Candidate *core.Profile
	Job       *core.Profile
}

// BatchExtractProfiles 并发抽取一批画像，结果与输入顺序一一对应。
// 任何一条失败即整体失败并取消剩余任务。
func (e *Extractor) BatchExtractProfiles(ctx context.Context, profiles []*core.Profile) ([]*core.FeatureVector, error) {
	return e.BatchExtractProfilesN(ctx, profiles, defaultBatchConcurrency)
}

// BatchExtractProfilesN 同 BatchExtractProfiles，但指定并发度。
func (e *Extractor) BatchExtractProfilesN(ctx context.Context, profiles []*core.Profile, concurrency int) ([]*core.FeatureVector, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	out := make([]*core.FeatureVector, len(profiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range profiles {
		i, p := i, p
		g.Go(func() error {
			vec, err := e.ExtractProfile(ctx, p)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// BatchExtractPairs 并发抽取一批配对，结果与输入顺序一一对应。
func (e *Extractor) BatchExtractPairs(ctx context.Context, pairs []Pair) ([]*core.FeatureVector, error) {
	return e.BatchExtractPairsN(ctx, pairs, defaultBatchConcurrency)
}

// BatchExtractPairsN 同 BatchExtractPairs，但指定并发度。
func (e *Extractor) BatchExtractPairsN(ctx context.Context, pairs []Pair, concurrency int) ([]*core.FeatureVector, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	out := make([]*core.FeatureVector, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			vec, err := e.ExtractPair(ctx, pair.Candidate, pair.Job)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

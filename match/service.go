package match

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/metrics"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/logging"
)

// Service 封装一条匹配 Pipeline，提供"画像集合进、排序结果出"的入口。
type Service struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// ServiceOption 配置 Service。
type ServiceOption func(*Service)

// WithLogger 注入日志器。
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics 注入指标收集器。
func WithMetrics(collector *metrics.Collector) ServiceOption {
	return func(s *Service) { s.metrics = collector }
}

// NewService 创建匹配服务。
func NewService(p *pipeline.Pipeline, opts ...ServiceOption) *Service {
	s := &Service{
		pipeline: p,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Match 对一批画像执行匹配 Pipeline，返回排序后的候选。
func (s *Service) Match(ctx context.Context, mctx *core.MatchContext, profiles []*core.Profile) ([]*core.MatchCandidate, error) {
	if s.pipeline == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeConfig, "match: pipeline is not configured")
	}
	if mctx == nil {
		mctx = &core.MatchContext{}
	}

	candidates := make([]*core.MatchCandidate, 0, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		candidates = append(candidates, core.NewMatchCandidate(p))
	}

	started := time.Now()
	out, err := s.pipeline.Run(ctx, mctx, candidates)
	elapsed := time.Since(started)

	if s.metrics != nil {
		s.metrics.Inc("match_requests_total", 1)
		s.metrics.ObserveDuration("match_latency_ms", elapsed)
		if err != nil {
			s.metrics.Inc("match_errors_total", 1)
		}
	}
	if err != nil {
		s.logger.Error("match pipeline failed",
			zap.String("user_id", mctx.UserID),
			zap.Int("candidates", len(candidates)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("match pipeline completed",
		zap.String("user_id", mctx.UserID),
		zap.Int("in", len(candidates)),
		zap.Int("out", len(out)),
		zap.Duration("elapsed", elapsed))
	return out, nil
}

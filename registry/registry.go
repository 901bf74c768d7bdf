// Package registry 在 core.KeyValueStore 之上实现模型注册表与实验注册表：
// 工件以 JSON 编码存储，版本与时间线用有序集合维护，参与者分组用哈希表。
// 后端可以是内存存储（开发）或 Redis（生产），语义一致。
package registry

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pkg/logging"
)

// 键布局
const (
	keyModelPrefix   = "model:"          // model:<id> -> MLModel JSON
	keyModelTimeline = "models:timeline" // zset: score = CreatedAt, member = id
	keyModelActive   = "models:active"   // -> active model id
	keyTestPrefix    = "test:"           // test:<id> -> ABTest JSON
	keyTestTimeline  = "tests:timeline"  // zset: score = CreatedAt, member = id

	suffixParticipants = ":participants" // hash: field = userID -> Participant JSON
	suffixConversions  = ":conversions"  // hash: field = conversion id -> Conversion JSON
)

// Registry 同时实现 core.ModelRegistry 与 core.ExperimentRegistry。
type Registry struct {
	kv     core.KeyValueStore
	logger *zap.Logger
}

// Option 配置 Registry。
type Option func(*Registry)

// WithLogger 注入日志器，默认不输出。
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New 创建注册表。
func New(kv core.KeyValueStore, opts ...Option) *Registry {
	r := &Registry{kv: kv}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger)
	return r
}

var (
	_ core.ModelRegistry      = (*Registry)(nil)
	_ core.ExperimentRegistry = (*Registry)(nil)
)

// SaveModel 保存新的模型工件并登记到时间线。
func (r *Registry) SaveModel(ctx context.Context, m *core.MLModel) error {
	if m == nil || m.ID == "" {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeValidation, "model id is required")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, keyModelPrefix+m.ID, data); err != nil {
		return err
	}
	if err := r.kv.ZAdd(ctx, keyModelTimeline, float64(m.CreatedAt.UnixNano()), m.ID); err != nil {
		// 时间线失败不影响工件本体，记日志后继续
		r.logger.Warn("model timeline update failed", zap.String("model_id", m.ID), zap.Error(err))
	}
	return nil
}

// LoadModel 按 id 加载模型工件。
func (r *Registry) LoadModel(ctx context.Context, id string) (*core.MLModel, error) {
	data, err := r.kv.Get(ctx, keyModelPrefix+id)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrModelNotFound
		}
		return nil, err
	}
	var m core.MLModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateModel 更新既有工件（治理字段）。
func (r *Registry) UpdateModel(ctx context.Context, m *core.MLModel) error {
	if m == nil || m.ID == "" {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeValidation, "model id is required")
	}
	if _, err := r.kv.Get(ctx, keyModelPrefix+m.ID); err != nil {
		if core.IsStoreNotFound(err) {
			return core.ErrModelNotFound
		}
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, keyModelPrefix+m.ID, data)
}

// ListModels 按创建时间降序列出全部模型工件。
func (r *Registry) ListModels(ctx context.Context) ([]*core.MLModel, error) {
	ids, err := r.kv.ZRange(ctx, keyModelTimeline, 0, -1)
	if err != nil {
		return nil, err
	}
	out := make([]*core.MLModel, 0, len(ids))
	for _, id := range ids {
		m, err := r.LoadModel(ctx, id)
		if err != nil {
			if err == core.ErrModelNotFound {
				continue // 时间线残留的孤儿 id
			}
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ActiveModel 返回当前 active 的模型工件。
func (r *Registry) ActiveModel(ctx context.Context) (*core.MLModel, error) {
	id, err := r.kv.Get(ctx, keyModelActive)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrModelNotFound
		}
		return nil, err
	}
	return r.LoadModel(ctx, string(id))
}

// SetActive 将指定模型置为 active，取消此前 active 模型的标记。
func (r *Registry) SetActive(ctx context.Context, id string) error {
	next, err := r.LoadModel(ctx, id)
	if err != nil {
		return err
	}

	if prevID, err := r.kv.Get(ctx, keyModelActive); err == nil && string(prevID) != id {
		if prev, err := r.LoadModel(ctx, string(prevID)); err == nil {
			prev.Active = false
			if err := r.UpdateModel(ctx, prev); err != nil {
				r.logger.Warn("failed to clear previous active flag",
					zap.String("model_id", prev.ID), zap.Error(err))
			}
		}
	}

	next.Active = true
	if err := r.UpdateModel(ctx, next); err != nil {
		return err
	}
	return r.kv.Set(ctx, keyModelActive, []byte(id))
}

// SaveTest 保存实验并登记到时间线。
func (r *Registry) SaveTest(ctx context.Context, t *core.ABTest) error {
	if t == nil || t.ID == "" {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeValidation, "test id is required")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, keyTestPrefix+t.ID, data); err != nil {
		return err
	}
	if err := r.kv.ZAdd(ctx, keyTestTimeline, float64(t.CreatedAt.UnixNano()), t.ID); err != nil {
		r.logger.Warn("test timeline update failed", zap.String("test_id", t.ID), zap.Error(err))
	}
	return nil
}

// LoadTest 按 id 加载实验。
func (r *Registry) LoadTest(ctx context.Context, id string) (*core.ABTest, error) {
	data, err := r.kv.Get(ctx, keyTestPrefix+id)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrTestNotFound
		}
		return nil, err
	}
	var t core.ABTest
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTest 更新实验。
func (r *Registry) UpdateTest(ctx context.Context, t *core.ABTest) error {
	if t == nil || t.ID == "" {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeValidation, "test id is required")
	}
	if _, err := r.kv.Get(ctx, keyTestPrefix+t.ID); err != nil {
		if core.IsStoreNotFound(err) {
			return core.ErrTestNotFound
		}
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, keyTestPrefix+t.ID, data)
}

// SaveParticipant 保存参与者分组记录（粘性：同一用户只写一次）。
func (r *Registry) SaveParticipant(ctx context.Context, p *core.Participant) error {
	if p == nil || p.TestID == "" || p.UserID == "" {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeValidation, "participant test id and user id are required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.kv.HSet(ctx, keyTestPrefix+p.TestID+suffixParticipants, p.UserID, data)
}

// LoadParticipant 读取参与者分组记录。
func (r *Registry) LoadParticipant(ctx context.Context, testID, userID string) (*core.Participant, error) {
	data, err := r.kv.HGet(ctx, keyTestPrefix+testID+suffixParticipants, userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrParticipantNotFound
		}
		return nil, err
	}
	var p core.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListParticipants 列出实验的全部参与者。
func (r *Registry) ListParticipants(ctx context.Context, testID string) ([]*core.Participant, error) {
	all, err := r.kv.HGetAll(ctx, keyTestPrefix+testID+suffixParticipants)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Participant, 0, len(all))
	for _, data := range all {
		var p core.Participant
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// SaveConversion 追加一条转化记录。
func (r *Registry) SaveConversion(ctx context.Context, c *core.Conversion) error {
	if c == nil || c.TestID == "" {
		return core.NewDomainError(core.ModuleRegistry, core.ErrorCodeValidation, "conversion test id is required")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.kv.HSet(ctx, keyTestPrefix+c.TestID+suffixConversions, uuid.NewString(), data)
}

// ListConversions 按时间升序列出实验的全部转化记录。
func (r *Registry) ListConversions(ctx context.Context, testID string) ([]*core.Conversion, error) {
	all, err := r.kv.HGetAll(ctx, keyTestPrefix+testID+suffixConversions)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Conversion, 0, len(all))
	for _, data := range all {
		var c core.Conversion
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

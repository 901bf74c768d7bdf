package core

import "context"

// ModelRegistry 是模型注册表的领域接口。
//
// Trainer 与 A/B 框架只通过 Save/Load/Update 依赖它，并把它当作
// crash-safe 的外部存储：持久化失败时内存态操作仍须完成，错误以
// 可重试的形式暴露或记录日志，绝不静默丢弃。
type ModelRegistry interface {
	// SaveModel 保存新的模型工件
	SaveModel(ctx context.Context, m *MLModel) error

	// LoadModel 按 id 加载模型工件
	LoadModel(ctx context.Context, id string) (*MLModel, error)

	// UpdateModel 更新既有工件（仅 Active / UpdatedAt 等治理字段；
	// 学习参数不可变，重训产生新工件）
	UpdateModel(ctx context.Context, m *MLModel) error

	// ListModels 按创建时间降序列出模型工件
	ListModels(ctx context.Context) ([]*MLModel, error)

	// ActiveModel 返回当前 active 的模型工件
	ActiveModel(ctx context.Context) (*MLModel, error)

	// SetActive 将指定模型置为 active，并取消其他模型的 active 标记
	SetActive(ctx context.Context, id string) error
}

// ExperimentRegistry 是实验记录的领域接口。
type ExperimentRegistry interface {
	// SaveTest 保存实验
	SaveTest(ctx context.Context, t *ABTest) error

	// LoadTest 按 id 加载实验
	LoadTest(ctx context.Context, id string) (*ABTest, error)

	// UpdateTest 更新实验（状态转移、累计指标）
	UpdateTest(ctx context.Context, t *ABTest) error

	// SaveParticipant 保存参与者分组记录（粘性，只写一次）
	SaveParticipant(ctx context.Context, p *Participant) error

	// LoadParticipant 读取参与者分组记录
	LoadParticipant(ctx context.Context, testID, userID string) (*Participant, error)

	// ListParticipants 列出实验的全部参与者
	ListParticipants(ctx context.Context, testID string) ([]*Participant, error)

	// SaveConversion 追加一条转化记录
	SaveConversion(ctx context.Context, c *Conversion) error

	// ListConversions 列出实验的全部转化记录
	ListConversions(ctx context.Context, testID string) ([]*Conversion, error)
}

// Registry 错误定义
var (
	// ErrModelNotFound 表示模型工件不存在
	ErrModelNotFound = NewDomainError(ModuleRegistry, ErrorCodeNotFound, "registry: model not found")

	// ErrTestNotFound 表示实验不存在
	ErrTestNotFound = NewDomainError(ModuleRegistry, ErrorCodeNotFound, "registry: test not found")

	// ErrParticipantNotFound 表示参与者尚未分组
	ErrParticipantNotFound = NewDomainError(ModuleRegistry, ErrorCodeNotFound, "registry: participant not found")
)

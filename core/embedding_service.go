package core

import "context"

// EmbeddingService 是文本 Embedding 服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（embedding）实现
//   - 这是匹配热路径上唯一允许的（可 mock 的）网络依赖：
//     调用必须带有界超时，失败时降级为中性相似度分数而不是把错误
//     传播进特征向量
//
// 实现：
//   - embedding.Mock：输入文本的确定性函数（种子哈希），用于
//     测试与离线环境，两个上下文中产出逐位可比的向量
//   - embedding.HTTPProvider：真实 Embedding 服务
//   - embedding.Cache：有界缓存装饰器
type EmbeddingService interface {
	// Embed 生成文本的 Embedding 向量
	Embed(ctx context.Context, text string) ([]float64, error)

	// ModelName 返回 Embedding 模型名称（用于日志/监控）
	ModelName() string

	// Dimensions 返回向量维度
	Dimensions() int
}

// ErrEmbeddingUnavailable 表示 Embedding 服务不可用（错误分类 5：
// 边界处捕获、记录日志并降级，绝不导致整条流水线崩溃）。
var ErrEmbeddingUnavailable = NewDomainError(ModuleEmbedding, ErrorCodeUnavailable, "embedding: service unavailable")

package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Trainer 错误：IN_PROGRESS, UNSUPPORTED_ALGORITHM, VALIDATION
//   - ABTest 错误：NOT_FOUND, INVALID_STATE
//   - 其他领域错误
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "IN_PROGRESS"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "trainer", "abtest"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeNotSupported = "NOT_SUPPORTED" // 操作不支持
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 服务不可用
	ErrorCodeValidation   = "VALIDATION"    // 输入数据非法
	ErrorCodeConfig       = "CONFIG"        // 配置非法
	ErrorCodeInProgress   = "IN_PROGRESS"   // 互斥操作正在进行
	ErrorCodeInvalidState = "INVALID_STATE" // 状态机转移非法
	ErrorCodeCanceled     = "CANCELED"      // 操作被取消
)

// 模块名称常量
const (
	ModuleStore     = "store"
	ModuleFeature   = "feature"
	ModuleTrainer   = "trainer"
	ModuleABTest    = "abtest"
	ModuleRegistry  = "registry"
	ModuleEmbedding = "embedding"
	ModuleMetrics   = "metrics"
)

// hasDomainCode 检查错误是否属于指定模块且携带指定错误代码。
func hasDomainCode(err error, module, code string) bool {
	domainErr := GetDomainError(err)
	if domainErr == nil {
		return false
	}
	return domainErr.Module == module && domainErr.Code == code
}

// IsValidationError 检查错误是否为输入校验错误（错误分类 1）。
func IsValidationError(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Code == ErrorCodeValidation
}

// IsConfigError 检查错误是否为配置错误（错误分类 2）。
func IsConfigError(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Code == ErrorCodeConfig
}

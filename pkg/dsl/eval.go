// Package dsl 提供基于 CEL 的规则表达式求值，用于实验受众圈选与硬性条件过滤。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/matchkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("job", cel.DynType),
		cel.Variable("user_id", cel.StringType),
		cel.Variable("params", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Eval 是规则表达式解释器，使用 CEL (Common Expression Language) 实现。
//
// 表达式语法（CEL 标准语法）：
//   - 受众圈选：`params.country == "US"` / `user_id.startsWith("beta_")`
//   - 硬性条件：`"go" in candidate.skills` / `candidate.country == "US"`
//   - 逻辑组合：`job.remote || candidate.country == job.country`
//
// 表达式编译结果按表达式文本缓存，可以被并发复用。
type Eval struct {
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEval 创建一个新的规则解释器。
func NewEval() *Eval {
	return &Eval{
		programs: make(map[string]cel.Program),
	}
}

// Evaluate 解析并执行规则表达式，返回布尔结果。
// 空表达式视为恒真（全量放行）。
func (e *Eval) Evaluate(expr string, mctx *core.MatchContext, candidate *core.Profile) (bool, error) {
	if expr == "" {
		return true, nil
	}

	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(e.buildInput(mctx, candidate))
	if err != nil {
		// 对于不存在的 key，CEL 会返回错误；
		// 表达式应使用 has() 或 != null 检查存在性
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// program 返回表达式的编译结果（带缓存）。
func (e *Eval) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err = env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	e.mu.Lock()
	e.programs[expr] = prg
	e.mu.Unlock()
	return prg, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput(mctx *core.MatchContext, candidate *core.Profile) map[string]interface{} {
	input := map[string]interface{}{
		"candidate": profileInput(candidate),
		"job":       map[string]interface{}{},
		"user_id":   "",
		"params":    map[string]interface{}{},
	}
	if mctx != nil {
		input["user_id"] = mctx.UserID
		if mctx.Job != nil {
			input["job"] = profileInput(mctx.Job)
		}
		if mctx.Params != nil {
			input["params"] = mctx.Params
		}
	}
	return input
}

// profileInput 将画像展开成 CEL 可访问的 map。
func profileInput(p *core.Profile) map[string]interface{} {
	if p == nil {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{
		"id":     p.ID,
		"type":   string(p.Type),
		"title":  p.Title,
		"skills": p.SkillNames(),
	}
	if p.Location != nil {
		out["country"] = p.Location.Country
		out["city"] = p.Location.City
		out["remote"] = p.Location.Remote
	}
	if p.Salary != nil {
		out["salary_min"] = p.Salary.Min
		out["salary_max"] = p.Salary.Max
		out["currency"] = p.Salary.Currency
	}
	if p.Preferences != nil {
		out["employment_type"] = p.Preferences.EmploymentType
		out["work_style"] = p.Preferences.WorkStyle
	}
	return out
}

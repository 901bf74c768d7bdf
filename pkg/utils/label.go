package utils

import "strings"

// Label 是匹配链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由业务自定义；matchkit 只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // feature / filter / score / experiment / postprocess ...
}

// Trail 返回 Value 的累积历史（合并过的各段，先入在前）。
func (l Label) Trail() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

// MergeLabel 用于合并同名 Label，遵循“保留历史、可追踪”的默认策略：
// Value 以 '|' 累积，Source 以 ',' 累积。同一来源重复写入相同值
// 不再累积（重试/节点重入不应把标签刷长）。
//
// 如果你需要更复杂的优先级/覆盖规则，可以在上层封装自己的 merge 策略。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}
	if lastSegment(existing.Value, "|") == incoming.Value &&
		lastSegment(existing.Source, ",") == incoming.Source {
		return existing
	}

	return Label{
		Value:  existing.Value + "|" + incoming.Value,
		Source: joinSegment(existing.Source, incoming.Source, ","),
	}
}

func lastSegment(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

func joinSegment(a, b, sep string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + sep + b
	}
}

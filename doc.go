// Package matchkit 是一个职位匹配智能核心（Matching Kit）。
//
// 设计要点：
// - Pipeline-first: 匹配逻辑通过 Node 串联（Filter → Feature → Score → PostProcess）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 三大能力: 特征抽取（feature）、模型训练（trainer）、A/B 实验（abtest）
package matchkit

import "github.com/rushteam/matchkit/pipeline"

// 轻量 facade：便于用户直接 import "matchkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFeature     = pipeline.KindFeature
	KindFilter      = pipeline.KindFilter
	KindScore       = pipeline.KindScore
	KindPostProcess = pipeline.KindPostProcess
)

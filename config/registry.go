// Package config 提供配置驱动的 Pipeline 组装：内建 Node 的注册表与工厂。
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/matchkit/pipeline"
)

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 Node 配置构建 Node。
// 各组件调用 Register(typeName, builder) 即可被配置驱动。
type NodeBuilder = pipeline.NodeBuilder

// registry 是进程级的 Node 构建器注册表。
type registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

var defaultRegistry = &registry{builders: make(map[string]NodeBuilder)}

func (r *registry) register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[typeName] = builder
}

func (r *registry) types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (r *registry) factory() *pipeline.NodeFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range r.builders {
		f.Register(typeName, builder)
	}
	return f
}

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置驱动使用。
func Register(typeName string, builder NodeBuilder) {
	defaultRegistry.register(typeName, builder)
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	return defaultRegistry.types()
}

// DefaultFactory 返回基于当前注册表构建的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func DefaultFactory() *pipeline.NodeFactory {
	return defaultRegistry.factory()
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；
// 若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	factory := defaultRegistry.factory()
	for _, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			continue
		}
		if !factory.Supports(nc.Type) {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, SupportedTypes())
		}
	}
	return nil
}

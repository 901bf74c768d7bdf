package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/matchkit/pkg/conv"
)

// Config 是 Pipeline 的配置结构（支持 YAML/JSON）。
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	} `yaml:"pipeline" json:"pipeline"`
}

// NodeConfig 是单个 Node 的配置。构建器通过类型化取值方法读取配置，
// 不直接摸裸 map；类型不符一律回退默认值而不是 panic。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"` // match.feature / match.eligibility / match.score 等
	Config map[string]any `yaml:"config" json:"config"`
}

// String 取字符串配置项，缺失或类型不符时返回 def。
func (nc NodeConfig) String(key, def string) string {
	return conv.ConfigGet(nc.Config, key, def)
}

// Bool 取布尔配置项，缺失或类型不符时返回 def。
func (nc NodeConfig) Bool(key string, def bool) bool {
	return conv.ConfigGet(nc.Config, key, def)
}

// Float64 取数值配置项，整型自动放宽为 float64。
func (nc NodeConfig) Float64(key string, def float64) float64 {
	return conv.ConfigGetFloat64(nc.Config, key, def)
}

// Strings 取字符串列表配置项，非列表或列表为空时返回 nil。
func (nc NodeConfig) Strings(key string) []string {
	return conv.SliceAnyToString(nc.Config[key])
}

// Floats 取数值列表配置项，非列表或列表为空时返回 nil。
func (nc NodeConfig) Floats(key string) []float64 {
	return conv.SliceAnyToFloat64(nc.Config[key])
}

// LoadFromYAML 从 YAML 文件加载 Pipeline 配置。
func LoadFromYAML(path string) (*Config, error) {
	return loadConfig(path, yaml.Unmarshal)
}

// LoadFromJSON 从 JSON 文件加载 Pipeline 配置。
func LoadFromJSON(path string) (*Config, error) {
	return loadConfig(path, json.Unmarshal)
}

func loadConfig(path string, unmarshal func([]byte, any) error) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var cfg Config
	if err := unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// BuildPipeline 根据配置构建 Pipeline（需要 NodeFactory 注册 Node 构建器）。
// factory 在独立的 config 包中注册内建 Node，避免循环依赖。
func (c *Config) BuildPipeline(factory *NodeFactory) (*Pipeline, error) {
	nodes := make([]Node, 0, len(c.Pipeline.Nodes))
	for _, nc := range c.Pipeline.Nodes {
		node, err := factory.Build(nc)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return &Pipeline{Nodes: nodes}, nil
}

// NodeBuilder 根据配置构建一个 Node。
type NodeBuilder func(NodeConfig) (Node, error)

// NodeFactory 用于根据配置构建 Node 实例。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{
		builders: make(map[string]NodeBuilder),
	}
}

// Register 注册 Node 构建器。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Supports 返回指定类型是否已注册构建器。
func (f *NodeFactory) Supports(nodeType string) bool {
	_, ok := f.builders[nodeType]
	return ok
}

// Build 根据 Node 配置构建实例。
func (f *NodeFactory) Build(nc NodeConfig) (Node, error) {
	builder, ok := f.builders[nc.Type]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", nc.Type)
	}
	return builder(nc)
}

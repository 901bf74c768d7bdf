package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/matchkit/pipeline"
)

const samplePipelineYAML = `
pipeline:
  name: candidate-ranking
  nodes:
    - type: match.eligibility
      config:
        rules:
          - '"go" in candidate.skills'
    - type: match.feature
      config:
        renormalize: true
    - type: match.score
      config:
        name: baseline
        bias: 0.1
        weights: [0.5, -0.25, 0.0]
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}
	return path
}

func TestBuildPipelineFromYAML(t *testing.T) {
	cfg, err := pipeline.LoadFromYAML(writeTempYAML(t, samplePipelineYAML))
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	if cfg.Pipeline.Name != "candidate-ranking" {
		t.Errorf("pipeline name = %q, want candidate-ranking", cfg.Pipeline.Name)
	}

	if err := ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig() error = %v", err)
	}

	p, err := cfg.BuildPipeline(DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 3 {
		t.Fatalf("pipeline has %d nodes, want 3", len(p.Nodes))
	}

	wantKinds := []pipeline.Kind{pipeline.KindFilter, pipeline.KindFeature, pipeline.KindScore}
	for i, node := range p.Nodes {
		if node.Kind() != wantKinds[i] {
			t.Errorf("node[%d] kind = %q, want %q", i, node.Kind(), wantKinds[i])
		}
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	cfg, err := pipeline.LoadFromYAML(writeTempYAML(t, `
pipeline:
  name: bad
  nodes:
    - type: match.unknown
`))
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	if err := ValidatePipelineConfig(cfg); err == nil {
		t.Error("ValidatePipelineConfig() error = nil, want unsupported type error")
	}
}

func TestSupportedTypes(t *testing.T) {
	types := SupportedTypes()
	want := map[string]bool{
		"match.feature":     false,
		"match.eligibility": false,
		"match.score":       false,
	}
	for _, typ := range types {
		if _, ok := want[typ]; ok {
			want[typ] = true
		}
	}
	for typ, seen := range want {
		if !seen {
			t.Errorf("builtin type %q not registered", typ)
		}
	}
}

func TestBuilderValidation(t *testing.T) {
	if _, err := BuildEligibilityNode(pipeline.NodeConfig{Type: "match.eligibility"}); err == nil {
		t.Error("BuildEligibilityNode() without rules error = nil, want error")
	}
	nc := pipeline.NodeConfig{Type: "match.score", Config: map[string]any{"bias": 0.5}}
	if _, err := BuildScoreNode(nc); err == nil {
		t.Error("BuildScoreNode() without weights error = nil, want error")
	}
}

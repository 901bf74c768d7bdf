package match

import (
	"context"
	"testing"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/feature"
	"github.com/rushteam/matchkit/pipeline"
)

func jobProfile() *core.Profile {
	return &core.Profile{
		ID:    "job-1",
		Type:  core.ProfileTypeJob,
		Title: "Senior Go Engineer",
		Skills: []core.Skill{
			{Name: "Go", Level: 4},
			{Name: "Kubernetes", Level: 3},
		},
		Location: &core.Location{Country: "United States", City: "Austin"},
	}
}

func candidateProfile(id string, skills ...string) *core.Profile {
	p := &core.Profile{
		ID:    id,
		Type:  core.ProfileTypeCandidate,
		Title: "Software Engineer",
	}
	for _, s := range skills {
		p.Skills = append(p.Skills, core.Skill{Name: s, Level: 3})
	}
	return p
}

// scriptedModel 用特征和做稳定区分的打分桩。
type scriptedModel struct{}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Predict(features []float64) (float64, error) {
	sum := 0.0
	for _, v := range features {
		sum += v
	}
	return sum / float64(len(features)+1), nil
}

func TestFeatureNodeExtractsPairs(t *testing.T) {
	ext := feature.NewExtractor()
	node := &FeatureNode{Extractor: ext}
	mctx := &core.MatchContext{UserID: "u1", Job: jobProfile()}

	candidates := []*core.MatchCandidate{
		core.NewMatchCandidate(candidateProfile("c1", "Go")),
		core.NewMatchCandidate(candidateProfile("c2", "Python")),
	}

	out, err := node.Process(context.Background(), mctx, candidates)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for _, mc := range out {
		if mc.Features == nil {
			t.Fatalf("candidate %s has no features", mc.Profile.ID)
		}
		if mc.Features.Len() != ext.PairDim() {
			t.Errorf("feature dim = %d, want %d", mc.Features.Len(), ext.PairDim())
		}
		if _, ok := mc.Labels["pair_features"]; !ok {
			t.Errorf("candidate %s missing pair_features label", mc.Profile.ID)
		}
	}
}

func TestFeatureNodeSkipsExisting(t *testing.T) {
	ext := feature.NewExtractor()
	node := &FeatureNode{Extractor: ext}
	mctx := &core.MatchContext{Job: jobProfile()}

	pre := &core.FeatureVector{Values: []float64{1, 2, 3}}
	mc := core.NewMatchCandidate(candidateProfile("c1", "Go"))
	mc.Features = pre

	out, err := node.Process(context.Background(), mctx, []*core.MatchCandidate{mc})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if out[0].Features != pre {
		t.Error("node re-extracted features for a candidate that already had them")
	}
}

func TestEligibilityNodeFilters(t *testing.T) {
	node := &EligibilityNode{Rules: []string{`"go" in candidate.skills`}}
	mctx := &core.MatchContext{Job: jobProfile()}

	candidates := []*core.MatchCandidate{
		core.NewMatchCandidate(candidateProfile("c1", "Go", "Docker")),
		core.NewMatchCandidate(candidateProfile("c2", "Python")),
		core.NewMatchCandidate(candidateProfile("c3", "go")),
	}

	out, err := node.Process(context.Background(), mctx, candidates)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("kept %d candidates, want 2", len(out))
	}
	if out[0].Profile.ID != "c1" || out[1].Profile.ID != "c3" {
		t.Errorf("kept = [%s %s], want [c1 c3]", out[0].Profile.ID, out[1].Profile.ID)
	}
	if _, ok := out[0].Labels["eligibility"]; !ok {
		t.Error("kept candidate missing eligibility label")
	}
}

func TestEligibilityNodeInvalidRule(t *testing.T) {
	node := &EligibilityNode{Rules: []string{`this is not cel ((`}}
	candidates := []*core.MatchCandidate{core.NewMatchCandidate(candidateProfile("c1", "Go"))}

	if _, err := node.Process(context.Background(), &core.MatchContext{}, candidates); err == nil {
		t.Error("Process() with invalid rule error = nil, want error")
	}
}

func TestScoreNodeSortsDescending(t *testing.T) {
	node := &ScoreNode{Model: &scriptedModel{}}
	mctx := &core.MatchContext{Job: jobProfile()}

	// c1 与职位技能重合更多，特征和更大
	ext := feature.NewExtractor()
	featNode := &FeatureNode{Extractor: ext}
	candidates := []*core.MatchCandidate{
		core.NewMatchCandidate(candidateProfile("c2", "Python")),
		core.NewMatchCandidate(candidateProfile("c1", "Go", "Kubernetes")),
	}
	candidates, err := featNode.Process(context.Background(), mctx, candidates)
	if err != nil {
		t.Fatalf("feature Process() error = %v", err)
	}

	out, err := node.Process(context.Background(), mctx, candidates)
	if err != nil {
		t.Fatalf("score Process() error = %v", err)
	}
	if out[0].Profile.ID != "c1" {
		t.Errorf("top candidate = %s, want c1", out[0].Profile.ID)
	}
	if out[0].Score < out[1].Score {
		t.Errorf("scores not descending: %v < %v", out[0].Score, out[1].Score)
	}
	if lbl, ok := out[0].Labels["score_model"]; !ok || lbl.Value != "scripted" {
		t.Errorf("score_model label = %+v, want scripted", lbl)
	}
}

func TestScoreNodeRequiresFeatures(t *testing.T) {
	node := &ScoreNode{Model: &scriptedModel{}}
	candidates := []*core.MatchCandidate{core.NewMatchCandidate(candidateProfile("c1", "Go"))}

	if _, err := node.Process(context.Background(), &core.MatchContext{}, candidates); !core.IsValidationError(err) {
		t.Errorf("Process() without features error = %v, want validation error", err)
	}
}

func TestServiceEndToEnd(t *testing.T) {
	ext := feature.NewExtractor()
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&EligibilityNode{Rules: []string{`"go" in candidate.skills`}},
		&FeatureNode{Extractor: ext},
		&ScoreNode{Model: &scriptedModel{}},
	}}
	svc := NewService(p)

	mctx := &core.MatchContext{UserID: "u1", Job: jobProfile()}
	profiles := []*core.Profile{
		candidateProfile("c1", "Go", "Kubernetes"),
		candidateProfile("c2", "Python"),
		candidateProfile("c3", "Go"),
	}

	out, err := svc.Match(context.Background(), mctx, profiles)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Match() returned %d candidates, want 2 after filtering", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Errorf("results not sorted at index %d", i)
		}
	}
}

func TestServiceWithoutPipeline(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Match(context.Background(), nil, nil); err == nil {
		t.Error("Match() without pipeline error = nil, want config error")
	}
}

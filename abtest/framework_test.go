package abtest

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/feature"
)

var evalNow = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

// testArtifact 构造一个维度匹配配对向量的零权重线性模型（恒定打分 0.5）。
func testArtifact(id string) *core.MLModel {
	dim := feature.NewExtractor().PairDim()
	return &core.MLModel{
		ID:        id,
		Name:      "test-" + id,
		Algorithm: core.AlgorithmLogisticRegression,
		Parameters: core.ModelParameters{
			Weights: make([]float64, dim),
		},
		Metadata: core.ModelMetadata{FeatureDim: dim},
	}
}

func newTestFramework(t *testing.T, opts ...FrameworkOption) *Framework {
	t.Helper()
	f := NewFramework(append([]FrameworkOption{WithClock(func() time.Time { return evalNow })}, opts...)...)
	if err := f.RegisterModel(testArtifact("model-a")); err != nil {
		t.Fatalf("RegisterModel() error = %v", err)
	}
	if err := f.RegisterModel(testArtifact("model-b")); err != nil {
		t.Fatalf("RegisterModel() error = %v", err)
	}
	return f
}

func newRunningTest(t *testing.T, f *Framework, split float64) *core.ABTest {
	t.Helper()
	test := &core.ABTest{
		Name:             "scoring-v2",
		ControlModelID:   "model-a",
		TreatmentModelID: "model-b",
		TrafficSplit:     split,
	}
	if err := f.CreateTest(context.Background(), test); err != nil {
		t.Fatalf("CreateTest() error = %v", err)
	}
	if err := f.StartTest(context.Background(), test.ID); err != nil {
		t.Fatalf("StartTest() error = %v", err)
	}
	return test
}

func pairProfiles() (*core.Profile, *core.Profile) {
	c := core.NewProfile("cand", core.ProfileTypeCandidate)
	j := core.NewProfile("job", core.ProfileTypeJob)
	return c, j
}

func TestCreateTestValidation(t *testing.T) {
	f := newTestFramework(t)
	tests := []struct {
		name string
		test *core.ABTest
	}{
		{"missing model ids", &core.ABTest{TrafficSplit: 0.5}},
		{"same model both sides", &core.ABTest{ControlModelID: "m", TreatmentModelID: "m", TrafficSplit: 0.5}},
		{"split below zero", &core.ABTest{ControlModelID: "a", TreatmentModelID: "b", TrafficSplit: -0.1}},
		{"split above one", &core.ABTest{ControlModelID: "a", TreatmentModelID: "b", TrafficSplit: 1.1}},
		{"bad confidence", &core.ABTest{ControlModelID: "a", TreatmentModelID: "b", TrafficSplit: 0.5,
			Config: core.TestConfig{ConfidenceLevel: 0.4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.CreateTest(context.Background(), tt.test); !core.IsValidationError(err) {
				t.Errorf("CreateTest() error = %v, want validation error", err)
			}
		})
	}
}

func TestLifecycleTimestampsSetOnce(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0.5)

	if test.StartedAt == nil {
		t.Fatal("StartedAt not set on start")
	}
	if err := f.StartTest(context.Background(), test.ID); err == nil {
		t.Fatal("second StartTest() succeeded, want invalid state error")
	}

	if err := f.StopTest(context.Background(), test.ID, "manual"); err != nil {
		t.Fatalf("StopTest() error = %v", err)
	}
	if test.EndedAt == nil {
		t.Fatal("EndedAt not set on stop")
	}
	if err := f.StopTest(context.Background(), test.ID, "again"); err == nil {
		t.Fatal("second StopTest() succeeded, want invalid state error")
	}
	if test.StopReason != "manual" {
		t.Errorf("stop reason = %q, want %q", test.StopReason, "manual")
	}
}

func TestPredictAllControlAtZeroSplit(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0)
	candidate, job := pairProfiles()

	for i := 0; i < 50; i++ {
		pred, err := f.Predict(context.Background(), test.ID, fmt.Sprintf("user-%d", i), candidate, job)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if pred.Group != core.GroupControl {
			t.Fatalf("user-%d assigned to %q, want control at split 0", i, pred.Group)
		}
		if pred.ModelID != "model-a" {
			t.Fatalf("user-%d scored by %q, want control model", i, pred.ModelID)
		}
	}
	if got := len(f.Participants(test.ID)); got != 50 {
		t.Errorf("participants = %d, want 50", got)
	}
}

func TestStickyAssignment(t *testing.T) {
	// 固定 RNG 序列：首次抽样落 treatment，之后的值都会落 control，
	// 粘性分桶必须忽略后续抽样
	draws := []float64{0.1, 0.9, 0.9, 0.9}
	i := 0
	f := newTestFramework(t, WithRNG(func() float64 {
		v := draws[i%len(draws)]
		i++
		return v
	}))
	test := newRunningTest(t, f, 0.5)
	candidate, job := pairProfiles()

	first, err := f.Predict(context.Background(), test.ID, "user-1", candidate, job)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if first.Group != core.GroupTreatment {
		t.Fatalf("first assignment = %q, want treatment with draw 0.1 < 0.5", first.Group)
	}

	for n := 0; n < 10; n++ {
		pred, err := f.Predict(context.Background(), test.ID, "user-1", candidate, job)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if pred.Group != first.Group {
			t.Fatalf("assignment changed from %q to %q on repeat predict", first.Group, pred.Group)
		}
	}
}

func TestPredictRequiresRunning(t *testing.T) {
	f := newTestFramework(t)
	test := &core.ABTest{ControlModelID: "model-a", TreatmentModelID: "model-b", TrafficSplit: 0.5}
	if err := f.CreateTest(context.Background(), test); err != nil {
		t.Fatalf("CreateTest() error = %v", err)
	}
	candidate, job := pairProfiles()

	if _, err := f.Predict(context.Background(), test.ID, "u", candidate, job); err == nil {
		t.Fatal("Predict() on created test succeeded, want invalid state error")
	}
	if _, err := f.Predict(context.Background(), "missing", "u", candidate, job); err != core.ErrTestNotFound {
		t.Fatalf("Predict() on unknown test error = %v, want ErrTestNotFound", err)
	}
}

func TestAudienceRouting(t *testing.T) {
	f := newTestFramework(t, WithRNG(func() float64 { return 0 })) // 受众内全部进 treatment
	test := &core.ABTest{
		ControlModelID:   "model-a",
		TreatmentModelID: "model-b",
		TrafficSplit:     1,
		Audience:         `user_id.startsWith("beta_")`,
	}
	if err := f.CreateTest(context.Background(), test); err != nil {
		t.Fatalf("CreateTest() error = %v", err)
	}
	if err := f.StartTest(context.Background(), test.ID); err != nil {
		t.Fatalf("StartTest() error = %v", err)
	}
	candidate, job := pairProfiles()

	in, err := f.Predict(context.Background(), test.ID, "beta_alice", candidate, job)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if in.Group != core.GroupTreatment || in.TestID != test.ID {
		t.Errorf("audience member got group %q test %q, want treatment enrollment", in.Group, in.TestID)
	}

	out, err := f.Predict(context.Background(), test.ID, "carol", candidate, job)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if out.TestID != "" || out.Group != "" {
		t.Errorf("excluded user enrolled: group %q test %q", out.Group, out.TestID)
	}
	if out.ModelID != "model-a" {
		t.Errorf("excluded user scored by %q, want control model", out.ModelID)
	}
	if got := len(f.Participants(test.ID)); got != 1 {
		t.Errorf("participants = %d, want 1 (excluded user not recorded)", got)
	}
}

func TestRecordConversionRequiresParticipant(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0)

	err := f.RecordConversion(context.Background(), test.ID, "stranger", "apply", 1)
	if err != core.ErrParticipantNotFound {
		t.Fatalf("RecordConversion() error = %v, want ErrParticipantNotFound", err)
	}

	candidate, job := pairProfiles()
	if _, err := f.Predict(context.Background(), test.ID, "u1", candidate, job); err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if err := f.RecordConversion(context.Background(), test.ID, "u1", "apply", 1); err != nil {
		t.Fatalf("RecordConversion() error = %v", err)
	}
}

// seedStats 直接注入统计数据（白盒），模拟大样本实验。
func seedStats(f *Framework, testID string, group core.Group, participants, conversions int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < participants; i++ {
		uid := fmt.Sprintf("%s-%d", group, i)
		f.participants[testID][uid] = &core.Participant{
			TestID: testID, UserID: uid, Group: group, AssignedAt: evalNow,
		}
		if i < conversions {
			f.conversions[testID] = append(f.conversions[testID], &core.Conversion{
				TestID: testID, UserID: uid, Group: group, Type: "apply", At: evalNow,
			})
		}
	}
}

func TestResultsSignificantDifference(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0.5)
	test.Config.MinSampleSize = 500
	seedStats(f, test.ID, core.GroupControl, 1000, 100)
	seedStats(f, test.ID, core.GroupTreatment, 1000, 150)

	results, err := f.GetTestResults(context.Background(), test.ID)
	if err != nil {
		t.Fatalf("GetTestResults() error = %v", err)
	}
	if !results.MinSampleSizeMet {
		t.Error("min sample size not met with 1000 per group")
	}
	if !results.Significant {
		t.Errorf("10%% vs 15%% at n=1000 not significant: z=%v p=%v", results.ZScore, results.PValue)
	}
	if results.RecommendedWinner != core.WinnerTreatment {
		t.Errorf("winner = %q, want treatment", results.RecommendedWinner)
	}
	if math.Abs(results.RateDifference-0.05) > 1e-9 {
		t.Errorf("rate difference = %v, want 0.05", results.RateDifference)
	}
	if !(results.ConfidenceLow > 0) {
		t.Errorf("CI low = %v, want > 0 for clear treatment win", results.ConfidenceLow)
	}

	// 幂等：同一数据重复评估结论一致
	again, err := f.GetTestResults(context.Background(), test.ID)
	if err != nil {
		t.Fatalf("GetTestResults() error = %v", err)
	}
	if again.ZScore != results.ZScore || again.PValue != results.PValue ||
		again.RecommendedWinner != results.RecommendedWinner {
		t.Error("repeated evaluation with no new data changed the conclusion")
	}
}

func TestResultsInconclusiveBelowMinSample(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0.5)
	test.Config.MinSampleSize = 1000
	seedStats(f, test.ID, core.GroupControl, 50, 5)
	seedStats(f, test.ID, core.GroupTreatment, 50, 20)

	results, err := f.GetTestResults(context.Background(), test.ID)
	if err != nil {
		t.Fatalf("GetTestResults() error = %v", err)
	}
	if results.MinSampleSizeMet {
		t.Error("min sample size met with 50 per group, want not met")
	}
	if results.RecommendedWinner != core.WinnerInconclusive {
		t.Errorf("winner = %q, want inconclusive below min sample", results.RecommendedWinner)
	}
}

func TestZScoreMonotonicity(t *testing.T) {
	control := core.GroupStats{Participants: 1000, Conversions: 100, Rate: 0.1}
	prev := math.Inf(-1)
	for _, conv := range []int64{100, 120, 140, 160, 180} {
		treatment := core.GroupStats{Participants: 1000, Conversions: conv, Rate: float64(conv) / 1000}
		z, _ := twoProportionTest(control, treatment)
		if z < prev {
			t.Fatalf("z-score decreased from %v to %v as treatment rate rose", prev, z)
		}
		prev = z
	}
}

func TestZCritical(t *testing.T) {
	if got := zCritical(0.95); math.Abs(got-1.959964) > 1e-3 {
		t.Errorf("zCritical(0.95) = %v, want ~1.96", got)
	}
	if got := zCritical(0.99); math.Abs(got-2.575829) > 1e-3 {
		t.Errorf("zCritical(0.99) = %v, want ~2.576", got)
	}
}

func TestNormalCDF(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 0.5},
		{1.96, 0.975},
		{-1.96, 0.025},
	}
	for _, tt := range tests {
		if got := NormalCDF(tt.x); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("NormalCDF(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

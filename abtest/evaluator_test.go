package abtest

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/matchkit/core"
)

func TestEvaluatorMaxDurationStop(t *testing.T) {
	clock := evalNow
	f := newTestFramework(t, WithClock(func() time.Time { return clock }))
	test := newRunningTest(t, f, 0.5)
	test.Config.MaxTestDuration = 24 * time.Hour

	ev := NewEvaluator(f, time.Minute)

	// 未超时：不动作
	ev.EvaluateAll(context.Background())
	if test.Status != core.TestStatusRunning {
		t.Fatalf("status = %q before deadline, want running", test.Status)
	}

	clock = clock.Add(25 * time.Hour)
	ev.EvaluateAll(context.Background())
	if test.Status != core.TestStatusStopped {
		t.Fatalf("status = %q after deadline, want stopped", test.Status)
	}
	if test.StopReason != StopReasonMaxDuration {
		t.Errorf("stop reason = %q, want %q", test.StopReason, StopReasonMaxDuration)
	}

	// 幂等：已停止的实验再评估不报错、不改动
	ended := *test.EndedAt
	ev.EvaluateAll(context.Background())
	if !test.EndedAt.Equal(ended) {
		t.Error("EndedAt changed on repeated evaluation")
	}
}

func TestEvaluatorAutoWinnerSelection(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0.5)
	test.Config.MinSampleSize = 500
	test.Config.EnableAutoWinnerSelection = true
	test.Config.WinnerSelectionThreshold = 0.95
	seedStats(f, test.ID, core.GroupControl, 1000, 100)
	seedStats(f, test.ID, core.GroupTreatment, 1000, 180)

	NewEvaluator(f, time.Minute).EvaluateAll(context.Background())
	if test.Status != core.TestStatusStopped {
		t.Fatalf("status = %q with clear winner, want stopped", test.Status)
	}
	if test.StopReason != StopReasonWinnerSelected {
		t.Errorf("stop reason = %q, want %q", test.StopReason, StopReasonWinnerSelected)
	}
}

func TestEvaluatorNoActionBelowMinSample(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0.5)
	test.Config.MinSampleSize = 10000
	test.Config.EnableAutoWinnerSelection = true
	test.Config.WinnerSelectionThreshold = 0.9
	seedStats(f, test.ID, core.GroupControl, 100, 10)
	seedStats(f, test.ID, core.GroupTreatment, 100, 40)

	NewEvaluator(f, time.Minute).EvaluateAll(context.Background())
	if test.Status != core.TestStatusRunning {
		t.Fatalf("status = %q below min sample, want still running", test.Status)
	}
}

func TestEvaluatorWithoutAutoSelection(t *testing.T) {
	f := newTestFramework(t)
	test := newRunningTest(t, f, 0.5)
	test.Config.MinSampleSize = 500
	test.Config.EnableAutoWinnerSelection = false
	seedStats(f, test.ID, core.GroupControl, 1000, 100)
	seedStats(f, test.ID, core.GroupTreatment, 1000, 180)

	NewEvaluator(f, time.Minute).EvaluateAll(context.Background())
	if test.Status != core.TestStatusRunning {
		t.Fatalf("status = %q with auto selection disabled, want running", test.Status)
	}
}

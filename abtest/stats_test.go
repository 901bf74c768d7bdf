package abtest

import (
	"testing"

	"github.com/rushteam/matchkit/core"
)

func TestTwoProportionLargeSamples(t *testing.T) {
	control := core.GroupStats{Participants: 2_000_000, Conversions: 1_000_000, Rate: 0.5}
	treatment := core.GroupStats{Participants: 2_000_000, Conversions: 1_100_000, Rate: 0.55}

	z, p := twoProportionTest(control, treatment)
	if z <= 0 {
		t.Fatalf("z = %v, want positive (treatment rate higher)", z)
	}
	// 0.5 vs 0.55 在两百万样本下极显著
	if p >= 1-0.95 {
		t.Errorf("p = %v, want < 0.05", p)
	}

	lo, hi := confidenceInterval(control, treatment, 0.95)
	if lo <= 0 || hi <= lo {
		t.Errorf("confidence interval = [%v, %v], want strictly positive", lo, hi)
	}
}

func TestTwoProportionDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		control   core.GroupStats
		treatment core.GroupStats
	}{
		{"empty control", core.GroupStats{}, core.GroupStats{Participants: 100, Conversions: 10}},
		{"all converted", core.GroupStats{Participants: 10, Conversions: 10, Rate: 1}, core.GroupStats{Participants: 10, Conversions: 10, Rate: 1}},
		{"none converted", core.GroupStats{Participants: 10}, core.GroupStats{Participants: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, p := twoProportionTest(tt.control, tt.treatment)
			if z != 0 || p != 1 {
				t.Errorf("twoProportionTest() = %v, %v; want 0, 1", z, p)
			}
		})
	}
}

func TestGroupStatsDeduplicatesConversions(t *testing.T) {
	participants := []*core.Participant{
		{UserID: "u1", Group: core.GroupControl},
		{UserID: "u2", Group: core.GroupControl},
		{UserID: "u3", Group: core.GroupTreatment},
	}
	conversions := []*core.Conversion{
		{UserID: "u1", Group: core.GroupControl},
		{UserID: "u1", Group: core.GroupControl}, // 重复转化只计一次
		{UserID: "u3", Group: core.GroupTreatment},
	}

	stats := groupStats(participants, conversions, core.GroupControl)
	if stats.Participants != 2 || stats.Conversions != 1 {
		t.Errorf("control stats = %+v, want 2 participants 1 conversion", stats)
	}
	if stats.Rate != 0.5 {
		t.Errorf("control rate = %v, want 0.5", stats.Rate)
	}
}

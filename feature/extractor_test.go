package feature

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/matchkit/core"
)

var testNow = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func sampleCandidate() *core.Profile {
	start := testNow.AddDate(-3, 0, 0)
	p := core.NewProfile("cand-1", core.ProfileTypeCandidate)
	p.Title = "Frontend Developer"
	p.Skills = []core.Skill{
		{Name: "JavaScript", Level: 4},
		{Name: "react", Level: 3},
	}
	p.Experience = []core.Experience{
		{Title: "Developer", Company: "Acme", Industry: "software", Start: start},
	}
	p.Education = []core.Education{
		{Degree: "Bachelor of Science", Field: "Computer Science", School: "State"},
	}
	p.Location = &core.Location{Country: "United States", City: "Austin"}
	return p
}

func sampleJob() *core.Profile {
	p := core.NewProfile("job-1", core.ProfileTypeJob)
	p.Title = "Frontend Developer"
	p.Skills = []core.Skill{
		{Name: "javascript", Level: 3},
		{Name: "react", Level: 3},
	}
	p.Location = &core.Location{Country: "United States", City: "Austin"}
	p.Salary = &core.SalaryRange{Min: 90000, Max: 120000, Currency: "USD"}
	return p
}

func skillIndex(t *testing.T, name string) int {
	t.Helper()
	for i, s := range commonSkills {
		if s == name {
			return i
		}
	}
	t.Fatalf("skill %q not in vocabulary", name)
	return -1
}

func TestExtractProfileDeterminism(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	p := sampleCandidate()

	v1, err := e.ExtractProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}
	v2, err := e.ExtractProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}

	if v1.Len() != v2.Len() {
		t.Fatalf("length mismatch: %d vs %d", v1.Len(), v2.Len())
	}
	for i := range v1.Values {
		if v1.Values[i] != v2.Values[i] {
			t.Errorf("values[%d] = %v vs %v, want identical", i, v1.Values[i], v2.Values[i])
		}
	}
}

func TestExtractProfileFixedWidth(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	full := sampleCandidate()

	sparse := core.NewProfile("cand-2", core.ProfileTypeCandidate)

	vFull, err := e.ExtractProfile(context.Background(), full)
	if err != nil {
		t.Fatalf("ExtractProfile(full) error = %v", err)
	}
	vSparse, err := e.ExtractProfile(context.Background(), sparse)
	if err != nil {
		t.Fatalf("ExtractProfile(sparse) error = %v", err)
	}

	if vFull.Len() != vSparse.Len() {
		t.Fatalf("vector length varies with missing fields: %d vs %d", vFull.Len(), vSparse.Len())
	}
	if vFull.Len() != e.ProfileDim() {
		t.Fatalf("vector length = %d, want ProfileDim() = %d", vFull.Len(), e.ProfileDim())
	}

	// missing location must be a zero-filled block of the declared width
	loc := vSparse.Category(core.CategoryLocation)
	if len(loc) != widthLocation {
		t.Fatalf("location width = %d, want %d", len(loc), widthLocation)
	}
	for i, v := range loc {
		if v != 0 {
			t.Errorf("location[%d] = %v, want 0 for missing location", i, v)
		}
	}

	// spans must line up at the same offsets for both profiles
	for i, s := range vFull.Spans {
		if vSparse.Spans[i] != s {
			t.Errorf("span[%d] = %+v vs %+v, want identical", i, vSparse.Spans[i], s)
		}
	}
}

func TestExtractProfileScenario(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	p := sampleCandidate()

	vec, err := e.ExtractProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}

	skills := vec.Category(core.CategorySkills)
	if got := skills[skillIndex(t, "javascript")]; got != 1 {
		t.Errorf("javascript indicator = %v, want 1", got)
	}
	if got := skills[skillIndex(t, "react")]; got != 1 {
		t.Errorf("react indicator = %v, want 1", got)
	}
	if got := skills[skillIndex(t, "python")]; got != 0 {
		t.Errorf("python indicator = %v, want 0", got)
	}

	// 3 years of experience lands in the junior bucket
	exp := vec.Category(core.CategoryExperience)
	if got := exp[1]; got != 1 {
		t.Errorf("junior one-hot = %v, want 1", got)
	}
	for i := range experienceLevels {
		if i != 1 && exp[i] != 0 {
			t.Errorf("level one-hot[%d] = %v, want 0", i, exp[i])
		}
	}

	edu := vec.Category(core.CategoryEducation)
	if got := edu[3]; got != 1 {
		t.Errorf("bachelor one-hot = %v, want 1", got)
	}

	loc := vec.Category(core.CategoryLocation)
	usIdx := -1
	for i, c := range commonCountries {
		if c == "united states" {
			usIdx = i
		}
	}
	if got := loc[usIdx]; got != 1 {
		t.Errorf("US country indicator = %v, want 1", got)
	}
}

func TestExtractProfileNil(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractProfile(context.Background(), nil); !core.IsValidationError(err) {
		t.Fatalf("ExtractProfile(nil) error = %v, want validation error", err)
	}
}

func TestExtractPairLayout(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	vec, err := e.ExtractPair(context.Background(), sampleCandidate(), sampleJob())
	if err != nil {
		t.Fatalf("ExtractPair() error = %v", err)
	}

	if vec.Len() != e.PairDim() {
		t.Fatalf("pair length = %d, want PairDim() = %d", vec.Len(), e.PairDim())
	}

	sim := vec.Category(core.CategorySimilarity)
	if len(sim) != widthSimilarity {
		t.Fatalf("similarity width = %d, want %d", len(sim), widthSimilarity)
	}
	for i, v := range sim {
		if v < 0 || v > 1 {
			t.Errorf("similarity[%d] = %v, want in [0,1]", i, v)
		}
	}

	inter := vec.Category(core.CategoryInteraction)
	if len(inter) != 3*e.ProfileDim() {
		t.Fatalf("interaction width = %d, want %d", len(inter), 3*e.ProfileDim())
	}

	// no embedding service configured, so no text-similarity block
	if got := vec.Category(core.CategoryTextSimilarity); got != nil {
		t.Fatalf("text similarity block present without embedding service")
	}
}

func TestRenormalizeIdempotent(t *testing.T) {
	values := []float64{3, 1, 2, 5, 4}
	Renormalize(values)

	if values[1] != 0 || values[3] != 1 {
		t.Fatalf("Renormalize() = %v, want min 0 and max 1", values)
	}

	again := make([]float64, len(values))
	copy(again, values)
	Renormalize(again)
	for i := range values {
		if values[i] != again[i] {
			t.Errorf("values[%d] changed on second pass: %v vs %v", i, values[i], again[i])
		}
	}
}

func TestBatchExtractProfilesOrder(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	profiles := []*core.Profile{sampleCandidate(), sampleJob(), core.NewProfile("p3", core.ProfileTypeCandidate)}

	vecs, err := e.BatchExtractProfiles(context.Background(), profiles)
	if err != nil {
		t.Fatalf("BatchExtractProfiles() error = %v", err)
	}
	if len(vecs) != len(profiles) {
		t.Fatalf("got %d vectors, want %d", len(vecs), len(profiles))
	}
	for i, v := range vecs {
		if v == nil {
			t.Fatalf("vector[%d] is nil", i)
		}
		want, err := e.ExtractProfile(context.Background(), profiles[i])
		if err != nil {
			t.Fatalf("ExtractProfile() error = %v", err)
		}
		for j := range want.Values {
			if v.Values[j] != want.Values[j] {
				t.Fatalf("vector[%d][%d] = %v, want %v", i, j, v.Values[j], want.Values[j])
			}
		}
	}
}

package feature

import (
	"math"
	"testing"

	"github.com/rushteam/matchkit/core"
)

func profileWithSkills(names ...string) *core.Profile {
	p := core.NewProfile("p", core.ProfileTypeCandidate)
	for _, n := range names {
		p.Skills = append(p.Skills, core.Skill{Name: n})
	}
	return p
}

func TestSkillJaccard(t *testing.T) {
	tests := []struct {
		name      string
		candidate *core.Profile
		job       *core.Profile
		want      float64
	}{
		{
			name:      "identical sets",
			candidate: profileWithSkills("go", "sql"),
			job:       profileWithSkills("go", "sql"),
			want:      1.0,
		},
		{
			name:      "disjoint sets",
			candidate: profileWithSkills("go"),
			job:       profileWithSkills("python"),
			want:      0.0,
		},
		{
			name:      "half overlap",
			candidate: profileWithSkills("go", "sql"),
			job:       profileWithSkills("go", "redis"),
			want:      1.0 / 3.0,
		},
		{
			name:      "case and whitespace insensitive",
			candidate: profileWithSkills(" Go "),
			job:       profileWithSkills("go"),
			want:      1.0,
		},
		{
			name:      "both empty",
			candidate: profileWithSkills(),
			job:       profileWithSkills(),
			want:      1.0,
		},
		{
			name:      "one side empty",
			candidate: profileWithSkills("go"),
			job:       profileWithSkills(),
			want:      0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := skillJaccard(tt.candidate, tt.job)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("skillJaccard() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("skillJaccard() = %v, out of [0,1]", got)
			}
		})
	}
}

func TestExperienceAlignment(t *testing.T) {
	candidateWithYears := func(years int) *core.Profile {
		p := core.NewProfile("c", core.ProfileTypeCandidate)
		start := testNow.AddDate(-years, 0, 0)
		p.Experience = []core.Experience{{Title: "Engineer", Start: start}}
		return p
	}
	jobWithTitle := func(title string) *core.Profile {
		p := core.NewProfile("j", core.ProfileTypeJob)
		p.Title = title
		return p
	}

	tests := []struct {
		name      string
		candidate *core.Profile
		job       *core.Profile
		want      float64
	}{
		{"exact fit", candidateWithYears(6), jobWithTitle("Senior Engineer"), 1.0},
		{"slight surplus still ideal", candidateWithYears(8), jobWithTitle("Senior Engineer"), 1.0},
		{"underqualified but close", candidateWithYears(4), jobWithTitle("Senior Engineer"), 0.7},
		{"no requirement with experience", candidateWithYears(2), jobWithTitle("Engineer"), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := experienceAlignment(tt.candidate, tt.job, testNow)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("experienceAlignment() = %v, want %v", got, tt.want)
			}
		})
	}

	// far below requirement decays toward zero
	low := experienceAlignment(candidateWithYears(1), jobWithTitle("Principal Engineer"), testNow)
	if low >= 0.7 || low < 0 {
		t.Errorf("deep underqualification = %v, want decayed below 0.7", low)
	}
}

func TestLocationCompatibility(t *testing.T) {
	withLoc := func(city, country string, remote bool) *core.Profile {
		p := core.NewProfile("p", core.ProfileTypeCandidate)
		p.Location = &core.Location{City: city, Country: country, Remote: remote}
		return p
	}

	tests := []struct {
		name      string
		candidate *core.Profile
		job       *core.Profile
		want      float64
	}{
		{"remote job", withLoc("Austin", "United States", false), withLoc("", "Germany", true), 1.0},
		{"same city and country", withLoc("Austin", "United States", false), withLoc("Austin", "United States", false), 1.0},
		{"country only", withLoc("Austin", "United States", false), withLoc("Boston", "United States", false), 0.8},
		{"different country", withLoc("Austin", "United States", false), withLoc("Berlin", "Germany", false), 0.3},
		{"missing location", core.NewProfile("p", core.ProfileTypeCandidate), withLoc("Berlin", "Germany", false), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := locationCompatibility(tt.candidate, tt.job); got != tt.want {
				t.Errorf("locationCompatibility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSalaryAlignment(t *testing.T) {
	withSalary := func(min, max float64) *core.Profile {
		p := core.NewProfile("p", core.ProfileTypeCandidate)
		p.Salary = &core.SalaryRange{Min: min, Max: max, Currency: "USD"}
		return p
	}

	if got := salaryAlignment(withSalary(90000, 120000), withSalary(100000, 130000)); got != 1.0 {
		t.Errorf("overlapping ranges = %v, want 1.0", got)
	}
	if got := salaryAlignment(core.NewProfile("p", core.ProfileTypeCandidate), withSalary(1, 2)); got != 0.5 {
		t.Errorf("missing salary = %v, want 0.5", got)
	}

	near := salaryAlignment(withSalary(125000, 140000), withSalary(100000, 120000))
	far := salaryAlignment(withSalary(200000, 250000), withSalary(100000, 120000))
	if !(near > far) {
		t.Errorf("falloff not monotonic: near gap %v, far gap %v", near, far)
	}
	if near >= 1.0 || far < 0 {
		t.Errorf("falloff out of range: near %v, far %v", near, far)
	}
}

func TestInteractionFeatures(t *testing.T) {
	a := []float64{1, 2, 0}
	b := []float64{3, 0, 5}

	got := interactionFeatures(a, b)
	want := []float64{
		3, 0, 0, // product
		2, 2, 5, // absolute difference
		1.0 / 3.0, 0, 0, // ratio, zero when denominator is zero
	}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("interaction[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// truncation to the shorter vector
	if got := interactionFeatures([]float64{1, 2, 3}, []float64{1}); len(got) != 3 {
		t.Errorf("truncated length = %d, want 3", len(got))
	}
}

func TestEducationAdequacy(t *testing.T) {
	withDegree := func(degree string) *core.Profile {
		p := core.NewProfile("p", core.ProfileTypeCandidate)
		if degree != "" {
			p.Education = []core.Education{{Degree: degree}}
		}
		return p
	}
	jobRequiring := func(text string) *core.Profile {
		p := core.NewProfile("j", core.ProfileTypeJob)
		p.Description = text
		return p
	}

	if got := educationAdequacy(withDegree("Master of Science"), jobRequiring("Bachelor degree required")); got != 1.0 {
		t.Errorf("degree above requirement = %v, want 1.0", got)
	}
	if got := educationAdequacy(withDegree(""), jobRequiring("no requirements listed")); got != 1.0 {
		t.Errorf("no requirement = %v, want 1.0", got)
	}
	// 硬性门槛：低于要求不给部分分
	if got := educationAdequacy(withDegree("Bachelor of Science"), jobRequiring("Master degree required")); got != 0 {
		t.Errorf("bachelor vs master requirement = %v, want 0", got)
	}
	if got := educationAdequacy(withDegree("High School"), jobRequiring("Master degree required")); got != 0 {
		t.Errorf("degree below requirement = %v, want 0", got)
	}
}

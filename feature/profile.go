package feature

import (
	"strings"
	"time"

	"github.com/rushteam/matchkit/core"
)

// 各分类子向量的固定宽度。
// 宽度由词表长度推导，词表变更时此处随之变化。
var (
	widthSkills      = len(commonSkills) + 3 // 指示位 + 技能数 + 分类多样性 + 平均掌握度
	widthExperience  = len(experienceLevels) + 2
	widthEducation   = len(degreeLadder) + 2
	widthLocation    = len(commonCountries) + len(locationTypes) + 2
	widthSalary      = len(commonCurrencies) + 3
	widthPreferences = len(employmentTypes) + len(workStyles) + len(companySizes) + 1
	widthMetadata    = 5
)

// skillFeatures 编码技能分类：
// 词表逐位指示 + 技能数 + 分类多样性 + 平均掌握度（未填写等级按 0 计）。
// 平均掌握度只对候选人有意义，职位侧该位恒为 0（宽度不变）。
func skillFeatures(p *core.Profile) []float64 {
	out := make([]float64, widthSkills)
	names := p.SkillNames()

	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for i, s := range commonSkills {
		out[i] = boolToFloat(have[s])
	}

	categories := make(map[string]bool)
	var levelSum float64
	var levelCount int
	for _, s := range p.Skills {
		n := core.NormalizeSkillName(s.Name)
		if n == "" {
			continue
		}
		cat, ok := skillCategories[n]
		if !ok {
			cat = skillCategoryOther
		}
		categories[cat] = true
		if s.Level > 0 {
			levelSum += s.Level
			levelCount++
		}
	}

	base := len(commonSkills)
	out[base] = norm(float64(len(names)), maxSkillCount)
	out[base+1] = norm(float64(len(categories)), skillCategoryCount)
	if levelCount > 0 && p.Type == core.ProfileTypeCandidate {
		out[base+2] = norm(levelSum/float64(levelCount), maxSkillLevel)
	}
	return out
}

// experienceFeatures 编码经验分类：
// 等级桶 one-hot + 累计年限 + 行业多样性。
// End 为空的经历视为在职，以 now 截断。
func experienceFeatures(p *core.Profile, now time.Time) []float64 {
	out := make([]float64, widthExperience)
	if len(p.Experience) == 0 {
		return out
	}

	years := totalExperienceYears(p, now)
	industries := make(map[string]bool)
	for _, exp := range p.Experience {
		if ind := strings.ToLower(strings.TrimSpace(exp.Industry)); ind != "" {
			industries[ind] = true
		}
	}

	out[experienceLevelIndex(years)] = 1
	base := len(experienceLevels)
	out[base] = norm(years, maxYears)
	out[base+1] = norm(float64(len(industries)), maxIndustries)
	return out
}

// totalExperienceYears 累计全部经历的年限。End 为空的经历视为在职，以 now 截断。
func totalExperienceYears(p *core.Profile, now time.Time) float64 {
	var years float64
	for _, exp := range p.Experience {
		end := now
		if exp.End != nil {
			end = *exp.End
		}
		if end.After(exp.Start) {
			years += end.Sub(exp.Start).Hours() / (24 * 365.25)
		}
	}
	return years
}

// educationFeatures 编码教育分类：
// 最高学历 one-hot + 经历条数 + 相关专业条数。
func educationFeatures(p *core.Profile) []float64 {
	out := make([]float64, widthEducation)

	highest := 0
	var relevant int
	for _, edu := range p.Education {
		if tier := degreeTier(edu.Degree); tier > highest {
			highest = tier
		}
		if fieldRelevant(edu.Field) {
			relevant++
		}
	}
	out[highest] = 1

	base := len(degreeLadder)
	out[base] = norm(float64(len(p.Education)), maxEducations)
	out[base+1] = norm(float64(relevant), relevantFieldCap)
	return out
}

// degreeTier 从学历自由文本判定阶梯下标，无法判定时返回 0。
func degreeTier(degree string) int {
	d := strings.ToLower(degree)
	if d == "" {
		return 0
	}
	for _, entry := range degreeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(d, kw) {
				return entry.tier
			}
		}
	}
	return 0
}

// fieldRelevant 判定专业是否属于相关学科。
func fieldRelevant(field string) bool {
	f := strings.ToLower(field)
	if f == "" {
		return false
	}
	for _, kw := range relevantFields {
		if strings.Contains(f, kw) {
			return true
		}
	}
	return false
}

// locationFeatures 编码地域分类：
// 国家 one-hot + 远程标志 + 位置类型 one-hot + 时区偏移。
// Location 缺失时返回定宽全零子向量。
func locationFeatures(p *core.Profile) []float64 {
	out := make([]float64, widthLocation)
	loc := p.Location
	if loc == nil {
		return out
	}

	country := strings.ToLower(strings.TrimSpace(loc.Country))
	for i, c := range commonCountries {
		if country != "" && strings.Contains(country, c) {
			out[i] = 1
			break
		}
	}

	base := len(commonCountries)
	out[base] = boolToFloat(loc.Remote)

	typ := strings.ToLower(strings.TrimSpace(loc.Type))
	typeIdx := len(locationTypes) - 1 // unknown
	for i, t := range locationTypes {
		if typ == t {
			typeIdx = i
			break
		}
	}
	out[base+1+typeIdx] = 1

	out[base+1+len(locationTypes)] = normRange(loc.TimezoneOffset, timezoneMin, timezoneMax)
	return out
}

// salaryFeatures 编码薪资分类：
// 归一化的区间下界/上界/宽度 + 币种 one-hot。
func salaryFeatures(p *core.Profile) []float64 {
	out := make([]float64, widthSalary)
	sal := p.Salary
	if sal == nil {
		return out
	}

	out[0] = norm(sal.Min, maxSalary)
	out[1] = norm(sal.Max, maxSalary)
	if sal.Max > sal.Min {
		out[2] = norm(sal.Max-sal.Min, maxSalary)
	}

	cur := strings.ToUpper(strings.TrimSpace(sal.Currency))
	for i, c := range commonCurrencies {
		if cur == c {
			out[3+i] = 1
			break
		}
	}
	return out
}

// preferenceFeatures 编码偏好分类：
// 雇佣形式/办公方式/公司规模 one-hot + 成长空间标志。
func preferenceFeatures(p *core.Profile) []float64 {
	out := make([]float64, widthPreferences)
	pref := p.Preferences
	if pref == nil {
		return out
	}

	offset := 0
	offset += oneHot(out[offset:], employmentTypes, pref.EmploymentType)
	offset += oneHot(out[offset:], workStyles, pref.WorkStyle)
	offset += oneHot(out[offset:], companySizes, pref.CompanySize)
	out[offset] = boolToFloat(pref.GrowthOpportunity)
	return out
}

// oneHot 在 dst 前 len(vocab) 位写入 value 的 one-hot 编码，返回占用宽度。
// value 未命中词表时该段保持全零。
func oneHot(dst []float64, vocab []string, value string) int {
	v := strings.ToLower(strings.TrimSpace(value))
	for i, item := range vocab {
		if v == item {
			dst[i] = 1
			break
		}
	}
	return len(vocab)
}

// metadataFeatures 编码元数据分类：
// 完整度 + 认证 + 加精 + 画像年龄 + 活跃度。
// activity < 0 表示无外部活跃度信号，以更新间隔推算。
func metadataFeatures(p *core.Profile, now time.Time, activity float64) []float64 {
	out := make([]float64, widthMetadata)
	meta := p.Meta
	if meta == nil {
		return out
	}

	out[0] = norm(meta.CompletionScore, maxCompletion)
	out[1] = boolToFloat(meta.Verified)
	out[2] = boolToFloat(meta.Featured)
	if !meta.CreatedAt.IsZero() && now.After(meta.CreatedAt) {
		ageDays := now.Sub(meta.CreatedAt).Hours() / 24
		out[3] = norm(ageDays, maxProfileAge)
	}

	if activity >= 0 {
		out[4] = clamp01(activity)
	} else if !meta.UpdatedAt.IsZero() && now.After(meta.UpdatedAt) {
		out[4] = activityDecay(now.Sub(meta.UpdatedAt).Hours() / 24)
	}
	return out
}

// activityDecay 以更新间隔推算活跃度，按天数阶梯衰减。
func activityDecay(staleDays float64) float64 {
	switch {
	case staleDays < 7:
		return 1
	case staleDays < 30:
		return 0.7
	case staleDays < 90:
		return 0.4
	default:
		return 0.1
	}
}

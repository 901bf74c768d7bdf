package feature

import (
	"math"
	"strings"
	"time"

	"github.com/rushteam/matchkit/core"
)

// widthSimilarity 相似度子向量宽度：
// 技能 Jaccard / 经验匹配 / 学历达标 / 地域兼容 / 薪资对齐。
const widthSimilarity = 5

// widthTextSimilarity 文本相似度子向量宽度：余弦相似度 / 归一化欧氏距离。
const widthTextSimilarity = 2

// interactionFeatures 计算两个向量的交互块：
// 逐位乘积、逐位绝对差、逐位比值（分母为零时该位取零），
// 以较短向量的长度截断。
func interactionFeatures(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		out[i] = a[i] * b[i]
		out[n+i] = math.Abs(a[i] - b[i])
		if b[i] != 0 {
			out[2*n+i] = a[i] / b[i]
		}
	}
	return out
}

// similarityFeatures 计算候选人与职位的结构化相似度块。
func similarityFeatures(candidate, job *core.Profile, now time.Time) []float64 {
	return []float64{
		skillJaccard(candidate, job),
		experienceAlignment(candidate, job, now),
		educationAdequacy(candidate, job),
		locationCompatibility(candidate, job),
		salaryAlignment(candidate, job),
	}
}

// skillJaccard 技能集合的 Jaccard 相似度。
// 两边都为空视为 1（无要求即无差距），单边为空为 0。
func skillJaccard(candidate, job *core.Profile) float64 {
	a := skillSet(candidate)
	b := skillSet(job)
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for s := range a {
		if b[s] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func skillSet(p *core.Profile) map[string]bool {
	names := p.SkillNames()
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// experienceAlignment 经验匹配分：以候选人年限与职位要求年限之比打分。
//   - 比值在 [0.8, 1.5]：1.0（正好够用，略有富余最佳）
//   - 比值在 [0.5, 2.0]：0.7（偏少或明显溢出）
//   - 其余：随偏离程度线性衰减
func experienceAlignment(candidate, job *core.Profile, now time.Time) float64 {
	required := requiredYears(job, now)
	have := totalExperienceYears(candidate, now)
	if required <= 0 {
		// 职位无年限要求：有经历即满分，否则中性
		if have > 0 {
			return 1
		}
		return 0.5
	}

	ratio := have / required
	switch {
	case ratio >= 0.8 && ratio <= 1.5:
		return 1
	case ratio >= 0.5 && ratio <= 2.0:
		return 0.7
	case ratio < 0.5:
		return clamp01(0.7 * ratio / 0.5)
	default:
		return clamp01(0.7 * 2.0 / ratio)
	}
}

// requiredYears 推断职位要求的年限：优先取职位画像的经历年限字段，
// 否则从标题关键词推断，都没有时视为无要求。
func requiredYears(job *core.Profile, now time.Time) float64 {
	if years := totalExperienceYears(job, now); years > 0 {
		return years
	}

	title := strings.ToLower(job.Title)
	switch {
	case strings.Contains(title, "principal") || strings.Contains(title, "staff"):
		return 12
	case strings.Contains(title, "lead"):
		return 10
	case strings.Contains(title, "senior"):
		return 6
	case strings.Contains(title, "junior") || strings.Contains(title, "entry"):
		return 1
	case strings.Contains(title, "intern"):
		return 0
	}
	return 0
}

// educationAdequacy 学历达标分：候选人最高学历不低于职位文本中出现的
// 学历要求时为 1。这是硬性门槛，低于要求直接记 0，不给部分分。
func educationAdequacy(candidate, job *core.Profile) float64 {
	required := 0
	text := strings.ToLower(job.FreeText())
	for _, edu := range job.Education {
		if tier := degreeTier(edu.Degree); tier > required {
			required = tier
		}
	}
	for _, entry := range degreeKeywords {
		if entry.tier <= required {
			continue
		}
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				required = entry.tier
				break
			}
		}
	}
	if required == 0 {
		return 1
	}

	highest := 0
	for _, edu := range candidate.Education {
		if tier := degreeTier(edu.Degree); tier > highest {
			highest = tier
		}
	}
	if highest >= required {
		return 1
	}
	return 0
}

// locationCompatibility 地域兼容分：
//   - 任一方远程：1.0
//   - 城市与国家都一致：1.0
//   - 仅国家一致：0.8
//   - 其余：0.3
//
// 任一方缺失位置信息时返回中性分 0.5。
func locationCompatibility(candidate, job *core.Profile) float64 {
	cl, jl := candidate.Location, job.Location
	if cl == nil || jl == nil {
		return 0.5
	}
	if cl.Remote || jl.Remote {
		return 1
	}

	sameCountry := equalFold(cl.Country, jl.Country) && cl.Country != ""
	if sameCountry && equalFold(cl.City, jl.City) && cl.City != "" {
		return 1
	}
	if sameCountry {
		return 0.8
	}
	return 0.3
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// salaryAlignment 薪资对齐分：区间有交集为 1，无交集时按缺口相对
// 两区间中点均值的比例衰减。任一方缺失薪资时返回中性分 0.5。
func salaryAlignment(candidate, job *core.Profile) float64 {
	cs, js := candidate.Salary, job.Salary
	if cs == nil || js == nil {
		return 0.5
	}

	low := math.Max(cs.Min, js.Min)
	high := math.Min(cs.Max, js.Max)
	if low <= high {
		return 1
	}

	gap := low - high
	scale := (cs.Min + cs.Max + js.Min + js.Max) / 4
	if scale <= 0 {
		return 0
	}
	return clamp01(1 - gap/scale)
}

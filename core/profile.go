package core

import (
	"strings"
	"time"
)

// ProfileType 标记画像的类型：候选人或职位。
// 两者结构上足够相似（技能、地域、薪资、文本），同一套特征抽取流程
// 通过 ProfileType 参数化后对两者都适用。
type ProfileType string

const (
	ProfileTypeCandidate ProfileType = "candidate" // 候选人画像
	ProfileTypeJob       ProfileType = "job"       // 职位画像
)

// Skill 是一条技能记录。
// 候选人画像中 Level 表示掌握程度（1-5）；职位画像中表示要求程度。
type Skill struct {
	Name  string  `json:"name"`
	Level float64 `json:"level"` // 1-5，0 表示未填写
}

// Experience 是一段工作经历。
// End 为 nil 表示在职（计算年限时以"现在"为结束时间）。
type Experience struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Industry    string     `json:"industry"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
}

// Education 是一条教育经历。
type Education struct {
	Degree string `json:"degree"` // 自由文本，如 "Bachelor of Science"
	Field  string `json:"field"`
	School string `json:"school"`
}

// Location 是地理位置信息。
type Location struct {
	City           string  `json:"city"`
	Country        string  `json:"country"`
	Type           string  `json:"type"` // urban / suburban / rural / ""
	Remote         bool    `json:"remote"`
	TimezoneOffset float64 `json:"timezone_offset"` // 相对 UTC 的小时数，[-12, 14]
}

// SalaryRange 是薪资区间。
// 候选人画像中为期望区间；职位画像中为提供区间。
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"` // USD / EUR / GBP / CNY / ...
}

// Preferences 是偏好信号（雇佣形式、办公方式、公司规模等）。
type Preferences struct {
	EmploymentType    string `json:"employment_type"` // full_time / part_time / contract / internship
	WorkStyle         string `json:"work_style"`      // remote / hybrid / onsite
	CompanySize       string `json:"company_size"`    // startup / small / medium / large / enterprise
	GrowthOpportunity bool   `json:"growth_opportunity"`
}

// ProfileMeta 是画像元数据（完整度、认证、活跃度来源时间戳等）。
type ProfileMeta struct {
	CompletionScore float64   `json:"completion_score"` // [0, 100]
	Verified        bool      `json:"verified"`
	Featured        bool      `json:"featured"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profile 是匹配链路中候选人/职位的统一承载结构。
//
// 一句话定义：Profile = 匹配智能的"唯一输入 + 特征源"。
//
// 它由上游存储层提供，本库只读不写：
//   - 特征抽取把它编码成定长特征向量
//   - 训练链路把它的配对标注成训练样本
//   - A/B 链路对它的配对实时打分
//
// 除 ID/Type 外所有字段都允许缺失；抽取必须对残缺画像保持全函数
// （缺失分类填零，不缩短向量，不向上抛错）。
type Profile struct {
	ID          string       `json:"id"`
	Type        ProfileType  `json:"type"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	Skills      []Skill      `json:"skills,omitempty"`
	Experience  []Experience `json:"experience,omitempty"`
	Education   []Education  `json:"education,omitempty"`
	Location    *Location    `json:"location,omitempty"`
	Salary      *SalaryRange `json:"salary,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Meta        *ProfileMeta `json:"meta,omitempty"`
}

// NewProfile 创建一个新的画像。
func NewProfile(id string, typ ProfileType) *Profile {
	return &Profile{
		ID:   id,
		Type: typ,
	}
}

// FreeText 拼接画像的自由文本字段（title + summary + description），
// 作为文本相似度 Embedding 的输入。
func (p *Profile) FreeText() string {
	out := p.Title
	if p.Summary != "" {
		if out != "" {
			out += " "
		}
		out += p.Summary
	}
	if p.Description != "" {
		if out != "" {
			out += " "
		}
		out += p.Description
	}
	return out
}

// SkillNames 返回小写、去除首尾空白后的技能名列表。
func (p *Profile) SkillNames() []string {
	if len(p.Skills) == 0 {
		return nil
	}
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		if n := normalizeSkillName(s.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// normalizeSkillName 技能名标准化：小写 + 去除首尾空白。
func normalizeSkillName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeSkillName 导出版本，供特征抽取与相似度计算复用同一标准化规则。
func NormalizeSkillName(name string) string {
	return normalizeSkillName(name)
}

package feature

// 本文件集中声明特征抽取使用的全部静态词表与固定边界。
// 词表顺序即向量位次：任何改动都会改变向量布局，等同于换了一套
// 抽取器配置，线上模型必须随之重训。

// commonSkills 是技能指示位的固定词表（小写）。
// 每个成员对应向量中的一个 0/1 指示位。
var commonSkills = []string{
	"javascript", "typescript", "python", "java", "go", "rust", "c++", "c#",
	"php", "ruby", "swift", "kotlin", "react", "angular", "vue", "node.js",
	"django", "spring", "sql", "postgresql", "mongodb", "redis", "aws",
	"azure", "gcp", "docker", "kubernetes", "terraform", "git", "linux",
	"machine learning", "tensorflow",
}

// 技能分类（用于多样性统计）
const (
	skillCategoryFrontend = "frontend"
	skillCategoryBackend  = "backend"
	skillCategoryDatabase = "database"
	skillCategoryCloud    = "cloud"
	skillCategoryDevops   = "devops"
	skillCategoryMobile   = "mobile"
	skillCategoryML       = "ml"
	skillCategoryOther    = "other"
)

// skillCategoryCount 是技能分类总数（含 other），多样性计数以此归一化。
const skillCategoryCount = 8

// skillCategories 是技能名到分类的静态映射，未命中的技能归入 other。
var skillCategories = map[string]string{
	"javascript": skillCategoryFrontend,
	"typescript": skillCategoryFrontend,
	"react":      skillCategoryFrontend,
	"angular":    skillCategoryFrontend,
	"vue":        skillCategoryFrontend,

	"python":  skillCategoryBackend,
	"java":    skillCategoryBackend,
	"go":      skillCategoryBackend,
	"rust":    skillCategoryBackend,
	"c++":     skillCategoryBackend,
	"c#":      skillCategoryBackend,
	"php":     skillCategoryBackend,
	"ruby":    skillCategoryBackend,
	"node.js": skillCategoryBackend,
	"django":  skillCategoryBackend,
	"spring":  skillCategoryBackend,

	"sql":        skillCategoryDatabase,
	"postgresql": skillCategoryDatabase,
	"mongodb":    skillCategoryDatabase,
	"redis":      skillCategoryDatabase,

	"aws":   skillCategoryCloud,
	"azure": skillCategoryCloud,
	"gcp":   skillCategoryCloud,

	"docker":     skillCategoryDevops,
	"kubernetes": skillCategoryDevops,
	"terraform":  skillCategoryDevops,
	"git":        skillCategoryDevops,
	"linux":      skillCategoryDevops,

	"swift":  skillCategoryMobile,
	"kotlin": skillCategoryMobile,

	"machine learning": skillCategoryML,
	"tensorflow":       skillCategoryML,
}

// ExperienceLevel 经验等级（按累计年限分桶，one-hot 编码）。
var experienceLevels = []string{
	"entry", "junior", "mid", "senior", "lead", "principal", "executive",
}

// experienceLevelIndex 按年限返回等级下标。
// 阈值：<1 entry, <4 junior, <7 mid, <11 senior, <16 lead, <25 principal, 其余 executive。
func experienceLevelIndex(years float64) int {
	switch {
	case years < 1:
		return 0
	case years < 4:
		return 1
	case years < 7:
		return 2
	case years < 11:
		return 3
	case years < 16:
		return 4
	case years < 25:
		return 5
	default:
		return 6
	}
}

// degreeLadder 学历阶梯（one-hot 编码，下标即学历高低）。
var degreeLadder = []string{
	"none", "high-school", "associate", "bachelor", "master", "phd",
}

// degreeKeywords 学历关键词扫描表：按阶梯从高到低匹配。
var degreeKeywords = []struct {
	tier     int
	keywords []string
}{
	{5, []string{"phd", "ph.d", "doctor"}},
	{4, []string{"master", "msc", "m.s", "mba"}},
	{3, []string{"bachelor", "bsc", "b.s", "b.a", "undergraduate"}},
	{2, []string{"associate", "diploma"}},
	{1, []string{"high school", "secondary"}},
}

// commonCountries 国家 one-hot 词表（子串匹配，大小写不敏感）。
var commonCountries = []string{
	"united states", "united kingdom", "canada", "germany", "france",
	"india", "china", "australia", "netherlands", "singapore",
}

// locationTypes 位置类型 one-hot：urban / suburban / rural / unknown。
var locationTypes = []string{"urban", "suburban", "rural", "unknown"}

// commonCurrencies 币种 one-hot 词表。
var commonCurrencies = []string{"USD", "EUR", "GBP", "CNY", "INR"}

// 偏好枚举 one-hot 词表
var (
	employmentTypes = []string{"full_time", "part_time", "contract", "internship"}
	workStyles      = []string{"remote", "hybrid", "onsite"}
	companySizes    = []string{"startup", "small", "medium", "large", "enterprise"}
)

// 固定归一化边界（与批次无关，单个画像可独立打分）
const (
	maxSkillCount    = 20.0     // 技能数归一化上界
	maxSkillLevel    = 5.0      // 技能等级上界
	maxYears         = 40.0     // 累计工作年限上界
	maxIndustries    = 6.0      // 行业多样性上界
	maxEducations    = 4.0      // 教育经历条数上界
	maxSalary        = 300000.0 // 薪资钳位上界
	maxCompletion    = 100.0    // 画像完整度上界
	maxProfileAge    = 365.0    // 画像年龄（天）归一化上界
	timezoneMin      = -12.0    // 时区偏移下界
	timezoneMax      = 14.0     // 时区偏移上界
	relevantFieldCap = 4.0      // 相关专业计数上界
)

// relevantFields 判定"专业相关"的关键词表（职位匹配场景的常见技术学科）。
var relevantFields = []string{
	"computer science", "software", "engineering", "information",
	"mathematics", "statistics", "data science", "physics",
}

package core

// FeatureCategory 标记特征向量中一个子区间的语义分类。
// 分类顺序与宽度由抽取器配置决定，且对同一配置在所有调用间保持稳定。
type FeatureCategory string

const (
	CategorySkills         FeatureCategory = "skills"
	CategoryExperience     FeatureCategory = "experience"
	CategoryEducation      FeatureCategory = "education"
	CategoryLocation       FeatureCategory = "location"
	CategorySalary         FeatureCategory = "salary"
	CategoryPreferences    FeatureCategory = "preferences"
	CategoryMetadata       FeatureCategory = "metadata"
	CategoryInteraction    FeatureCategory = "interaction"
	CategorySimilarity     FeatureCategory = "similarity"
	CategoryTextSimilarity FeatureCategory = "text_similarity"
)

// CategorySpan 描述一个分类在向量中占据的子区间。
type CategorySpan struct {
	Category FeatureCategory `json:"category"`
	Offset   int             `json:"offset"`
	Width    int             `json:"width"`
}

// FeatureVector 是定长的数值特征向量，外加每个语义分类的区间描述。
//
// 不变式：
//   - 对固定的抽取器配置，向量长度与各分类的 Offset/Width 在所有调用间不变
//   - 相同输入两次抽取产生逐位相同的输出（确定性）
//   - 缺失的可选字段产生定宽的全零子区间，而不是更短的向量
type FeatureVector struct {
	Values []float64      `json:"values"`
	Spans  []CategorySpan `json:"spans"`
}

// Len 返回向量维度。
func (v *FeatureVector) Len() int {
	return len(v.Values)
}

// Category 返回指定分类的子向量（共享底层数组），不存在时返回 nil。
func (v *FeatureVector) Category(cat FeatureCategory) []float64 {
	for _, s := range v.Spans {
		if s.Category == cat {
			return v.Values[s.Offset : s.Offset+s.Width]
		}
	}
	return nil
}

// Span 返回指定分类的区间描述。
func (v *FeatureVector) Span(cat FeatureCategory) (CategorySpan, bool) {
	for _, s := range v.Spans {
		if s.Category == cat {
			return s, true
		}
	}
	return CategorySpan{}, false
}

// Clone 返回深拷贝，调用方可以安全修改返回值。
func (v *FeatureVector) Clone() *FeatureVector {
	out := &FeatureVector{
		Values: make([]float64, len(v.Values)),
		Spans:  make([]CategorySpan, len(v.Spans)),
	}
	copy(out.Values, v.Values)
	copy(out.Spans, v.Spans)
	return out
}

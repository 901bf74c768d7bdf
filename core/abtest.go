package core

import "time"

// TestStatus 是 A/B 实验的状态机：created → running → stopped，单向不可逆。
type TestStatus string

const (
	TestStatusCreated TestStatus = "created"
	TestStatusRunning TestStatus = "running"
	TestStatusStopped TestStatus = "stopped"
)

// Group 是实验分组。
type Group string

const (
	GroupControl   Group = "control"
	GroupTreatment Group = "treatment"
)

// Winner 是统计评估的推荐结论。
type Winner string

const (
	WinnerControl      Winner = "control"
	WinnerTreatment    Winner = "treatment"
	WinnerInconclusive Winner = "inconclusive"
)

// TestConfig 是实验的统计与自动停止配置。
type TestConfig struct {
	// ConfidenceLevel 置信水平，(0.5, 1)，默认 0.95
	ConfidenceLevel float64 `json:"confidence_level"`

	// MinSampleSize 每组最小样本量；达到之前评估是 no-op
	MinSampleSize int `json:"min_sample_size"`

	// MaxTestDuration 实验最长持续时间；超过后自动停止
	MaxTestDuration time.Duration `json:"max_test_duration"`

	// WinnerSelectionThreshold 自动选胜者所需的最低置信度（1 - p 值）
	WinnerSelectionThreshold float64 `json:"winner_selection_threshold"`

	// EnableAutoWinnerSelection 是否允许显著时自动停止实验
	EnableAutoWinnerSelection bool `json:"enable_auto_winner_selection"`
}

// ABTest 是一次对照实验：control 与 treatment 各引用一个模型工件。
//
// 不变式：
//   - 参与者一旦分组，实验生命周期内不得改组（粘性分桶）
//   - StartedAt / EndedAt 各自只在 created→running / running→stopped 时设置一次
type ABTest struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	ControlModelID   string     `json:"control_model_id"`
	TreatmentModelID string     `json:"treatment_model_id"`
	Status           TestStatus `json:"status"`

	// TrafficSplit 落入 treatment 组的概率，[0, 1]
	TrafficSplit float64 `json:"traffic_split"`

	// Audience 可选的受众表达式（CEL）；为空表示全量
	Audience string `json:"audience,omitempty"`

	Config     TestConfig `json:"config"`
	StopReason string     `json:"stop_reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// Participant 是实验参与者的分组记录（粘性，不可变）。
type Participant struct {
	TestID     string    `json:"test_id"`
	UserID     string    `json:"user_id"`
	Group      Group     `json:"group"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Conversion 是一次转化事件。
type Conversion struct {
	TestID string    `json:"test_id"`
	UserID string    `json:"user_id"`
	Group  Group     `json:"group"`
	Type   string    `json:"type"` // view / apply / hire / ...
	Value  float64   `json:"value"`
	At     time.Time `json:"at"`
}

// GroupStats 是单个分组的累计指标。
type GroupStats struct {
	Participants int64   `json:"participants"`
	Conversions  int64   `json:"conversions"`
	Rate         float64 `json:"rate"`
}

// TestResults 是一次统计评估的结果。
// 评估是幂等的：没有新数据时重复评估产生相同结论。
type TestResults struct {
	TestID            string     `json:"test_id"`
	Status            TestStatus `json:"status"`
	Control           GroupStats `json:"control"`
	Treatment         GroupStats `json:"treatment"`
	RateDifference    float64    `json:"rate_difference"`
	ZScore            float64    `json:"z_score"`
	PValue            float64    `json:"p_value"`
	Significant       bool       `json:"significant"`
	ConfidenceLow     float64    `json:"confidence_low"`
	ConfidenceHigh    float64    `json:"confidence_high"`
	RecommendedWinner Winner     `json:"recommended_winner"`
	WinnerConfidence  float64    `json:"winner_confidence"`
	MinSampleSizeMet  bool       `json:"min_sample_size_met"`
	EvaluatedAt       time.Time  `json:"evaluated_at"`
}

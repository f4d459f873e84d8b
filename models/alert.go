package models

import "time"

type AlertType string

const (
	AlertTurnoverRisk   AlertType = "turnover_risk"
	AlertEngagementDrop AlertType = "engagement_drop"
	AlertAbsenteeism    AlertType = "absenteeism"
	AlertBurnout        AlertType = "burnout"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists severity levels from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

type Alert struct {
	ID           string    `json:"id" bson:"_id" yaml:"id"`
	Type         AlertType `json:"type" bson:"type" yaml:"type"`
	Title        string    `json:"title" bson:"title" yaml:"title"`
	Message      string    `json:"message" bson:"message" yaml:"message"`
	Severity     Severity  `json:"severity" bson:"severity" yaml:"severity"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
	Department   string    `json:"department,omitempty" bson:"department,omitempty" yaml:"department"`
	CurrentValue float64   `json:"current_value" bson:"current_value" yaml:"current_value"`
	Threshold    float64   `json:"threshold" bson:"threshold" yaml:"threshold"`
}

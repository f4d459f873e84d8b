package models

import "time"

type ActionCategory string

const (
	ActionDevelopment  ActionCategory = "development"
	ActionRecognition  ActionCategory = "recognition"
	ActionCompensation ActionCategory = "compensation"
	ActionWellbeing    ActionCategory = "wellbeing"
	ActionLeadership   ActionCategory = "leadership"
)

// ActionTemplate is a reusable retention action from the plan library.
type ActionTemplate struct {
	ID                string         `json:"id" bson:"_id" yaml:"id"`
	Name              string         `json:"name" bson:"name" yaml:"name"`
	Category          ActionCategory `json:"category" bson:"category" yaml:"category"`
	Subcategory       string         `json:"subcategory" bson:"subcategory" yaml:"subcategory"`
	Description       string         `json:"description" bson:"description" yaml:"description"`
	Applicability     string         `json:"applicability" bson:"applicability" yaml:"applicability"`
	RequiredResources []string       `json:"required_resources" bson:"required_resources" yaml:"required_resources"`
	AverageCost       float64        `json:"average_cost" bson:"average_cost" yaml:"average_cost"`
	TypicalDuration   string         `json:"typical_duration" bson:"typical_duration" yaml:"typical_duration"`
	SuccessRate       float64        `json:"success_rate" bson:"success_rate" yaml:"success_rate"`
	Indications       []string       `json:"indications" bson:"indications" yaml:"indications"`
	Contraindications []string       `json:"contraindications" bson:"contraindications" yaml:"contraindications"`
	Materials         []string       `json:"materials" bson:"materials" yaml:"materials"`
	UsageCount        int            `json:"usage_count" bson:"usage_count" yaml:"usage_count"`
	Rating            float64        `json:"rating" bson:"rating" yaml:"rating"`
}

type CaseStatus string

const (
	CaseOpen       CaseStatus = "open"
	CaseInProgress CaseStatus = "in_progress"
	CaseClosed     CaseStatus = "closed"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RetentionCase tracks a retention action plan for one at-risk employee.
type RetentionCase struct {
	ID           string     `json:"id" bson:"_id" yaml:"id"`
	EmployeeID   string     `json:"employee_id" bson:"employee_id" yaml:"employee_id"`
	EmployeeName string     `json:"employee_name" bson:"employee_name" yaml:"employee_name"`
	Department   string     `json:"department" bson:"department" yaml:"department"`
	Risk         RiskLevel  `json:"risk" bson:"risk" yaml:"risk"`
	Status       CaseStatus `json:"status" bson:"status" yaml:"status"`
	Owner        string     `json:"owner" bson:"owner" yaml:"owner"`
	OpenedAt     time.Time  `json:"opened_at" bson:"opened_at" yaml:"opened_at"`
	ActionIDs    []string   `json:"action_ids" bson:"action_ids" yaml:"action_ids"`
	Notes        string     `json:"notes,omitempty" bson:"notes,omitempty" yaml:"notes"`
}

package models

import "time"

type JourneyEventType string

const (
	EventHiring     JourneyEventType = "hiring"
	EventOnboarding JourneyEventType = "onboarding"
	EventTraining   JourneyEventType = "training"
	EventPromotion  JourneyEventType = "promotion"
	EventTransfer   JourneyEventType = "transfer"
	EventFeedback   JourneyEventType = "feedback"
	EventLeave      JourneyEventType = "leave"
)

type JourneyStatus string

const (
	JourneyCompleted  JourneyStatus = "completed"
	JourneyInProgress JourneyStatus = "in_progress"
	JourneyPlanned    JourneyStatus = "planned"
)

// JourneyEvent is one entry on an employee's timeline.
type JourneyEvent struct {
	ID          string            `json:"id" bson:"_id" yaml:"id"`
	EmployeeID  string            `json:"employee_id" bson:"employee_id" yaml:"employee_id"`
	Type        JourneyEventType  `json:"type" bson:"type" yaml:"type"`
	Date        time.Time         `json:"date" bson:"date" yaml:"date"`
	Title       string            `json:"title" bson:"title" yaml:"title"`
	Description string            `json:"description" bson:"description" yaml:"description"`
	Department  string            `json:"department" bson:"department" yaml:"department"`
	Manager     string            `json:"manager" bson:"manager" yaml:"manager"`
	ImpactScore float64           `json:"impact_score" bson:"impact_score" yaml:"impact_score"`
	Status      JourneyStatus     `json:"status" bson:"status" yaml:"status"`
	Details     map[string]string `json:"details,omitempty" bson:"details,omitempty" yaml:"details"`
}

type FrictionType string

const (
	FrictionWorkload     FrictionType = "workload"
	FrictionConflict     FrictionType = "conflict"
	FrictionProcess      FrictionType = "process"
	FrictionTooling      FrictionType = "tooling"
	FrictionCompensation FrictionType = "compensation"
	FrictionLeadership   FrictionType = "leadership"
)

type ResolutionStatus string

const (
	FrictionOpen       ResolutionStatus = "open"
	FrictionInProgress ResolutionStatus = "in_progress"
	FrictionResolved   ResolutionStatus = "resolved"
)

// Friction is a recorded pain point in an employee's experience.
type Friction struct {
	ID                 string           `json:"id" bson:"_id" yaml:"id"`
	EmployeeID         string           `json:"employee_id" bson:"employee_id" yaml:"employee_id"`
	Type               FrictionType     `json:"type" bson:"type" yaml:"type"`
	ReportedAt         time.Time        `json:"reported_at" bson:"reported_at" yaml:"reported_at"`
	ResolvedAt         *time.Time       `json:"resolved_at,omitempty" bson:"resolved_at,omitempty" yaml:"resolved_at"`
	Title              string           `json:"title" bson:"title" yaml:"title"`
	Description        string           `json:"description" bson:"description" yaml:"description"`
	Severity           Severity         `json:"severity" bson:"severity" yaml:"severity"`
	Status             ResolutionStatus `json:"status" bson:"status" yaml:"status"`
	Department         string           `json:"department" bson:"department" yaml:"department"`
	ResolvedBy         string           `json:"resolved_by,omitempty" bson:"resolved_by,omitempty" yaml:"resolved_by"`
	Actions            []string         `json:"actions,omitempty" bson:"actions,omitempty" yaml:"actions"`
	Feedback           string           `json:"feedback,omitempty" bson:"feedback,omitempty" yaml:"feedback"`
	SatisfactionBefore float64          `json:"satisfaction_before" bson:"satisfaction_before" yaml:"satisfaction_before"`
	SatisfactionAfter  float64          `json:"satisfaction_after" bson:"satisfaction_after" yaml:"satisfaction_after"`
}

// Resolved reports whether the friction has been closed out.
func (f Friction) Resolved() bool {
	return f.Status == FrictionResolved
}

type MilestoneType string

const (
	MilestoneAnniversary   MilestoneType = "anniversary"
	MilestonePromotion     MilestoneType = "promotion"
	MilestoneCertification MilestoneType = "certification"
	MilestoneProject       MilestoneType = "project"
	MilestoneGoal          MilestoneType = "goal"
)

type MilestoneCategory string

const (
	CategoryCareer      MilestoneCategory = "career"
	CategoryDevelopment MilestoneCategory = "development"
	CategoryRecognition MilestoneCategory = "recognition"
	CategoryTenure      MilestoneCategory = "tenure"
)

type MilestoneStatus string

const (
	MilestoneAchieved MilestoneStatus = "achieved"
	MilestonePending  MilestoneStatus = "pending"
	MilestoneMissed   MilestoneStatus = "missed"
)

type Milestone struct {
	ID               string            `json:"id" bson:"_id" yaml:"id"`
	EmployeeID       string            `json:"employee_id" bson:"employee_id" yaml:"employee_id"`
	Type             MilestoneType     `json:"type" bson:"type" yaml:"type"`
	Category         MilestoneCategory `json:"category" bson:"category" yaml:"category"`
	Title            string            `json:"title" bson:"title" yaml:"title"`
	PlannedDate      time.Time         `json:"planned_date" bson:"planned_date" yaml:"planned_date"`
	AchievedDate     *time.Time        `json:"achieved_date,omitempty" bson:"achieved_date,omitempty" yaml:"achieved_date"`
	Status           MilestoneStatus   `json:"status" bson:"status" yaml:"status"`
	ValueBefore      *float64          `json:"value_before,omitempty" bson:"value_before,omitempty" yaml:"value_before"`
	ValueAfter       *float64          `json:"value_after,omitempty" bson:"value_after,omitempty" yaml:"value_after"`
	EngagementImpact float64           `json:"engagement_impact" bson:"engagement_impact" yaml:"engagement_impact"`
}

// Date is the achieved date when present, otherwise the planned one.
func (m Milestone) Date() time.Time {
	if m.AchievedDate != nil {
		return *m.AchievedDate
	}
	return m.PlannedDate
}

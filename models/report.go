package models

import "time"

type ReportType string

const (
	ReportEngagement ReportType = "engagement"
	ReportTurnover   ReportType = "turnover"
	ReportJourney    ReportType = "journey"
	ReportRetention  ReportType = "retention"
)

// ReportTypes lists the report kinds the generator can build.
var ReportTypes = []ReportType{ReportEngagement, ReportTurnover, ReportJourney, ReportRetention}

type ReportStatus string

const (
	ReportReady      ReportStatus = "ready"
	ReportProcessing ReportStatus = "processing"
	ReportFailed     ReportStatus = "failed"
)

type ReportSummary struct {
	ID          string       `json:"id" bson:"_id" yaml:"id"`
	Title       string       `json:"title" bson:"title" yaml:"title"`
	Type        ReportType   `json:"type" bson:"type" yaml:"type"`
	Period      string       `json:"period" bson:"period" yaml:"period"`
	GeneratedAt time.Time    `json:"generated_at" bson:"generated_at" yaml:"generated_at"`
	Status      ReportStatus `json:"status" bson:"status" yaml:"status"`
	Format      string       `json:"format" bson:"format" yaml:"format"`
	Rows        int          `json:"rows" bson:"rows" yaml:"rows"`
	Highlights  []string     `json:"highlights,omitempty" bson:"highlights,omitempty" yaml:"highlights"`
}

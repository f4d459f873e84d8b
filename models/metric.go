package models

import "time"

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

type MetricStatus string

const (
	MetricOnTrack   MetricStatus = "on_track"
	MetricAttention MetricStatus = "attention"
	MetricCritical  MetricStatus = "critical"
)

// MetricSnapshot is one headline indicator on the engagement page.
type MetricSnapshot struct {
	ID            string       `json:"id" bson:"_id" yaml:"id"`
	Name          string       `json:"name" bson:"name" yaml:"name"`
	CurrentValue  float64      `json:"current_value" bson:"current_value" yaml:"current_value"`
	PreviousValue float64      `json:"previous_value" bson:"previous_value" yaml:"previous_value"`
	Unit          string       `json:"unit" bson:"unit" yaml:"unit"`
	Target        float64      `json:"target" bson:"target" yaml:"target"`
	Trend         Trend        `json:"trend" bson:"trend" yaml:"trend"`
	Status        MetricStatus `json:"status" bson:"status" yaml:"status"`
	Description   string       `json:"description" bson:"description" yaml:"description"`
	Timestamp     time.Time    `json:"timestamp" bson:"timestamp" yaml:"timestamp"`
}

// TrendPoint is one monthly point of the engagement/turnover/satisfaction series.
// Period is a "2006-01" month label.
type TrendPoint struct {
	Period       string  `json:"period" bson:"_id" yaml:"period"`
	Engagement   float64 `json:"engagement" bson:"engagement" yaml:"engagement"`
	Turnover     float64 `json:"turnover" bson:"turnover" yaml:"turnover"`
	Satisfaction float64 `json:"satisfaction" bson:"satisfaction" yaml:"satisfaction"`
}

const PeriodLayout = "2006-01"

// Month parses the period label. The zero time is returned for malformed labels.
func (p TrendPoint) Month() time.Time {
	t, err := time.Parse(PeriodLayout, p.Period)
	if err != nil {
		return time.Time{}
	}
	return t
}

package models

import "time"

// SectionSnapshot is what the browser renders for one dashboard section.
type SectionSnapshot struct {
	Name             string            `json:"name"`
	State            string            `json:"state"`
	Loading          bool              `json:"loading"`
	Data             interface{}       `json:"data"`
	Summary          interface{}       `json:"summary,omitempty"`
	Error            string            `json:"error,omitempty"`
	CanRetry         bool              `json:"can_retry"`
	Filters          map[string]string `json:"filters"`
	FiltersAtDefault bool              `json:"filters_at_default"`
	ActiveFilters    []string          `json:"active_filters,omitempty"`
	RequestSeq       uint64            `json:"request_seq"`
	UpdatedAt        *time.Time        `json:"updated_at,omitempty"`
}

// PageSummary lists the sections a dashboard page shows, in display order.
type PageSummary struct {
	Name     string   `json:"name"`
	Sections []string `json:"sections"`
}

type ViewSnapshot struct {
	ID         string            `json:"id"`
	Page       string            `json:"page"`
	EmployeeID string            `json:"employee_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	Sections   []SectionSnapshot `json:"sections"`
}

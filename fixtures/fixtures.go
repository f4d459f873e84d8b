// Package fixtures holds the hard-coded dashboard data served by the mock backend.
package fixtures

import (
	"embed"
	"fmt"
	"io/fs"
	"time"

	"hrpulse/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var files embed.FS

// ReferenceDate is the day the fixture data was captured. Period filters are relative to
// it when the dashboard serves fixtures.
var ReferenceDate = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

// Set is one complete, freshly decoded copy of every fixture collection.
type Set struct {
	Employees       []models.Employee             `yaml:"employees"`
	Metrics         []models.MetricSnapshot       `yaml:"metrics"`
	Trends          []models.TrendPoint           `yaml:"trends"`
	Heatmap         []models.DepartmentHeatmapRow `yaml:"heatmap"`
	Alerts          []models.Alert                `yaml:"alerts"`
	JourneyEvents   []models.JourneyEvent         `yaml:"journey_events"`
	Frictions       []models.Friction             `yaml:"frictions"`
	Milestones      []models.Milestone            `yaml:"milestones"`
	Reports         []models.ReportSummary        `yaml:"reports"`
	ActionTemplates []models.ActionTemplate       `yaml:"action_templates"`
	Cases           []models.RetentionCase        `yaml:"cases"`
}

// Load decodes every embedded fixture file. Each call returns new values, so callers
// may mutate the result without affecting later calls.
func Load() (*Set, error) {
	names, err := fs.Glob(files, "data/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list fixture files: %w", err)
	}

	set := &Set{}
	for _, name := range names {
		raw, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
		}
		if err := yaml.Unmarshal(raw, set); err != nil {
			return nil, fmt.Errorf("failed to decode fixture %s: %w", name, err)
		}
	}
	return set, nil
}

// MustLoad is Load for callers that treat broken fixtures as a programming error.
func MustLoad() *Set {
	set, err := Load()
	if err != nil {
		panic(err)
	}
	return set
}

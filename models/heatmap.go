package models

// DepartmentHeatmapRow holds six 0-10 engagement dimension scores for one department.
type DepartmentHeatmapRow struct {
	ID            string  `json:"id" bson:"_id" yaml:"id"`
	Name          string  `json:"name" bson:"name" yaml:"name"`
	Leadership    float64 `json:"leadership" bson:"leadership" yaml:"leadership"`
	Communication float64 `json:"communication" bson:"communication" yaml:"communication"`
	Recognition   float64 `json:"recognition" bson:"recognition" yaml:"recognition"`
	Growth        float64 `json:"growth" bson:"growth" yaml:"growth"`
	Wellbeing     float64 `json:"wellbeing" bson:"wellbeing" yaml:"wellbeing"`
	Compensation  float64 `json:"compensation" bson:"compensation" yaml:"compensation"`
}

// HeatmapDimensions lists the dimension names in display order.
var HeatmapDimensions = []string{"leadership", "communication", "recognition", "growth", "wellbeing", "compensation"}

// Scores returns the dimension scores in HeatmapDimensions order.
func (r DepartmentHeatmapRow) Scores() []float64 {
	return []float64{r.Leadership, r.Communication, r.Recognition, r.Growth, r.Wellbeing, r.Compensation}
}

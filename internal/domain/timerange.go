package domain

import "time"

// TimeRange is a half-open [Start, End) slot window on a field.
type TimeRange struct {
	Start time.Time `gorm:"column:start_time;index" json:"start"`
	End   time.Time `gorm:"column:end_time;index" json:"end"`
}

// Overlaps reports whether the two ranges share any instant. A range that
// ends exactly when the other starts does not overlap.
func (t TimeRange) Overlaps(o TimeRange) bool {
	return t.Start.Before(o.End) && o.Start.Before(t.End)
}

func (t TimeRange) Validate() error {
	if !t.End.After(t.Start) {
		return NewValidation("INVALID_TIME_RANGE", "end must be after start")
	}
	return nil
}

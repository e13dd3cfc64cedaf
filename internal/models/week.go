package models

import (
	"fmt"
	"time"
)

// WeekRange is a Monday-Sunday pay window. Start and End are date-only UTC values.
type WeekRange struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the Monday-Sunday week containing d.
func WeekOf(d time.Time) WeekRange {
	d = truncate(d)
	start := d.AddDate(0, 0, -mondayOffset(d))
	return WeekRange{Start: start, End: start.AddDate(0, 0, 6)}
}

// mondayOffset counts days back to the Monday of d's week.
func mondayOffset(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Label renders the range as stamped into pay sheet headers.
func (w WeekRange) Label() string {
	return fmt.Sprintf("%s - %s", w.Start.Format("01/02/06"), w.End.Format("01/02/06"))
}

// ArtifactName derives the deterministic output file name for the range.
func (w WeekRange) ArtifactName() string {
	return fmt.Sprintf("Sub_PaySheet_%s_to_%s.xlsx", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// Days returns the inclusive span in days.
func (w WeekRange) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

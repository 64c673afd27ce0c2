package labs

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LabEvent is one charted measurement for a case. Kind distinguishes
// serum creatinine ("scr") from urine output rows.
type LabEvent struct {
	ID        uuid.UUID `json:"id"`
	CaseID    string    `json:"case_id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
}

// Point is a chart-ready measurement with optional hours since admission.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Hours     *float64  `json:"hours,omitempty"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// SplitSeries partitions events into the serum-creatinine series and the
// urine-output series, each sorted by timestamp. Any kind other than
// "scr" is charted as urine output.
func SplitSeries(events []*LabEvent) (scr, uo []*LabEvent) {
	for _, ev := range events {
		if strings.EqualFold(ev.Kind, "scr") {
			scr = append(scr, ev)
		} else {
			uo = append(uo, ev)
		}
	}
	byTime := func(s []*LabEvent) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Timestamp.Before(s[j].Timestamp) })
	}
	byTime(scr)
	byTime(uo)
	return scr, uo
}

// WithHours converts events to chart points, populating fractional hours
// since admission. A nil admit time leaves hours unset so the chart
// falls back to absolute timestamps.
func WithHours(events []*LabEvent, admitTime *time.Time) []Point {
	points := make([]Point, 0, len(events))
	for _, ev := range events {
		p := Point{Timestamp: ev.Timestamp, Value: ev.Value, Unit: ev.Unit}
		if admitTime != nil {
			h := ev.Timestamp.Sub(*admitTime).Hours()
			p.Hours = &h
		}
		points = append(points, p)
	}
	return points
}

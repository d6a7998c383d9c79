package models

import (
	"time"

	"github.com/lib/pq"
)

// AssessmentType classifies the evidence captured during an assessment.
type AssessmentType string

const (
	AssessmentTheory     AssessmentType = "Theory"
	AssessmentPractical  AssessmentType = "Practical"
	AssessmentViva       AssessmentType = "Viva"
	AssessmentGroup      AssessmentType = "Group"
	AssessmentAttendance AssessmentType = "Attendance"
)

// PhotoQuotas maps each assessment type to the number of photos required
// before a capture session may be submitted.
var PhotoQuotas = map[AssessmentType]int{
	AssessmentTheory:     2,
	AssessmentPractical:  2,
	AssessmentViva:       1,
	AssessmentGroup:      1,
	AssessmentAttendance: 1,
}

// ReportOrder is the fixed sequence in which evidence types appear in
// generated reports. Attendance is rendered as its own document.
var ReportOrder = []AssessmentType{
	AssessmentTheory,
	AssessmentPractical,
	AssessmentViva,
	AssessmentGroup,
}

// Valid reports whether t is a known assessment type.
func (t AssessmentType) Valid() bool {
	_, ok := PhotoQuotas[t]
	return ok
}

// Quota returns the photo quota for the type, zero when unknown.
func (t AssessmentType) Quota() int {
	return PhotoQuotas[t]
}

// GeoLocation is the resolved position burned into captured photos.
// Lat and Lng are fixed to six decimal places when formatted.
type GeoLocation struct {
	Lat    float64 `db:"lat" json:"lat"`
	Lng    float64 `db:"lng" json:"lng"`
	Town   string  `db:"town" json:"town"`
	Region string  `db:"region" json:"region"`
}

// EvidenceRecord is a submitted set of photos for one assessment type of
// one batch.
type EvidenceRecord struct {
	ID        string         `db:"id" json:"id"`
	BatchID   string         `db:"batch_id" json:"batch_id"`
	Type      AssessmentType `db:"type" json:"type"`
	Username  string         `db:"username" json:"username"`
	Photos    pq.StringArray `db:"photos" json:"photos"`
	Lat       float64        `db:"lat" json:"lat"`
	Lng       float64        `db:"lng" json:"lng"`
	Town      string         `db:"town" json:"town"`
	Region    string         `db:"region" json:"region"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Location returns the record's position as a GeoLocation.
func (r EvidenceRecord) Location() GeoLocation {
	return GeoLocation{Lat: r.Lat, Lng: r.Lng, Town: r.Town, Region: r.Region}
}

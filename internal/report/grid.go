package report

import (
	"sort"

	"github.com/skillhub/evidence-api/internal/models"
)

const (
	// MaxGridPhotos caps how many photos the evidence grid holds.
	MaxGridPhotos = 6
	// PhotosPerRow is the fixed grid width.
	PhotosPerRow = 2
)

// Item is one photo slot in the evidence grid.
type Item struct {
	URL         string
	Type        models.AssessmentType
	Data        []byte
	ContentType string
}

// Header carries the identifying lines printed at the top of a report.
type Header struct {
	SkillHub string
	BatchID  string
	JobRole  string
}

// Document is a rendered report ready for download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FlattenPhotos orders the records' photos for the grid: assessment
// types in their fixed report order, records within a type by capture
// time, photos within a record in capture order. Attendance records are
// excluded and the result is capped at MaxGridPhotos.
func FlattenPhotos(records []models.EvidenceRecord) []Item {
	byType := make(map[models.AssessmentType][]models.EvidenceRecord)
	for _, r := range records {
		byType[r.Type] = append(byType[r.Type], r)
	}

	var items []Item
	for _, t := range models.ReportOrder {
		group := byType[t]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		for _, r := range group {
			for _, url := range r.Photos {
				items = append(items, Item{URL: url, Type: t})
			}
		}
	}

	if len(items) > MaxGridPhotos {
		items = items[:MaxGridPhotos]
	}
	return items
}

// AttendancePhotos returns the attendance photos in capture order.
func AttendancePhotos(records []models.EvidenceRecord) []Item {
	var group []models.EvidenceRecord
	for _, r := range records {
		if r.Type == models.AssessmentAttendance {
			group = append(group, r)
		}
	}
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].CreatedAt.Before(group[j].CreatedAt)
	})

	var items []Item
	for _, r := range group {
		for _, url := range r.Photos {
			items = append(items, Item{URL: url, Type: models.AssessmentAttendance})
		}
	}
	return items
}

// Rows splits the items into grid rows of PhotosPerRow.
func Rows(items []Item) [][]Item {
	var rows [][]Item
	for len(items) > 0 {
		n := PhotosPerRow
		if len(items) < n {
			n = len(items)
		}
		rows = append(rows, items[:n])
		items = items[n:]
	}
	return rows
}

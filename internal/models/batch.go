package models

import "time"

// Batch represents a training batch under a council. The batch ID doubles
// as the assessor's password and the job role as the username.
type Batch struct {
	ID        string    `db:"id" json:"id"`
	CouncilID string    `db:"council_id" json:"council_id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	JobRole   string    `db:"job_role" json:"job_role"`
	SkillHub  string    `db:"skill_hub" json:"skill_hub"`
	Sr        int       `db:"sr" json:"sr"`
	Day       string    `db:"day" json:"day"`
	Month     string    `db:"month" json:"month"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Credentials returns the assessor login pair bound to the batch.
func (b *Batch) Credentials() (username, password string) {
	return b.JobRole, b.BatchID
}

// BatchFilter encapsulates allowed search parameters for listing batches.
type BatchFilter struct {
	CouncilID string
	Search    string
}

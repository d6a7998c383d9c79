package dto

// CreateCouncilRequest payload for registering a sector skill council.
type CreateCouncilRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// CreateBatchRequest payload for registering a batch under a council.
type CreateBatchRequest struct {
	BatchID  string `json:"batch_id" validate:"required"`
	JobRole  string `json:"job_role" validate:"required"`
	SkillHub string `json:"skill_hub"`
	Sr       int    `json:"sr"`
	Day      string `json:"day"`
	Month    string `json:"month"`
}

// BatchCredentialsResponse is the assessor sign-in pair for a batch.
type BatchCredentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

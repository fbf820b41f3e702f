package dtos

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	Title       string `json:"title" binding:"required,min=5"`
	Description string `json:"description" binding:"required,min=50"`
	Location    string `json:"location" binding:"required,notblank"`
	JobType     string `json:"job_type" binding:"required,jobtype"`
	WorkMode    string `json:"work_mode" binding:"required,workmode"`

	// Optional Fields
	Salary string   `json:"salary"`
	Skills []string `json:"skills" binding:"omitempty,max=30,dive,max=50"`
	Tier   string   `json:"tier" binding:"omitempty,tier"` // Defaults to "free" if empty
}

// JobDraft is an extracted posting the employer reviews before posting it.
type JobDraft struct {
	CompanyName string `json:"company_name,omitempty"`
	JobCreationRequest
}

// JobListQuery is bound from the GET /api/jobs query string.
type JobListQuery struct {
	Location string `form:"location"`
	JobType  string `form:"job_type" binding:"omitempty,jobtype"`
	WorkMode string `form:"work_mode" binding:"omitempty,workmode"`
	Tier     string `form:"tier" binding:"omitempty,tier"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

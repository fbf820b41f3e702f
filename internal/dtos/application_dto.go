package dtos

type ApplyRequest struct {
	JobID       uint   `json:"job_id" binding:"required,min=1"`
	CoverLetter string `json:"cover_letter" binding:"max=10000"`
	ResumeURL   string `json:"resume_url" binding:"omitempty,max=2048"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required,appstatus"`
}

type MyApplicationsQuery struct {
	Status string `form:"status" binding:"omitempty,appstatus"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type JobApplicantsQuery struct {
	Status string `form:"status" binding:"omitempty,appstatus"`
}

type ResumeUploadResponse struct {
	ResumeURL string `json:"resume_url"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
}

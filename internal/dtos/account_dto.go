package dtos

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,notblank,max=120"`
	Role     string `json:"role" binding:"required,oneof=job_seeker employer"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

type CompanyCreationRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Website     string `json:"website" binding:"omitempty,url"`
}

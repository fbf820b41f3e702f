package models

import (
	"time"

	"github.com/lib/pq"
)

// Roles a user can register with.
const (
	RoleJobSeeker = "job_seeker"
	RoleEmployer  = "employer"
)

// Subscription plans as reported by the payment collaborator.
const (
	PlanFree = "free"
	PlanPaid = "paid"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	Name             string `json:"name"`
	PasswordHash     string `gorm:"not null" json:"-"`
	Role             string `gorm:"not null;default:'job_seeker'" json:"role"`
	SubscriptionPlan string `gorm:"not null;default:'free'" json:"subscription_plan"`
}

type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// One company per employer account
	OwnerID uint `gorm:"uniqueIndex;not null" json:"owner_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Website     string `json:"website"`

	// 'omitempty' prevents infinite loops when fetching a Job -> Company -> Jobs -> ...
	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Foreign Key
	CompanyID uint `gorm:"index;not null" json:"company_id"`
	// Association: GORM needs Preload() to fill this
	Company *Company `json:"company,omitempty"`

	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Location    string         `gorm:"not null" json:"location"`
	JobType     string         `gorm:"not null" json:"job_type"`
	WorkMode    string         `gorm:"not null" json:"work_mode"`
	Salary      string         `json:"salary,omitempty"`
	Skills      pq.StringArray `gorm:"type:text[]" json:"skills"`

	Tier              string    `gorm:"not null;default:'free';index" json:"tier"`
	Status            string    `gorm:"not null;default:'active';index" json:"status"`
	ExpiresAt         time.Time `gorm:"not null;index" json:"expires_at"`
	ApplicationsCount int       `gorm:"not null;default:0" json:"applications_count"`
}

type Application struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// (job_id, applicant_id) is the storage-level duplicate guard
	JobID       uint  `gorm:"not null;uniqueIndex:idx_applications_job_applicant" json:"job_id"`
	Job         *Job  `json:"job,omitempty"`
	ApplicantID uint  `gorm:"not null;uniqueIndex:idx_applications_job_applicant;index" json:"applicant_id"`
	Applicant   *User `json:"applicant,omitempty"`

	Status      string     `gorm:"not null;default:'pending';index" json:"status"`
	CoverLetter string     `gorm:"type:text" json:"cover_letter"`
	ResumeURL   string     `json:"resume_url"`
	AppliedAt   time.Time  `gorm:"not null;index" json:"applied_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
}

// ApplicationEvent is one row of the status ledger.
type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ApplicationID uint      `gorm:"index;not null" json:"application_id"`
	JobID         uint      `gorm:"not null" json:"job_id"`
	ActorID       uint      `gorm:"not null" json:"actor_id"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `gorm:"not null" json:"to_status"`
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Company{}, &Job{}, &Application{}, &ApplicationEvent{}}
}

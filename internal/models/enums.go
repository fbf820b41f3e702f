package models

import "time"

// Job tiers control sort order and listing lifetime.
const (
	TierFree     = "free"
	TierStandard = "standard"
	TierFeatured = "featured"
)

const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

var (
	JobTypes  = []string{"full-time", "part-time", "freelance", "internship"}
	WorkModes = []string{"on-site", "remote", "hybrid"}
	Tiers     = []string{TierFree, TierStandard, TierFeatured}
)

var tierLifetimeDays = map[string]int{
	TierFree:     7,
	TierStandard: 30,
	TierFeatured: 45,
}

// TierLifetime returns how long a listing of the given tier stays open.
// Unknown tiers get the free lifetime.
func TierLifetime(tier string) time.Duration {
	days, ok := tierLifetimeDays[tier]
	if !ok {
		days = tierLifetimeDays[TierFree]
	}
	return time.Duration(days) * 24 * time.Hour
}

// TierRank orders listings: featured first, free last.
func TierRank(tier string) int {
	switch tier {
	case TierFeatured:
		return 1
	case TierStandard:
		return 2
	default:
		return 3
	}
}

// Application statuses.
const (
	StatusPending     = "pending"
	StatusReviewed    = "reviewed"
	StatusShortlisted = "shortlisted"
	StatusInterview   = "interview"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

var ApplicationStatuses = []string{
	StatusPending, StatusReviewed, StatusShortlisted, StatusInterview, StatusAccepted, StatusRejected,
}

// stage is the position of a status in the review pipeline.
// shortlisted and interview share a stage.
var stage = map[string]int{
	StatusPending:     0,
	StatusReviewed:    1,
	StatusShortlisted: 2,
	StatusInterview:   2,
	StatusAccepted:    3,
	StatusRejected:    3,
}

func IsApplicationStatus(s string) bool {
	_, ok := stage[s]
	return ok
}

func IsTerminalStatus(s string) bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransition reports whether from -> to is a forward move in the review
// pipeline. Any non-terminal status may jump to accepted or rejected, and
// nothing leaves a terminal status.
func CanTransition(from, to string) bool {
	if !IsApplicationStatus(from) || !IsApplicationStatus(to) {
		return false
	}
	if IsTerminalStatus(from) {
		return false
	}
	if IsTerminalStatus(to) {
		return true
	}
	return stage[to] > stage[from] || (stage[to] == stage[from] && from != to)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func IsJobType(s string) bool  { return contains(JobTypes, s) }
func IsWorkMode(s string) bool { return contains(WorkModes, s) }
func IsTier(s string) bool     { return contains(Tiers, s) }

package domain

import (
	"fmt"
	"strings"
)

const (
	// MaxQuota is the hard cap on postings per collection.
	MaxQuota = 100

	// DefaultQuota is used when the caller does not ask for a specific amount.
	DefaultQuota = 50

	// DefaultRadiusKm is the search radius applied when none is given.
	DefaultRadiusKm = 25
)

// JobFilters narrows a search beyond role and location.
type JobFilters struct {
	Remote    *bool  `json:"remote,omitempty"`
	JobType   string `json:"job_type,omitempty"`
	Seniority string `json:"seniority,omitempty"`
}

// JobQuery describes one collection request.
type JobQuery struct {
	Role     string     `json:"role"`
	Location string     `json:"location,omitempty"`
	Quota    int        `json:"quota"`
	RadiusKm int        `json:"radius_km,omitempty"`
	Filters  JobFilters `json:"filters,omitempty"`
}

// Normalize trims the role, applies defaults and caps the quota at MaxQuota.
// Returns:
//   - bool: true when the requested quota was capped.
//   - error: ErrBadRequest when the role is empty.
func (q *JobQuery) Normalize() (bool, error) {
	q.Role = strings.TrimSpace(q.Role)
	if q.Role == "" {
		return false, fmt.Errorf("%w: role must not be empty", ErrBadRequest)
	}
	q.Location = strings.TrimSpace(q.Location)

	if q.Quota <= 0 {
		q.Quota = DefaultQuota
	}
	capped := false
	if q.Quota > MaxQuota {
		q.Quota = MaxQuota
		capped = true
	}

	if q.RadiusKm <= 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	if q.RadiusKm > 100 {
		q.RadiusKm = 100
	}
	return capped, nil
}

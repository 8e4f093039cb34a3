package domain

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	StatusActive JobStatus = "ACTIVE"
	StatusClosed JobStatus = "CLOSED"
)

type LocationType string

const (
	LocationRemote  LocationType = "REMOTE"
	LocationHybrid  LocationType = "HYBRID"
	LocationOnsite  LocationType = "ONSITE"
	LocationUnknown LocationType = "UNKNOWN"
)

type EmploymentType string

const (
	EmploymentIntern   EmploymentType = "INTERN"
	EmploymentNewGrad  EmploymentType = "NEW_GRAD"
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentUnknown  EmploymentType = "UNKNOWN"
)

// Job is the canonical posting record, one per (employer, platform, externalId).
type Job struct {
	ID               int64
	EmployerID       int64
	Platform         Platform
	ExternalID       string
	Title            string
	Location         string
	LocationType     LocationType
	EmploymentType   EmploymentType
	JobURL           string
	ApplyURL         string
	DescriptionText  string
	RequirementsText string
	PostedAt         *time.Time
	FirstSeenAt      time.Time
	LastSeenAt       time.Time
	Status           JobStatus
	RawPayload       json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

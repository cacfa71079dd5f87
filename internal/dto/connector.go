package dto

import "time"

// ConnectorInfo summarizes a registered connector.
type ConnectorInfo struct {
	Name           string   `json:"name"`
	Configured     bool     `json:"configured"`
	SupportedTypes []string `json:"supported_types"`
}

// SendInviteRequest asks a connector to invite a candidate.
type SendInviteRequest struct {
	AssessmentID string     `json:"assessment_id" validate:"required"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// InviteResponse reports the created invitation.
type InviteResponse struct {
	ExternalID string     `json:"external_id"`
	InviteURL  string     `json:"invite_url,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Status     string     `json:"status"`
}

package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportStatus represents the moderation state of a report.
type ReportStatus string

const (
	ReportPending    ReportStatus = "PENDING"
	ReportUnresolved ReportStatus = "UNRESOLVED"
	ReportResolved   ReportStatus = "RESOLVED"
)

// IsValid checks if the report status is valid.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportPending, ReportUnresolved, ReportResolved:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s ReportStatus) String() string {
	return string(s)
}

// Reporter identifies the user who filed a report.
type Reporter struct {
	ID        int64  `json:"id"`
	Alias     string `json:"alias"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Report is a moderation report listed on the admin reports screen.
type Report struct {
	ID        int64        `json:"id"`
	Reporter  Reporter     `json:"user"`
	Title     string       `json:"title"`
	Message   string       `json:"report_message"`
	CreatedAt time.Time    `json:"time_created"`
	Status    ReportStatus `json:"status"`
}

// RecordID implements Record.
func (r Report) RecordID() int64 { return r.ID }

// Timestamp implements Timed.
func (r Report) Timestamp() time.Time { return r.CreatedAt }

// Validate validates the report and returns an error if invalid.
func (r Report) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("invalid report ID: %d", r.ID)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("report %d: title cannot be empty", r.ID)
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("report %d: invalid status: %q", r.ID, r.Status)
	}
	return nil
}

// UnmarshalJSON normalizes the status casing.
func (r *Report) UnmarshalJSON(data []byte) error {
	type plain Report
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Report(raw)
	r.Status = ReportStatus(strings.ToUpper(strings.TrimSpace(string(r.Status))))
	return nil
}

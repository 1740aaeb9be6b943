package domain

import (
	"fmt"
	"strings"
	"time"
)

// Notification represents a claim or return event addressed to the user.
type Notification struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Message       string    `json:"noti_message"`
	CreatedAt     time.Time `json:"time_created"`
	IsRead        bool      `json:"is_read"`
	RelatedPostID int64     `json:"post_id,omitempty"`
}

// RecordID implements Record.
func (n Notification) RecordID() int64 { return n.ID }

// Timestamp implements Timed.
func (n Notification) Timestamp() time.Time { return n.CreatedAt }

// MarkRead returns a copy of the notification flagged as read.
func (n Notification) MarkRead() Notification {
	n.IsRead = true
	return n
}

// MarkUnread returns a copy of the notification flagged as unread.
func (n Notification) MarkUnread() Notification {
	n.IsRead = false
	return n
}

// Validate validates the notification and returns an error if invalid.
func (n Notification) Validate() error {
	if n.ID <= 0 {
		return fmt.Errorf("invalid notification ID: %d", n.ID)
	}
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Message) == "" {
		return fmt.Errorf("notification %d: title and message cannot both be empty", n.ID)
	}
	if n.RelatedPostID < 0 {
		return fmt.Errorf("notification %d: invalid post reference: %d", n.ID, n.RelatedPostID)
	}
	return nil
}

// CountUnread counts unread notifications in a slice.
func CountUnread(notifs []Notification) int {
	count := 0
	for _, n := range notifs {
		if !n.IsRead {
			count++
		}
	}
	return count
}

package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PostStatus represents the server-authoritative lifecycle state of a post.
type PostStatus string

const (
	StatusOpen         PostStatus = "OPEN"
	StatusWithSecurity PostStatus = "WITH_SECURITY"
	StatusReturned     PostStatus = "RETURNED"
	StatusPending      PostStatus = "PENDING"
	StatusArchived     PostStatus = "ARCHIVED"
)

// IsValid checks if the post status is one the backend emits.
func (s PostStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusWithSecurity, StatusReturned, StatusPending, StatusArchived:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s PostStatus) String() string {
	return string(s)
}

// ParsePostStatus parses a status case-insensitively ("open" and "OPEN" are equal).
func ParsePostStatus(status string) (PostStatus, error) {
	ps := PostStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !ps.IsValid() {
		return "", fmt.Errorf("invalid post status: %s", status)
	}
	return ps, nil
}

// Image is a single attachment reference on a post.
type Image struct {
	URL string `json:"url"`
}

// Post is a lost or found item report scoped to a building.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Building    string     `json:"building"`
	Floor       string     `json:"post_floor"`
	Room        string     `json:"nearest_room"`
	FoundAt     time.Time  `json:"found_at"`
	Description string     `json:"post_description"`
	Images      []Image    `json:"images"`
	OwnerID     int64      `json:"usr_id"`
	ThreadID    int64      `json:"thread_id,omitempty"`
	Status      PostStatus `json:"post_status"`
}

// RecordID implements Record.
func (p Post) RecordID() int64 { return p.ID }

// Timestamp implements Timed.
func (p Post) Timestamp() time.Time { return p.FoundAt }

// ImageRefs returns the image URLs in display order.
func (p Post) ImageRefs() []string {
	refs := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.URL != "" {
			refs = append(refs, img.URL)
		}
	}
	return refs
}

// OwnedBy reports whether userID created the post.
func (p Post) OwnedBy(userID int64) bool {
	return userID > 0 && p.OwnerID == userID
}

// Validate validates the post and returns an error if invalid.
func (p Post) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("invalid post ID: %d", p.ID)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("post %d: title cannot be empty", p.ID)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("post %d: invalid status: %q", p.ID, p.Status)
	}
	return nil
}

// UnmarshalJSON accepts the variants the backend emits: user_id or usr_id,
// images as a list of objects or a single URL string, lowercase statuses.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	var raw struct {
		plain
		UserID json.Number     `json:"user_id"`
		Images json.RawMessage `json:"images"`
		Status string          `json:"post_status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post(raw.plain)
	if p.OwnerID == 0 && raw.UserID != "" {
		owner, err := raw.UserID.Int64()
		if err != nil {
			return fmt.Errorf("post user_id: %w", err)
		}
		p.OwnerID = owner
	}
	images, err := decodeImages(raw.Images)
	if err != nil {
		return fmt.Errorf("post images: %w", err)
	}
	p.Images = images
	if raw.Status != "" {
		if status, err := ParsePostStatus(raw.Status); err == nil {
			p.Status = status
		} else {
			// Keep the raw value so Validate rejects it with context.
			p.Status = PostStatus(raw.Status)
		}
	}
	return nil
}

func decodeImages(raw json.RawMessage) ([]Image, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var url string
		if err := json.Unmarshal(raw, &url); err != nil {
			return nil, err
		}
		if url == "" {
			return nil, nil
		}
		return []Image{{URL: url}}, nil
	}
	var images []Image
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, err
	}
	return images, nil
}

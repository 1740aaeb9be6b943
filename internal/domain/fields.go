package domain

import (
	"strconv"
	"strings"
)

// Searchable field names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldRoom        = "room"
	FieldFloor       = "floor"
	FieldBuilding    = "building"
	FieldStatus      = "status"
	FieldMessage     = "message"
	FieldReporter    = "reporter"
	FieldRead        = "read"
)

// SearchField returns the named text field of the post, or "".
func (p Post) SearchField(name string) string {
	switch name {
	case FieldTitle:
		return p.Title
	case FieldDescription:
		return p.Description
	case FieldRoom:
		return p.Room
	case FieldFloor:
		return p.Floor
	case FieldBuilding:
		return p.Building
	case FieldStatus:
		return p.Status.String()
	}
	return ""
}

// SearchField returns the named text field of the notification, or "".
// The read field is "true" or "false".
func (n Notification) SearchField(name string) string {
	switch name {
	case FieldTitle:
		return n.Title
	case FieldMessage:
		return n.Message
	case FieldRead:
		return strconv.FormatBool(n.IsRead)
	}
	return ""
}

// SearchField returns the named text field of the report, or "".
func (r Report) SearchField(name string) string {
	switch name {
	case FieldTitle:
		return r.Title
	case FieldMessage:
		return r.Message
	case FieldReporter:
		return strings.TrimSpace(r.Reporter.Alias)
	case FieldStatus:
		return r.Status.String()
	}
	return ""
}

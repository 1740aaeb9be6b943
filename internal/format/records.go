package format

import (
	"strconv"
	"time"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// PostLayout shows posts with their location and status.
func PostLayout() Layout[domain.Post] {
	return Layout[domain.Post]{
		Columns: []Column[domain.Post]{
			{Name: "ID", Width: 6, Align: AlignRight, Value: func(p domain.Post) string { return formatID(p.ID) }},
			{Name: "Found", Width: 16, Value: func(p domain.Post) string { return formatTime(p.FoundAt) }},
			{Name: "Building", Width: 14, Value: func(p domain.Post) string { return p.Building }},
			{Name: "Floor", Width: 5, Value: func(p domain.Post) string { return p.Floor }},
			{Name: "Room", Width: 8, Value: func(p domain.Post) string { return p.Room }},
			{Name: "Status", Width: 13, Value: func(p domain.Post) string { return p.Status.String() }},
			{Name: "Title", Width: 32, Value: func(p domain.Post) string { return p.Title }},
		},
		Title: func(p domain.Post) string { return p.Title },
		Date:  func(p domain.Post) string { return formatTime(p.FoundAt) },
	}
}

// NotificationLayout shows notifications with an unread marker.
func NotificationLayout() Layout[domain.Notification] {
	return Layout[domain.Notification]{
		Columns: []Column[domain.Notification]{
			{Name: "ID", Width: 6, Align: AlignRight, Value: func(n domain.Notification) string { return formatID(n.ID) }},
			{Name: "", Width: 1, Value: unreadMarker},
			{Name: "Date", Width: 16, Value: func(n domain.Notification) string { return formatTime(n.CreatedAt) }},
			{Name: "Title", Width: 24, Value: func(n domain.Notification) string { return n.Title }},
			{Name: "Message", Width: 40, Value: func(n domain.Notification) string { return n.Message }},
		},
		Title: func(n domain.Notification) string { return unreadMarker(n) + " " + n.Title },
		Date:  func(n domain.Notification) string { return formatTime(n.CreatedAt) },
	}
}

// ReportLayout shows moderation reports.
func ReportLayout() Layout[domain.Report] {
	return Layout[domain.Report]{
		Columns: []Column[domain.Report]{
			{Name: "ID", Width: 6, Align: AlignRight, Value: func(r domain.Report) string { return formatID(r.ID) }},
			{Name: "Date", Width: 16, Value: func(r domain.Report) string { return formatTime(r.CreatedAt) }},
			{Name: "Reporter", Width: 14, Value: func(r domain.Report) string { return r.Reporter.Alias }},
			{Name: "Status", Width: 10, Value: func(r domain.Report) string { return r.Status.String() }},
			{Name: "Title", Width: 24, Value: func(r domain.Report) string { return r.Title }},
			{Name: "Message", Width: 32, Value: func(r domain.Report) string { return r.Message }},
		},
		Title: func(r domain.Report) string { return r.Title },
		Date:  func(r domain.Report) string { return formatTime(r.CreatedAt) },
	}
}

func unreadMarker(n domain.Notification) string {
	if n.IsRead {
		return " "
	}
	return "*"
}

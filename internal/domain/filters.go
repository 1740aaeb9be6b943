package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TabAll is the building tab that shows every post.
const TabAll = "All"

// dateLayout is the date format the backend expects for range filters.
const dateLayout = "2006-01-02"

// ReadFilter selects notifications by read state.
type ReadFilter string

// Read filter constants.
const (
	ReadFilterAny    ReadFilter = ""
	ReadFilterRead   ReadFilter = "read"
	ReadFilterUnread ReadFilter = "unread"
)

// IsValid checks if the read filter is valid.
func (r ReadFilter) IsValid() bool {
	switch r {
	case ReadFilterAny, ReadFilterRead, ReadFilterUnread:
		return true
	default:
		return false
	}
}

// Criteria holds the active filters of a screen. Building, the date range
// and Status are sent to the server; Floor, Query and Read refine the
// already-fetched store on the client.
type Criteria struct {
	Building string
	Days     int
	From     time.Time
	To       time.Time
	Status   string
	Floor    string
	Query    string
	Read     ReadFilter
}

// Normalize returns a copy with the "All" tab and blank values cleared.
func (c Criteria) Normalize() Criteria {
	c.Building = strings.TrimSpace(c.Building)
	if strings.EqualFold(c.Building, TabAll) {
		c.Building = ""
	}
	c.Floor = strings.TrimSpace(c.Floor)
	c.Query = strings.TrimSpace(c.Query)
	c.Status = strings.ToUpper(strings.TrimSpace(c.Status))
	if c.Days < 0 {
		c.Days = 0
	}
	return c
}

// IsEmpty returns true if the criteria has no filters set.
func (c Criteria) IsEmpty() bool {
	c = c.Normalize()
	return c.Building == "" &&
		c.Days == 0 &&
		c.From.IsZero() &&
		c.To.IsZero() &&
		c.Status == "" &&
		c.Floor == "" &&
		c.Query == "" &&
		c.Read == ReadFilterAny
}

// ServerKey identifies the server-side part of the criteria. Two criteria
// with the same key share a fetched store.
func (c Criteria) ServerKey() string {
	c = c.Normalize()
	params := c.ServerParams(time.Time{})
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	if c.Days > 0 {
		parts = append(parts, "days="+strconv.Itoa(c.Days))
	}
	return strings.Join(parts, "&")
}

// ServerParams returns the request parameters for the server-side filters.
// A relative window (Days) is resolved against now; a zero now leaves it out.
func (c Criteria) ServerParams(now time.Time) map[string]string {
	c = c.Normalize()
	params := make(map[string]string)
	if c.Building != "" {
		params["building"] = c.Building
	}
	if c.Status != "" {
		params["status"] = c.Status
	}
	from := c.From
	if c.Days > 0 && !now.IsZero() {
		from = now.AddDate(0, 0, -c.Days)
	}
	if !from.IsZero() {
		params["from"] = from.UTC().Format(dateLayout)
	}
	if !c.To.IsZero() {
		params["to"] = c.To.UTC().Format(dateLayout)
	}
	return params
}

// FilterOptions holds filter parameters as the CLI and TUI receive them.
type FilterOptions struct {
	Building string
	Days     int
	From     string // YYYY-MM-DD
	To       string // YYYY-MM-DD
	Status   string
	Floor    string
	Query    string
	Read     string
}

// ToCriteria converts FilterOptions to Criteria.
func (fo FilterOptions) ToCriteria() (Criteria, error) {
	c := Criteria{
		Building: fo.Building,
		Days:     fo.Days,
		Status:   fo.Status,
		Floor:    fo.Floor,
		Query:    fo.Query,
		Read:     ReadFilter(strings.ToLower(fo.Read)),
	}
	if fo.Days < 0 {
		return Criteria{}, fmt.Errorf("invalid time window: %d days", fo.Days)
	}
	if !c.Read.IsValid() {
		return Criteria{}, fmt.Errorf("invalid read filter: %s", fo.Read)
	}
	var err error
	if fo.From != "" {
		if c.From, err = time.Parse(dateLayout, fo.From); err != nil {
			return Criteria{}, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if fo.To != "" {
		if c.To, err = time.Parse(dateLayout, fo.To); err != nil {
			return Criteria{}, fmt.Errorf("invalid to date: %w", err)
		}
		// Inclusive end of day.
		c.To = c.To.Add(24*time.Hour - time.Nanosecond)
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return Criteria{}, fmt.Errorf("invalid date range: %s is before %s", fo.To, fo.From)
	}
	return c.Normalize(), nil
}

// Where returns the subsequence of items for which keep returns true,
// preserving order.
func Where[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// ByCategory returns posts in the given building tab. "All" and "" return every post.
func ByCategory(posts []Post, tab string) []Post {
	tab = strings.TrimSpace(tab)
	if tab == "" || strings.EqualFold(tab, TabAll) {
		return posts
	}
	return Where(posts, func(p Post) bool { return p.Building == tab })
}

// ByTimeWindow returns records whose timestamp falls within [now-days, now].
func ByTimeWindow[T Timed](items []T, days int, now time.Time) []T {
	if days <= 0 {
		return items
	}
	return ByDateRange(items, now.AddDate(0, 0, -days), now)
}

// ByDateRange returns records whose timestamp falls within [from, to].
// A zero bound is open.
func ByDateRange[T Timed](items []T, from, to time.Time) []T {
	if from.IsZero() && to.IsZero() {
		return items
	}
	return Where(items, func(item T) bool {
		ts := item.Timestamp()
		if !from.IsZero() && ts.Before(from) {
			return false
		}
		if !to.IsZero() && ts.After(to) {
			return false
		}
		return true
	})
}

// ByFloor filters posts by floor.
func ByFloor(posts []Post, floor string) []Post {
	floor = strings.TrimSpace(floor)
	if floor == "" {
		return posts
	}
	return Where(posts, func(p Post) bool { return strings.TrimSpace(p.Floor) == floor })
}

// ByStatus filters posts by status.
func ByStatus(posts []Post, status PostStatus) []Post {
	if status == "" {
		return posts
	}
	return Where(posts, func(p Post) bool { return p.Status == status })
}

// ByReportStatus filters reports by status.
func ByReportStatus(reports []Report, status ReportStatus) []Report {
	if status == "" {
		return reports
	}
	return Where(reports, func(r Report) bool { return r.Status == status })
}

// ByReadState filters notifications by read state.
func ByReadState(notifs []Notification, read ReadFilter) []Notification {
	switch read {
	case ReadFilterRead:
		return Where(notifs, func(n Notification) bool { return n.IsRead })
	case ReadFilterUnread:
		return Where(notifs, func(n Notification) bool { return !n.IsRead })
	default:
		return notifs
	}
}

// FilterPosts applies every post filter of c by conjunction. Query is left
// to the search providers.
func FilterPosts(posts []Post, c Criteria, now time.Time) []Post {
	c = c.Normalize()
	result := ByCategory(posts, c.Building)
	result = ByTimeWindow(result, c.Days, now)
	result = ByDateRange(result, c.From, c.To)
	result = ByFloor(result, c.Floor)
	result = ByStatus(result, PostStatus(c.Status))
	return result
}

// FilterNotifications applies every notification filter of c by conjunction.
func FilterNotifications(notifs []Notification, c Criteria, now time.Time) []Notification {
	c = c.Normalize()
	result := ByTimeWindow(notifs, c.Days, now)
	result = ByDateRange(result, c.From, c.To)
	result = ByReadState(result, c.Read)
	return result
}

// FilterReports applies every report filter of c by conjunction.
func FilterReports(reports []Report, c Criteria, now time.Time) []Report {
	c = c.Normalize()
	result := ByTimeWindow(reports, c.Days, now)
	result = ByDateRange(result, c.From, c.To)
	result = ByReportStatus(result, ReportStatus(c.Status))
	return result
}

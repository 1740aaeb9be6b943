// Package remote talks to the lost-and-found backend's record collections.
package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// Resource describes one paginated collection endpoint.
type Resource struct {
	// Name is used in logs and errors.
	Name   string
	Method string
	Path   string
	// Form sends the page parameters as a form body instead of the query string.
	Form bool
}

// Collection endpoints.
var (
	Dashboard     = Resource{Name: "dashboard", Method: http.MethodPost, Path: "/posts/dashboard", Form: true}
	MyPosts       = Resource{Name: "my_posts", Method: http.MethodGet, Path: "/posts/me"}
	Notifications = Resource{Name: "notifications", Method: http.MethodGet, Path: "/others/notifications"}
	Reports       = Resource{Name: "reports", Method: http.MethodPost, Path: "/others/reports", Form: true}
)

// Params are the request parameters of one page fetch.
type Params struct {
	Page    int
	Limit   int
	Filters map[string]string
}

// Values flattens the parameters into the names the backend expects.
func (p Params) Values() map[string]string {
	values := make(map[string]string, len(p.Filters)+2)
	for k, v := range p.Filters {
		values[k] = v
	}
	values["page"] = strconv.Itoa(p.Page)
	values["number"] = strconv.Itoa(p.Limit)
	return values
}

// RawPage is an undecoded page as returned by a collection.
// Total is domain.UnknownTotal when the endpoint returns a bare array.
type RawPage struct {
	Page  int
	Total int
	Items []json.RawMessage
}

// Mutation is a single remote write confirming an optimistic change.
type Mutation struct {
	// ID is sent as the X-Mutation-ID header so the backend can drop replays.
	ID      string
	Method  string
	Path    string
	Query   map[string]string
	Payload any
}

// Collection is the remote capability the engine consumes.
type Collection interface {
	FetchPage(ctx context.Context, res Resource, params Params) (RawPage, error)
	Mutate(ctx context.Context, m Mutation) error
}

// MarkNotificationRead builds the mutation confirming a read notification.
func MarkNotificationRead(mutationID string, notificationID int64) Mutation {
	return Mutation{
		ID:     mutationID,
		Method: http.MethodPatch,
		Path:   "/others/notifications",
		Query:  map[string]string{"noti_id": strconv.FormatInt(notificationID, 10)},
	}
}

// SetThreadFollow builds the mutation following or unfollowing a thread.
func SetThreadFollow(mutationID string, threadID int64, follow bool) Mutation {
	method := http.MethodPost
	if !follow {
		method = http.MethodDelete
	}
	return Mutation{
		ID:     mutationID,
		Method: method,
		Path:   "/threads/follow",
		Query:  map[string]string{"thread_id": strconv.FormatInt(threadID, 10)},
	}
}

// DeletePost builds the mutation removing an owned post.
func DeletePost(mutationID string, postID int64) Mutation {
	return Mutation{
		ID:     mutationID,
		Method: http.MethodDelete,
		Path:   "/posts",
		Query:  map[string]string{"post_id": strconv.FormatInt(postID, 10)},
	}
}

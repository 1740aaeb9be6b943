package domain

import (
	"sort"
)

// GroupByMode specifies how posts should be grouped.
type GroupByMode string

const (
	GroupByNone     GroupByMode = "none"
	GroupByBuilding GroupByMode = "building"
	GroupByFloor    GroupByMode = "floor"
	GroupByStatus   GroupByMode = "status"
)

// IsValid checks if the group by mode is valid.
func (g GroupByMode) IsValid() bool {
	switch g {
	case GroupByNone, GroupByBuilding, GroupByFloor, GroupByStatus:
		return true
	default:
		return false
	}
}

// String returns the string representation of the group by mode.
func (g GroupByMode) String() string {
	return string(g)
}

// Group represents a group of posts.
type Group struct {
	Key         string
	DisplayName string
	Count       int
	Posts       []Post
}

// GroupResult represents the result of grouping posts.
type GroupResult struct {
	Mode       GroupByMode
	Groups     []Group
	TotalCount int
}

// GroupPosts groups posts by the specified mode. Posts keep their store
// order inside each group; groups are sorted by display name.
func GroupPosts(posts []Post, mode GroupByMode) GroupResult {
	if !mode.IsValid() {
		mode = GroupByNone
	}

	if mode == GroupByNone || len(posts) == 0 {
		return GroupResult{
			Mode:       mode,
			Groups:     []Group{},
			TotalCount: len(posts),
		}
	}

	groupsMap := make(map[string][]Post)
	for _, p := range posts {
		var key string
		switch mode {
		case GroupByBuilding:
			key = p.Building
		case GroupByFloor:
			key = p.Floor
		case GroupByStatus:
			key = p.Status.String()
		}
		groupsMap[key] = append(groupsMap[key], p)
	}

	groups := make([]Group, 0, len(groupsMap))
	for key, groupPosts := range groupsMap {
		groups = append(groups, Group{
			Key:         key,
			DisplayName: displayName(key),
			Count:       len(groupPosts),
			Posts:       groupPosts,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].DisplayName < groups[j].DisplayName
	})

	return GroupResult{
		Mode:       mode,
		Groups:     groups,
		TotalCount: len(posts),
	}
}

func displayName(key string) string {
	if key == "" {
		return "(empty)"
	}
	return key
}

// TabCounts returns the number of posts under each tab, including "All".
func TabCounts(posts []Post, tabs []string) map[string]int {
	counts := make(map[string]int, len(tabs)+1)
	counts[TabAll] = len(posts)
	for _, tab := range tabs {
		if tab == TabAll {
			continue
		}
		counts[tab] = 0
	}
	for _, p := range posts {
		if _, ok := counts[p.Building]; ok && p.Building != TabAll {
			counts[p.Building]++
		}
	}
	return counts
}

package feed

import (
	"context"
	"fmt"
	"sort"
)

// FollowGraph is the follow-edge lookup the feed needs.
type FollowGraph interface {
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// FolloweeSet is the set of profiles a viewer follows. It is the only
// follow-membership test used by visibility and feed composition.
type FolloweeSet struct {
	ids map[uint]struct{}
}

func NewFolloweeSet(ids ...uint) FolloweeSet {
	set := FolloweeSet{ids: make(map[uint]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// Contains reports whether userID is followed. Safe on the zero value.
func (s FolloweeSet) Contains(userID uint) bool {
	_, ok := s.ids[userID]
	return ok
}

func (s FolloweeSet) Len() int {
	return len(s.ids)
}

// Audience returns self plus every followee in ascending order: the owners
// whose activities make up a personalized feed.
func (s FolloweeSet) Audience(self uint) []uint {
	owners := make([]uint, 0, len(s.ids)+1)
	owners = append(owners, self)
	for id := range s.ids {
		if id != self {
			owners = append(owners, id)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners
}

// LoadFollowees fetches the viewer's followee set. Anonymous viewers follow
// nobody and cost no lookup.
func LoadFollowees(ctx context.Context, graph FollowGraph, viewer Viewer) (FolloweeSet, error) {
	viewerID, ok := viewer.ID()
	if !ok {
		return FolloweeSet{}, nil
	}
	ids, err := graph.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return FolloweeSet{}, fmt.Errorf("load followees of %d: %w", viewerID, err)
	}
	return NewFolloweeSet(ids...), nil
}

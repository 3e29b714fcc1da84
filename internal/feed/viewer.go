// Package feed decides which activities a viewer may read and derives the
// social numbers shown next to them: engagement counts, profile stats and
// streaks. Every read path (feed, activity detail, profile) goes through it.
package feed

import "strconv"

// Viewer is the identity a read is performed as. The zero value is an
// anonymous viewer; use Member for an authenticated profile.
type Viewer struct {
	id     uint
	member bool
}

func Anonymous() Viewer {
	return Viewer{}
}

func Member(id uint) Viewer {
	return Viewer{id: id, member: true}
}

// ID returns the viewer's profile ID and whether the viewer is authenticated.
func (v Viewer) ID() (uint, bool) {
	return v.id, v.member
}

// Is reports whether the viewer is the authenticated profile userID.
func (v Viewer) Is(userID uint) bool {
	return v.member && v.id == userID
}

func (v Viewer) String() string {
	if !v.member {
		return "anonymous"
	}
	return "profile:" + strconv.FormatUint(uint64(v.id), 10)
}

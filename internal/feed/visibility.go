package feed

import "github.com/anonto42/focusfeed/backend/internal/models"

// IsVisible reports whether viewer may read activity. Public activities are
// readable by anyone; otherwise only the owner and the owner's followers
// (per followees, the viewer's followee set) may read it. Any visibility
// value other than public is treated as restricted.
func IsVisible(activity models.Activity, viewer Viewer, followees FolloweeSet) bool {
	if activity.IsPublic() {
		return true
	}
	viewerID, ok := viewer.ID()
	if !ok {
		return false
	}
	if viewerID == activity.UserID {
		return true
	}
	return followees.Contains(activity.UserID)
}

// filterVisible keeps the activities viewer may read, preserving order.
func filterVisible(activities []models.Activity, viewer Viewer, followees FolloweeSet) []models.Activity {
	visible := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		if IsVisible(a, viewer, followees) {
			visible = append(visible, a)
		}
	}
	return visible
}

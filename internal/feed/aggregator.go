package feed

import (
	"context"
	"fmt"

	"github.com/anonto42/focusfeed/backend/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Engagement is the derived social state of one activity.
type Engagement struct {
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	ViewerLiked  bool  `json:"is_liked"`
}

// LikeCounter answers batched like lookups.
type LikeCounter interface {
	CountByActivityIDs(ctx context.Context, activityIDs []string) (map[string]int64, error)
	LikedActivityIDs(ctx context.Context, userID uint, activityIDs []string) (map[string]bool, error)
}

// CommentCounter answers batched comment lookups.
type CommentCounter interface {
	CountByActivityIDs(ctx context.Context, activityIDs []string) (map[string]int64, error)
}

// Aggregator computes Engagement for a batch of activities with a fixed
// number of store lookups: like totals, comment totals, and the viewer's own
// likes when the viewer is authenticated. The lookups run concurrently.
type Aggregator struct {
	likes    LikeCounter
	comments CommentCounter
}

func NewAggregator(likes LikeCounter, comments CommentCounter) *Aggregator {
	return &Aggregator{likes: likes, comments: comments}
}

// Aggregate returns one entry per ID in activityIDs, zero-valued when the
// activity has no likes or comments. Store errors are returned unchanged
// apart from wrapping.
func (a *Aggregator) Aggregate(ctx context.Context, activityIDs []string, viewer Viewer) (map[string]Engagement, error) {
	result := make(map[string]Engagement, len(activityIDs))
	ids := make([]string, 0, len(activityIDs))
	for _, id := range activityIDs {
		if _, dup := result[id]; dup {
			continue
		}
		result[id] = Engagement{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return result, nil
	}

	var (
		likeCounts    map[string]int64
		commentCounts map[string]int64
		liked         map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likeCounts, err = a.likes.CountByActivityIDs(gctx, ids)
		if err != nil {
			return fmt.Errorf("count likes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		commentCounts, err = a.comments.CountByActivityIDs(gctx, ids)
		if err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		return nil
	})
	if viewerID, ok := viewer.ID(); ok {
		g.Go(func() error {
			var err error
			liked, err = a.likes.LikedActivityIDs(gctx, viewerID, ids)
			if err != nil {
				return fmt.Errorf("load viewer likes: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		result[id] = Engagement{
			LikeCount:    likeCounts[id],
			CommentCount: commentCounts[id],
			ViewerLiked:  liked[id],
		}
	}
	metrics.ObserveEngagementBatch(len(ids))
	return result, nil
}

package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// ActivityStore is the activity access the read paths need.
type ActivityStore interface {
	ActivityFinder
	GetByID(ctx context.Context, id string) (*models.Activity, error)
}

// CommentStore lists comments and counts them in batches.
type CommentStore interface {
	CommentCounter
	ListByActivity(ctx context.Context, activityID string) ([]models.Comment, error)
}

// ProfileDirectory resolves profiles for annotation and profile pages.
type ProfileDirectory interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	GetPublicByIDs(ctx context.Context, ids []uint) (map[uint]models.Profile, error)
}

// SocialGraph is the follow-edge access the read paths need.
type SocialGraph interface {
	FollowGraph
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
}

// ActivityView is an activity annotated for display.
type ActivityView struct {
	models.Activity
	Engagement
	Owner models.ProfileCompact `json:"owner"`
}

type CommentView struct {
	models.Comment
	Author models.ProfileCompact `json:"author"`
}

// ActivityDetail is a single activity with its full comment thread, oldest first.
type ActivityDetail struct {
	ActivityView
	Comments []CommentView `json:"comments"`
}

// ProfileView is a profile page. IsFollowing is set only when an
// authenticated viewer looks at someone else's profile.
type ProfileView struct {
	models.ProfileCompact
	Bio            string `json:"bio"`
	Stats          Stats  `json:"stats"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	IsFollowing    *bool  `json:"is_following,omitempty"`
}

// FeedResult is a page of annotated activities.
type FeedResult struct {
	Items []ActivityView
	*Page
}

// Service assembles the feed, activity and profile read paths on top of the
// composer, aggregator and visibility policy.
type Service struct {
	composer   *Composer
	aggregator *Aggregator
	activities ActivityStore
	comments   CommentStore
	profiles   ProfileDirectory
	follows    SocialGraph
	now        func() time.Time
	location   *time.Location
}

type Option func(*Service)

// WithClock overrides the clock used for streaks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone whose calendar days streaks are counted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewService(
	activities ActivityStore,
	likes LikeCounter,
	comments CommentStore,
	profiles ProfileDirectory,
	follows SocialGraph,
	opts ...Option,
) *Service {
	s := &Service{
		composer:   NewComposer(activities, follows),
		aggregator: NewAggregator(likes, comments),
		activities: activities,
		comments:   comments,
		profiles:   profiles,
		follows:    follows,
		now:        time.Now,
		location:   time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed returns an annotated page of the requested timeline.
func (s *Service) Feed(ctx context.Context, req FeedRequest) (*FeedResult, error) {
	page, err := s.composer.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := s.annotate(ctx, page.Activities, req.Viewer)
	if err != nil {
		return nil, err
	}
	return &FeedResult{Items: items, Page: page}, nil
}

// OwnerActivities returns an annotated page of one profile's activities.
func (s *Service) OwnerActivities(ctx context.Context, ownerID uint, viewer Viewer, req PageRequest) (*FeedResult, error) {
	if _, err := s.profiles.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	page, err := s.composer.ComposeOwner(ctx, ownerID, viewer, req)
	if err != nil {
		return nil, err
	}
	items, err := s.annotate(ctx, page.Activities, viewer)
	if err != nil {
		return nil, err
	}
	return &FeedResult{Items: items, Page: page}, nil
}

// VisibleActivity loads an activity if viewer may read it. A missing activity
// and a hidden one both yield repositories.ErrNotFound.
func (s *Service) VisibleActivity(ctx context.Context, id string, viewer Viewer) (*models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity.IsPublic() || viewer.Is(activity.UserID) {
		return activity, nil
	}
	followees, err := LoadFollowees(ctx, s.follows, viewer)
	if err != nil {
		return nil, err
	}
	if !IsVisible(*activity, viewer, followees) {
		return nil, fmt.Errorf("activity %s: %w", id, repositories.ErrNotFound)
	}
	return activity, nil
}

// Activity returns one readable activity with engagement and comments.
func (s *Service) Activity(ctx context.Context, id string, viewer Viewer) (*ActivityDetail, error) {
	activity, err := s.VisibleActivity(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	var (
		views    []ActivityView
		comments []CommentView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		views, err = s.annotate(gctx, []models.Activity{*activity}, viewer)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.thread(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ActivityDetail{ActivityView: views[0], Comments: comments}, nil
}

// Comments returns the comment thread of a readable activity, oldest first.
func (s *Service) Comments(ctx context.Context, activityID string, viewer Viewer) ([]CommentView, error) {
	if _, err := s.VisibleActivity(ctx, activityID, viewer); err != nil {
		return nil, err
	}
	return s.thread(ctx, activityID)
}

// Profile builds the profile page for id as seen by viewer. Stats cover only
// the activities viewer may read.
func (s *Service) Profile(ctx context.Context, id uint, viewer Viewer) (*ProfileView, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profileView(ctx, profile, viewer)
}

func (s *Service) ProfileByHandle(ctx context.Context, handle string, viewer Viewer) (*ProfileView, error) {
	profile, err := s.profiles.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	return s.profileView(ctx, profile, viewer)
}

func (s *Service) profileView(ctx context.Context, profile *models.Profile, viewer Viewer) (*ProfileView, error) {
	followees, err := LoadFollowees(ctx, s.follows, viewer)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{ProfileCompact: profile.ToCompact(), Bio: profile.Bio}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history, err := s.composer.History(gctx, profile.ID, viewer, followees)
		if err != nil {
			return err
		}
		view.Stats = ComputeStats(SessionsOf(history), s.now().In(s.location))
		return nil
	})
	g.Go(func() error {
		var err error
		view.FollowerCount, err = s.follows.GetFollowersCount(gctx, profile.ID)
		if err != nil {
			return fmt.Errorf("count followers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		view.FollowingCount, err = s.follows.GetFollowingCount(gctx, profile.ID)
		if err != nil {
			return fmt.Errorf("count following: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if _, ok := viewer.ID(); ok && !viewer.Is(profile.ID) {
		following := followees.Contains(profile.ID)
		view.IsFollowing = &following
	}
	return view, nil
}

// annotate attaches engagement and owner profiles to activities, keeping order.
func (s *Service) annotate(ctx context.Context, activities []models.Activity, viewer Viewer) ([]ActivityView, error) {
	views := make([]ActivityView, 0, len(activities))
	if len(activities) == 0 {
		return views, nil
	}

	ids := make([]string, len(activities))
	ownerIDs := make([]uint, 0, len(activities))
	for i, a := range activities {
		ids[i] = a.ID.Hex()
		ownerIDs = append(ownerIDs, a.UserID)
	}

	var (
		engagement map[string]Engagement
		owners     map[uint]models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		engagement, err = s.aggregator.Aggregate(gctx, ids, viewer)
		return err
	})
	g.Go(func() error {
		var err error
		owners, err = s.profiles.GetPublicByIDs(gctx, uniqueIDs(ownerIDs))
		if err != nil {
			return fmt.Errorf("load owners: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, a := range activities {
		views = append(views, ActivityView{
			Activity:   a,
			Engagement: engagement[ids[i]],
			Owner:      owners[a.UserID].ToCompact(),
		})
	}
	return views, nil
}

func (s *Service) thread(ctx context.Context, activityID string) ([]CommentView, error) {
	comments, err := s.comments.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	views := make([]CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	authorIDs := make([]uint, len(comments))
	for i, c := range comments {
		authorIDs[i] = c.UserID
	}
	authors, err := s.profiles.GetPublicByIDs(ctx, uniqueIDs(authorIDs))
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}
	for _, c := range comments {
		views = append(views, CommentView{Comment: c, Author: authors[c.UserID].ToCompact()})
	}
	return views, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

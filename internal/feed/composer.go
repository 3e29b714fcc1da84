package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/metrics"
	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
)

// Scope selects which timeline a feed request reads.
type Scope string

const (
	ScopeGlobal       Scope = "global"
	ScopePersonalized Scope = "personalized"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

var (
	ErrInvalidScope    = errors.New("scope must be global or personalized")
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
)

// IsValidationError reports whether err is a malformed-request error from this package.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidScope) || errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrInvalidPageSize)
}

// ParseScope parses a scope query value. Empty means global.
func ParseScope(raw string) (Scope, error) {
	switch Scope(raw) {
	case "", ScopeGlobal:
		return ScopeGlobal, nil
	case ScopePersonalized:
		return ScopePersonalized, nil
	default:
		return "", ErrInvalidScope
	}
}

// ActivityFinder is the activity listing the composer reads from.
type ActivityFinder interface {
	Find(ctx context.Context, q repositories.ActivityQuery) ([]models.Activity, error)
	Count(ctx context.Context, q repositories.ActivityQuery) (int64, error)
}

// PageRequest is a page number and size, both 1-based.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

func (p PageRequest) offset() int64 {
	return int64(p.Page-1) * int64(p.PageSize)
}

// FeedRequest asks for one page of a timeline as seen by Viewer.
type FeedRequest struct {
	Scope  Scope
	Viewer Viewer
	PageRequest
}

// EffectiveScope is the scope actually served. A personalized request from
// an anonymous viewer is served the global timeline.
func (r FeedRequest) EffectiveScope() Scope {
	if r.Scope == ScopePersonalized {
		if _, ok := r.Viewer.ID(); ok {
			return ScopePersonalized
		}
	}
	return ScopeGlobal
}

// Page is one page of visible activities, newest first.
type Page struct {
	Scope      Scope
	Activities []models.Activity
	PageRequest
	Total int64
}

// TotalPages is the number of pages Total spans at this page size.
func (p *Page) TotalPages() int64 {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + int64(p.PageSize) - 1) / int64(p.PageSize)
}

// Composer builds feed pages. The store does the ordering: creation time
// descending, then activity ID descending for equal timestamps.
type Composer struct {
	activities ActivityFinder
	follows    FollowGraph
}

func NewComposer(activities ActivityFinder, follows FollowGraph) *Composer {
	return &Composer{activities: activities, follows: follows}
}

// Compose returns the requested page. Pages past the end are empty, not an error.
func (c *Composer) Compose(ctx context.Context, req FeedRequest) (*Page, error) {
	if req.Scope != ScopeGlobal && req.Scope != ScopePersonalized {
		return nil, ErrInvalidScope
	}
	if err := req.PageRequest.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	scope := req.EffectiveScope()

	var followees FolloweeSet
	query := repositories.ActivityQuery{Skip: req.offset(), Limit: int64(req.PageSize)}
	switch scope {
	case ScopePersonalized:
		var err error
		followees, err = LoadFollowees(ctx, c.follows, req.Viewer)
		if err != nil {
			return nil, err
		}
		viewerID, _ := req.Viewer.ID()
		query.OwnerIDs = followees.Audience(viewerID)
	default:
		query.PublicOnly = true
	}

	page, err := c.run(ctx, query, req.Viewer, followees)
	if err != nil {
		return nil, err
	}
	page.Scope = scope
	page.PageRequest = req.PageRequest
	metrics.ObserveFeedCompose(string(scope), time.Since(start))
	return page, nil
}

// ComposeOwner returns a page of one owner's activities as viewer sees them:
// everything for the owner and their followers, public ones for anyone else.
func (c *Composer) ComposeOwner(ctx context.Context, ownerID uint, viewer Viewer, req PageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	followees, err := LoadFollowees(ctx, c.follows, viewer)
	if err != nil {
		return nil, err
	}
	query := repositories.ActivityQuery{
		OwnerIDs:   []uint{ownerID},
		PublicOnly: !canSeeRestricted(ownerID, viewer, followees),
		Skip:       req.offset(),
		Limit:      int64(req.PageSize),
	}
	page, err := c.run(ctx, query, viewer, followees)
	if err != nil {
		return nil, err
	}
	page.PageRequest = req
	return page, nil
}

// History returns every activity of ownerID that viewer may read, newest first.
func (c *Composer) History(ctx context.Context, ownerID uint, viewer Viewer, followees FolloweeSet) ([]models.Activity, error) {
	query := repositories.ActivityQuery{
		OwnerIDs:   []uint{ownerID},
		PublicOnly: !canSeeRestricted(ownerID, viewer, followees),
	}
	activities, err := c.activities.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load history of %d: %w", ownerID, err)
	}
	return filterVisible(activities, viewer, followees), nil
}

func (c *Composer) run(ctx context.Context, query repositories.ActivityQuery, viewer Viewer, followees FolloweeSet) (*Page, error) {
	total, err := c.activities.Count(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count feed: %w", err)
	}
	activities := []models.Activity{}
	if query.Skip < total {
		activities, err = c.activities.Find(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("list feed: %w", err)
		}
	}
	return &Page{
		Activities: filterVisible(activities, viewer, followees),
		Total:      total,
	}, nil
}

// canSeeRestricted reports whether viewer may read ownerID's non-public
// activities. It is IsVisible's predicate for a restricted activity.
func canSeeRestricted(ownerID uint, viewer Viewer, followees FolloweeSet) bool {
	return IsVisible(models.Activity{UserID: ownerID, Visibility: models.VisibilityPrivate}, viewer, followees)
}

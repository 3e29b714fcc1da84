// Package memory is an in-process implementation of the repository
// interfaces. It keeps the same ordering and conflict rules as the database
// backends and is used to exercise handlers and feed composition in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/anonto42/focusfeed/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Backend bundles one store per repository interface.
type Backend struct {
	Profiles   *Profiles
	Activities *Activities
	Likes      *Likes
	Comments   *Comments
	Follows    *Follows
}

func New() *Backend {
	profiles := &Profiles{byID: map[uint]models.Profile{}}
	return &Backend{
		Profiles:   profiles,
		Activities: &Activities{byID: map[primitive.ObjectID]models.Activity{}},
		Likes:      &Likes{edges: map[likeKey]time.Time{}},
		Comments:   &Comments{byID: map[uint]models.Comment{}},
		Follows:    &Follows{edges: map[followKey]time.Time{}, profiles: profiles},
	}
}

var (
	_ repositories.ProfileRepository  = (*Profiles)(nil)
	_ repositories.ActivityRepository = (*Activities)(nil)
	_ repositories.LikeRepository     = (*Likes)(nil)
	_ repositories.CommentRepository  = (*Comments)(nil)
	_ repositories.FollowRepository   = (*Follows)(nil)
)

// Profiles

type Profiles struct {
	mu     sync.RWMutex
	byID   map[uint]models.Profile
	nextID uint
}

// Add stores a profile, assigning an ID when unset.
func (s *Profiles) Add(p models.Profile) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextID++
		p.ID = s.nextID
	} else if p.ID > s.nextID {
		s.nextID = p.ID
	}
	if p.Handle == "" {
		p.Handle = repositories.GeneratedHandle()
	}
	p.Handle = repositories.NormalizeHandle(p.Handle)
	if p.Theme == "" {
		p.Theme = models.ThemeSystem
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.byID[p.ID] = p
	return p
}

func (s *Profiles) GetByID(_ context.Context, id uint) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *Profiles) GetByHandle(_ context.Context, handle string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handle = repositories.NormalizeHandle(handle)
	for _, p := range s.byID {
		if p.Handle == handle {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Profiles) GetPublicByIDs(_ context.Context, ids []uint) (map[uint]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[uint]models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Profiles) ResolveSubject(_ context.Context, subject string, seed models.ProfileSeed) (*models.Profile, error) {
	s.mu.RLock()
	for _, p := range s.byID {
		if p.AuthSubject == subject {
			s.mu.RUnlock()
			return &p, nil
		}
	}
	s.mu.RUnlock()

	p := s.Add(models.Profile{
		AuthSubject: subject,
		DisplayName: seed.DisplayName,
		AvatarURL:   seed.AvatarURL,
	})
	return &p, nil
}

func (s *Profiles) Update(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[profile.ID]; !ok {
		return repositories.ErrNotFound
	}
	profile.Handle = repositories.NormalizeHandle(profile.Handle)
	for id, p := range s.byID {
		if id != profile.ID && p.Handle == profile.Handle {
			return repositories.ErrConflict
		}
	}
	profile.UpdatedAt = time.Now().UTC()
	s.byID[profile.ID] = *profile
	return nil
}

// Activities

type Activities struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Activity
}

func (s *Activities) Create(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if activity.ID.IsZero() {
		activity.ID = primitive.NewObjectID()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now
	s.byID[activity.ID] = *activity
	return nil
}

func (s *Activities) GetByID(_ context.Context, id string) (*models.Activity, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (s *Activities) matching(q repositories.ActivityQuery) []models.Activity {
	var owners map[uint]bool
	if q.OwnerIDs != nil {
		owners = make(map[uint]bool, len(q.OwnerIDs))
		for _, id := range q.OwnerIDs {
			owners[id] = true
		}
	}
	matched := make([]models.Activity, 0)
	for _, a := range s.byID {
		if q.PublicOnly && a.Visibility != models.VisibilityPublic {
			continue
		}
		if owners != nil && !owners[a.UserID] {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})
	return matched
}

func (s *Activities) Find(_ context.Context, q repositories.ActivityQuery) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.matching(q)
	if q.Skip >= int64(len(matched)) {
		return []models.Activity{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *Activities) Count(_ context.Context, q repositories.ActivityQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matching(q))), nil
}

func (s *Activities) Update(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[activity.ID]; !ok {
		return repositories.ErrNotFound
	}
	activity.UpdatedAt = time.Now().UTC()
	s.byID[activity.ID] = *activity
	return nil
}

func (s *Activities) Delete(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[objID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.byID, objID)
	return nil
}

func (s *Activities) IncrementShareCount(_ context.Context, id string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, repositories.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[objID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	a.ShareCount++
	s.byID[objID] = a
	return a.ShareCount, nil
}

// Likes

type likeKey struct {
	activityID string
	userID     uint
}

type Likes struct {
	mu    sync.Mutex
	edges map[likeKey]time.Time
}

func (s *Likes) Like(_ context.Context, activityID string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := likeKey{activityID, userID}
	if _, ok := s.edges[key]; ok {
		return repositories.ErrConflict
	}
	s.edges[key] = time.Now().UTC()
	return nil
}

func (s *Likes) Unlike(_ context.Context, activityID string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := likeKey{activityID, userID}
	if _, ok := s.edges[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.edges, key)
	return nil
}

func (s *Likes) Toggle(_ context.Context, activityID string, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := likeKey{activityID, userID}
	if _, ok := s.edges[key]; ok {
		delete(s.edges, key)
		return false, nil
	}
	s.edges[key] = time.Now().UTC()
	return true, nil
}

func (s *Likes) CountByActivityIDs(_ context.Context, activityIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := toSet(activityIDs)
	counts := make(map[string]int64, len(activityIDs))
	for key := range s.edges {
		if wanted[key.activityID] {
			counts[key.activityID]++
		}
	}
	return counts, nil
}

func (s *Likes) LikedActivityIDs(_ context.Context, userID uint, activityIDs []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	liked := make(map[string]bool, len(activityIDs))
	for _, id := range activityIDs {
		if _, ok := s.edges[likeKey{id, userID}]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

func (s *Likes) DeleteByActivity(_ context.Context, activityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.edges {
		if key.activityID == activityID {
			delete(s.edges, key)
		}
	}
	return nil
}

// Comments

type Comments struct {
	mu     sync.Mutex
	byID   map[uint]models.Comment
	nextID uint
}

func (s *Comments) Create(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	comment.ID = s.nextID
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	s.byID[comment.ID] = *comment
	return nil
}

func (s *Comments) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (s *Comments) ListByActivity(_ context.Context, activityID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := make([]models.Comment, 0)
	for _, c := range s.byID {
		if c.ActivityID == activityID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (s *Comments) Update(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[comment.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Text = comment.Text
	stored.UpdatedAt = time.Now().UTC()
	s.byID[comment.ID] = stored
	*comment = stored
	return nil
}

func (s *Comments) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Comments) CountByActivityIDs(_ context.Context, activityIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := toSet(activityIDs)
	counts := make(map[string]int64, len(activityIDs))
	for _, c := range s.byID {
		if wanted[c.ActivityID] {
			counts[c.ActivityID]++
		}
	}
	return counts, nil
}

func (s *Comments) DeleteByActivity(_ context.Context, activityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.byID {
		if c.ActivityID == activityID {
			delete(s.byID, id)
		}
	}
	return nil
}

// Follows

type followKey struct {
	follower uint
	followee uint
}

type Follows struct {
	mu       sync.Mutex
	edges    map[followKey]time.Time
	profiles *Profiles
}

func (s *Follows) Follow(_ context.Context, followerID, followeeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := followKey{followerID, followeeID}
	if _, ok := s.edges[key]; ok {
		return repositories.ErrConflict
	}
	s.edges[key] = time.Now().UTC()
	return nil
}

func (s *Follows) Unfollow(_ context.Context, followerID, followeeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := followKey{followerID, followeeID}
	if _, ok := s.edges[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.edges, key)
	return nil
}

func (s *Follows) IsFollowing(_ context.Context, followerID, followeeID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.edges[followKey{followerID, followeeID}]
	return ok, nil
}

func (s *Follows) collect(match func(followKey) (uint, bool)) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint, 0)
	for key := range s.edges {
		if id, ok := match(key); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Follows) followerIDs(userID uint) []uint {
	return s.collect(func(k followKey) (uint, bool) { return k.follower, k.followee == userID })
}

func (s *Follows) GetFollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	return s.collect(func(k followKey) (uint, bool) { return k.followee, k.follower == userID }), nil
}

func (s *Follows) GetFollowers(ctx context.Context, userID uint) ([]models.Profile, error) {
	return s.profileList(ctx, s.followerIDs(userID))
}

func (s *Follows) GetFollowing(ctx context.Context, userID uint) ([]models.Profile, error) {
	ids, _ := s.GetFollowingIDs(ctx, userID)
	return s.profileList(ctx, ids)
}

func (s *Follows) GetFollowersCount(_ context.Context, userID uint) (int64, error) {
	return int64(len(s.followerIDs(userID))), nil
}

func (s *Follows) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	ids, _ := s.GetFollowingIDs(ctx, userID)
	return int64(len(ids)), nil
}

func (s *Follows) profileList(ctx context.Context, ids []uint) ([]models.Profile, error) {
	byID, err := s.profiles.GetPublicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the Mongo implementations' semantics:
// same sentinel errors, lowercased identity fields, set semantics for watch
// history and playlist videos, conditional refresh-token rotation.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("username or email already taken: %w", repositories.ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	username = strings.ToLower(username)
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, repositories.ErrNotFound)
}

func (r *fakeUserRepo) GetUserByUsernameOrEmail(_ context.Context, identifier string) (*models.User, error) {
	identifier = strings.ToLower(identifier)
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", identifier, repositories.ErrNotFound)
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateAccountDetails(_ context.Context, id primitive.ObjectID, fullName, email string) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	if fullName != "" {
		u.FullName = fullName
	}
	if email != "" {
		u.Email = strings.ToLower(email)
	}
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, id primitive.ObjectID, avatarURL string) error {
	return r.setField(id, func(u *models.User) { u.Avatar = avatarURL })
}

func (r *fakeUserRepo) UpdateCoverImage(_ context.Context, id primitive.ObjectID, coverURL string) error {
	return r.setField(id, func(u *models.User) { u.CoverImage = coverURL })
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.setField(id, func(u *models.User) { u.Password = passwordHash })
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	return r.setField(id, func(u *models.User) { u.RefreshToken = token })
}

func (r *fakeUserRepo) RotateRefreshToken(_ context.Context, id primitive.ObjectID, current, next string) error {
	u, ok := r.users[id]
	if !ok || u.RefreshToken != current {
		return fmt.Errorf("stored refresh token mismatch for user %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	u.RefreshToken = next
	return nil
}

func (r *fakeUserRepo) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	if u, ok := r.users[id]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (r *fakeUserRepo) AddToWatchHistory(_ context.Context, id, videoID primitive.ObjectID) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	for _, existing := range u.WatchHistory {
		if existing == videoID {
			return nil
		}
	}
	u.WatchHistory = append(u.WatchHistory, videoID)
	return nil
}

func (r *fakeUserRepo) setField(id primitive.ObjectID, apply func(*models.User)) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	apply(u)
	return nil
}

type fakeVideoRepo struct {
	videos map[primitive.ObjectID]*models.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[primitive.ObjectID]*models.Video)}
}

func (r *fakeVideoRepo) CreateVideo(_ context.Context, video *models.Video) error {
	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now()
	video.UpdatedAt = time.Now()
	clone := *video
	r.videos[video.ID] = &clone
	return nil
}

func (r *fakeVideoRepo) GetVideoByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	clone := *v
	return &clone, nil
}

func (r *fakeVideoRepo) GetVideosByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	var out []models.Video
	for _, id := range ids {
		if v, ok := r.videos[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) matches(v *models.Video, filter repositories.VideoFilter) bool {
	if filter.Owner != nil && v.Owner != *filter.Owner {
		return false
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(v.Title), q) && !strings.Contains(strings.ToLower(v.Description), q) {
			return false
		}
	}
	return true
}

func (r *fakeVideoRepo) ListVideos(_ context.Context, filter repositories.VideoFilter) ([]models.Video, error) {
	var all []models.Video
	for _, v := range r.videos {
		if r.matches(v, filter) {
			all = append(all, *v)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "views":
			less = all[i].Views < all[j].Views
		case "duration":
			less = all[i].Duration < all[j].Duration
		case "title":
			less = all[i].Title < all[j].Title
		default:
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		if filter.SortDir == -1 {
			return !less
		}
		return less
	})

	start := filter.Skip
	if start > int64(len(all)) {
		start = int64(len(all))
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], nil
}

func (r *fakeVideoRepo) CountVideos(_ context.Context, filter repositories.VideoFilter) (int64, error) {
	var n int64
	for _, v := range r.videos {
		if r.matches(v, filter) {
			n++
		}
	}
	return n, nil
}

func (r *fakeVideoRepo) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	var out []models.Video
	for _, v := range r.videos {
		if v.Owner == owner {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) UpdateVideo(_ context.Context, id primitive.ObjectID, title, description, thumbnail string) error {
	v, ok := r.videos[id]
	if !ok {
		return fmt.Errorf("video %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	if title != "" {
		v.Title = title
	}
	if description != "" {
		v.Description = description
	}
	if thumbnail != "" {
		v.Thumbnail = thumbnail
	}
	return nil
}

func (r *fakeVideoRepo) SetPublished(_ context.Context, id primitive.ObjectID, published bool) error {
	v, ok := r.videos[id]
	if !ok {
		return fmt.Errorf("video %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	v.IsPublished = published
	return nil
}

func (r *fakeVideoRepo) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	v, ok := r.videos[id]
	if !ok {
		return fmt.Errorf("video %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	v.Views++
	return nil
}

func (r *fakeVideoRepo) DeleteVideo(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.videos[id]; !ok {
		return fmt.Errorf("video %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	delete(r.videos, id)
	return nil
}

type fakeCommentRepo struct {
	comments map[primitive.ObjectID]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	clone := *comment
	r.comments[comment.ID] = &clone
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCommentRepo) ListByVideo(_ context.Context, videoID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	var all []models.Comment
	for _, c := range r.comments {
		if c.Video == videoID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if skip > int64(len(all)) {
		skip = int64(len(all))
	}
	end := skip + limit
	if limit <= 0 || end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end], nil
}

func (r *fakeCommentRepo) CountByVideo(_ context.Context, videoID primitive.ObjectID) (int64, error) {
	var n int64
	for _, c := range r.comments {
		if c.Video == videoID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) UpdateComment(_ context.Context, id primitive.ObjectID, content string) error {
	c, ok := r.comments[id]
	if !ok {
		return fmt.Errorf("comment %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	c.Content = content
	return nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.comments[id]; !ok {
		return fmt.Errorf("comment %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) DeleteByVideo(_ context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for id, c := range r.comments {
		if c.Video == videoID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(r.comments, id)
	}
	return ids, nil
}

type fakeTweetRepo struct {
	tweets map[primitive.ObjectID]*models.Tweet
}

func newFakeTweetRepo() *fakeTweetRepo {
	return &fakeTweetRepo{tweets: make(map[primitive.ObjectID]*models.Tweet)}
}

func (r *fakeTweetRepo) CreateTweet(_ context.Context, tweet *models.Tweet) error {
	tweet.ID = primitive.NewObjectID()
	tweet.CreatedAt = time.Now()
	tweet.UpdatedAt = time.Now()
	clone := *tweet
	r.tweets[tweet.ID] = &clone
	return nil
}

func (r *fakeTweetRepo) GetTweetByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	t, ok := r.tweets[id]
	if !ok {
		return nil, fmt.Errorf("tweet %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTweetRepo) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	var out []models.Tweet
	for _, t := range r.tweets {
		if t.Owner == owner {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTweetRepo) UpdateTweet(_ context.Context, id primitive.ObjectID, content string) error {
	t, ok := r.tweets[id]
	if !ok {
		return fmt.Errorf("tweet %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	t.Content = content
	return nil
}

func (r *fakeTweetRepo) DeleteTweet(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.tweets[id]; !ok {
		return fmt.Errorf("tweet %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	delete(r.tweets, id)
	return nil
}

type likeKey struct {
	kind     models.LikeTarget
	targetID primitive.ObjectID
	likedBy  primitive.ObjectID
}

type fakeLikeRepo struct {
	likes map[likeKey]*models.Like
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[likeKey]*models.Like)}
}

func (r *fakeLikeRepo) FindLike(_ context.Context, kind models.LikeTarget, targetID, likedBy primitive.ObjectID) (*models.Like, error) {
	l, ok := r.likes[likeKey{kind, targetID, likedBy}]
	if !ok {
		return nil, fmt.Errorf("like on %s %s: %w", kind, targetID.Hex(), repositories.ErrNotFound)
	}
	clone := *l
	return &clone, nil
}

func (r *fakeLikeRepo) CreateLike(_ context.Context, like *models.Like) error {
	key := likeKey{like.TargetKind, like.TargetID, like.LikedBy}
	if _, ok := r.likes[key]; ok {
		return fmt.Errorf("already liked: %w", repositories.ErrConflict)
	}
	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now()
	clone := *like
	r.likes[key] = &clone
	return nil
}

func (r *fakeLikeRepo) DeleteLike(_ context.Context, kind models.LikeTarget, targetID, likedBy primitive.ObjectID) error {
	delete(r.likes, likeKey{kind, targetID, likedBy})
	return nil
}

func (r *fakeLikeRepo) CountByTarget(_ context.Context, kind models.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	var n int64
	for key := range r.likes {
		if key.kind == kind && key.targetID == targetID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLikeRepo) CountByTargets(_ context.Context, kind models.LikeTarget, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(targetIDs))
	wanted := make(map[primitive.ObjectID]bool, len(targetIDs))
	for _, id := range targetIDs {
		wanted[id] = true
	}
	for key := range r.likes {
		if key.kind == kind && wanted[key.targetID] {
			counts[key.targetID]++
		}
	}
	return counts, nil
}

func (r *fakeLikeRepo) FilterLikedTargets(_ context.Context, kind models.LikeTarget, likedBy primitive.ObjectID, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	liked := make(map[primitive.ObjectID]bool, len(targetIDs))
	for _, id := range targetIDs {
		if _, ok := r.likes[likeKey{kind, id, likedBy}]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

func (r *fakeLikeRepo) ListVideoIDsLikedBy(_ context.Context, likedBy primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for key := range r.likes {
		if key.kind == models.LikeTargetVideo && key.likedBy == likedBy {
			ids = append(ids, key.targetID)
		}
	}
	return ids, nil
}

func (r *fakeLikeRepo) DeleteByTarget(_ context.Context, kind models.LikeTarget, targetID primitive.ObjectID) error {
	for key := range r.likes {
		if key.kind == kind && key.targetID == targetID {
			delete(r.likes, key)
		}
	}
	return nil
}

func (r *fakeLikeRepo) DeleteByTargets(_ context.Context, kind models.LikeTarget, targetIDs []primitive.ObjectID) error {
	for _, id := range targetIDs {
		if err := r.DeleteByTarget(context.Background(), kind, id); err != nil {
			return err
		}
	}
	return nil
}

type subKey struct {
	subscriber primitive.ObjectID
	channel    primitive.ObjectID
}

type fakeSubscriptionRepo struct {
	subs map[subKey]*models.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[subKey]*models.Subscription)}
}

func (r *fakeSubscriptionRepo) FindSubscription(_ context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	s, ok := r.subs[subKey{subscriber, channel}]
	if !ok {
		return nil, fmt.Errorf("subscription: %w", repositories.ErrNotFound)
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSubscriptionRepo) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	key := subKey{sub.Subscriber, sub.Channel}
	if _, ok := r.subs[key]; ok {
		return fmt.Errorf("already subscribed: %w", repositories.ErrConflict)
	}
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = time.Now()
	clone := *sub
	r.subs[key] = &clone
	return nil
}

func (r *fakeSubscriptionRepo) DeleteSubscription(_ context.Context, subscriber, channel primitive.ObjectID) error {
	delete(r.subs, subKey{subscriber, channel})
	return nil
}

func (r *fakeSubscriptionRepo) IsSubscribed(_ context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	_, ok := r.subs[subKey{subscriber, channel}]
	return ok, nil
}

func (r *fakeSubscriptionRepo) CountSubscribers(_ context.Context, channel primitive.ObjectID) (int64, error) {
	var n int64
	for key := range r.subs {
		if key.channel == channel {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubscriptionRepo) CountSubscribedTo(_ context.Context, subscriber primitive.ObjectID) (int64, error) {
	var n int64
	for key := range r.subs {
		if key.subscriber == subscriber {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubscriptionRepo) ListSubscriberIDs(_ context.Context, channel primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for key := range r.subs {
		if key.channel == channel {
			ids = append(ids, key.subscriber)
		}
	}
	return ids, nil
}

func (r *fakeSubscriptionRepo) ListChannelIDs(_ context.Context, subscriber primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for key := range r.subs {
		if key.subscriber == subscriber {
			ids = append(ids, key.channel)
		}
	}
	return ids, nil
}

type fakePlaylistRepo struct {
	playlists map[primitive.ObjectID]*models.Playlist
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: make(map[primitive.ObjectID]*models.Playlist)}
}

func (r *fakePlaylistRepo) CreatePlaylist(_ context.Context, playlist *models.Playlist) error {
	playlist.ID = primitive.NewObjectID()
	playlist.CreatedAt = time.Now()
	playlist.UpdatedAt = time.Now()
	clone := *playlist
	clone.Videos = append([]primitive.ObjectID(nil), playlist.Videos...)
	r.playlists[playlist.ID] = &clone
	return nil
}

func (r *fakePlaylistRepo) GetPlaylistByID(_ context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	p, ok := r.playlists[id]
	if !ok {
		return nil, fmt.Errorf("playlist %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	clone := *p
	clone.Videos = append([]primitive.ObjectID(nil), p.Videos...)
	return &clone, nil
}

func (r *fakePlaylistRepo) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, p := range r.playlists {
		if p.Owner == owner {
			clone := *p
			clone.Videos = append([]primitive.ObjectID(nil), p.Videos...)
			out = append(out, clone)
		}
	}
	return out, nil
}

func (r *fakePlaylistRepo) AddVideo(_ context.Context, id, videoID primitive.ObjectID) error {
	p, ok := r.playlists[id]
	if !ok {
		return fmt.Errorf("playlist %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	for _, existing := range p.Videos {
		if existing == videoID {
			return nil
		}
	}
	p.Videos = append(p.Videos, videoID)
	return nil
}

func (r *fakePlaylistRepo) RemoveVideo(_ context.Context, id, videoID primitive.ObjectID) error {
	p, ok := r.playlists[id]
	if !ok {
		return fmt.Errorf("playlist %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	p.Videos = removeID(p.Videos, videoID)
	return nil
}

func (r *fakePlaylistRepo) UpdatePlaylist(_ context.Context, id primitive.ObjectID, name, description string) error {
	p, ok := r.playlists[id]
	if !ok {
		return fmt.Errorf("playlist %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	p.Name = name
	p.Description = description
	return nil
}

func (r *fakePlaylistRepo) DeletePlaylist(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.playlists[id]; !ok {
		return fmt.Errorf("playlist %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	delete(r.playlists, id)
	return nil
}

func (r *fakePlaylistRepo) RemoveVideoFromAll(_ context.Context, videoID primitive.ObjectID) error {
	for _, p := range r.playlists {
		p.Videos = removeID(p.Videos, videoID)
	}
	return nil
}

func removeID(ids []primitive.ObjectID, target primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

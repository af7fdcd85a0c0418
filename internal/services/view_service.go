package services

import (
	"context"
	"fmt"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 50
)

// sortableVideoFields is the whitelist for listVideos sorting. Anything else
// falls back to creation time descending.
var sortableVideoFields = map[string]bool{
	"created_at": true,
	"views":      true,
	"duration":   true,
	"title":      true,
}

// ListVideosInput are the untrusted query parameters for a video listing.
type ListVideosInput struct {
	Query   string
	Page    int
	Limit   int
	SortBy  string
	SortDir int
	OwnerID string
}

// ViewService implements the relation aggregation layer: it joins users,
// videos, comments, tweets, likes, subscriptions and playlists into
// denormalized, viewer-scoped views. Joins are explicit: fetch the base page,
// batch-fetch related documents by foreign-key set, assemble via maps keyed
// by ID. View DTOs carry no sensitive fields, so projection safety holds by
// construction.
type ViewService struct {
	users     repositories.UserRepository
	videos    repositories.VideoRepository
	comments  repositories.CommentRepository
	tweets    repositories.TweetRepository
	likes     repositories.LikeRepository
	subs      repositories.SubscriptionRepository
	playlists repositories.PlaylistRepository
	history   *HistoryService
}

// NewViewService creates a new ViewService
func NewViewService(
	users repositories.UserRepository,
	videos repositories.VideoRepository,
	comments repositories.CommentRepository,
	tweets repositories.TweetRepository,
	likes repositories.LikeRepository,
	subs repositories.SubscriptionRepository,
	playlists repositories.PlaylistRepository,
	history *HistoryService,
) *ViewService {
	return &ViewService{
		users:     users,
		videos:    videos,
		comments:  comments,
		tweets:    tweets,
		likes:     likes,
		subs:      subs,
		playlists: playlists,
		history:   history,
	}
}

// GetChannelProfile returns the public channel view for a username,
// case-insensitive, with subscription counts and the viewer-scoped
// isSubscribed flag.
func (s *ViewService) GetChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (*models.ChannelProfile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	subscriberCount, err := s.subs.CountSubscribers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	subscribedToCount, err := s.subs.CountSubscribedTo(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewer != nil {
		isSubscribed, err = s.subs.IsSubscribed(ctx, *viewer, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &models.ChannelProfile{
		ID:                user.ID,
		Username:          user.Username,
		FullName:          user.FullName,
		Avatar:            user.Avatar,
		CoverImage:        user.CoverImage,
		SubscriberCount:   subscriberCount,
		SubscribedToCount: subscribedToCount,
		IsSubscribed:      isSubscribed,
	}, nil
}

// GetVideoDetail returns the full video view and triggers the watch-history /
// view-counter side effects. The side effects are best-effort and never fail
// the read; the returned view reflects the incremented counter.
func (s *ViewService) GetVideoDetail(ctx context.Context, videoID string, viewer *primitive.ObjectID) (*models.VideoView, error) {
	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, fmt.Errorf("malformed video id %q: %w", videoID, ErrValidation)
	}

	video, err := s.videos.GetVideoByID(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.buildVideoViews(ctx, []models.Video{*video}, viewer)
	if err != nil {
		return nil, err
	}
	view := &views[0]

	s.history.RecordView(ctx, id, viewer)
	view.Views++

	return view, nil
}

// ListVideos returns a sorted, paginated page of videos matching the search
// query, each augmented with owner projection, like count and the viewer
// flag. Page and limit are clamped; unknown sort fields fall back to
// creation time descending.
func (s *ViewService) ListVideos(ctx context.Context, input ListVideosInput, viewer *primitive.ObjectID) (*models.VideoPage, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	sortBy := input.SortBy
	sortDir := input.SortDir
	if !sortableVideoFields[sortBy] {
		sortBy = "created_at"
		sortDir = -1
	}
	if sortDir != 1 && sortDir != -1 {
		sortDir = -1
	}

	filter := repositories.VideoFilter{
		Query:   input.Query,
		SortBy:  sortBy,
		SortDir: sortDir,
		Skip:    int64((page - 1) * limit),
		Limit:   int64(limit),
	}
	if input.OwnerID != "" {
		ownerID, err := primitive.ObjectIDFromHex(input.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("malformed owner id %q: %w", input.OwnerID, ErrValidation)
		}
		filter.Owner = &ownerID
	}

	videos, err := s.videos.ListVideos(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.videos.CountVideos(ctx, filter)
	if err != nil {
		return nil, err
	}

	views, err := s.buildVideoViews(ctx, videos, viewer)
	if err != nil {
		return nil, err
	}

	return &models.VideoPage{
		Videos: views,
		Meta:   models.NewPageMeta(page, limit, total),
	}, nil
}

// ListComments returns a paginated page of comments on a video, each with
// owner projection, like count and the viewer-scoped hasLiked flag.
func (s *ViewService) ListComments(ctx context.Context, videoID string, page, limit int, viewer *primitive.ObjectID) (*models.CommentPage, error) {
	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, fmt.Errorf("malformed video id %q: %w", videoID, ErrValidation)
	}
	page, limit = normalizePage(page, limit)

	comments, err := s.comments.ListByVideo(ctx, id, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, err
	}
	total, err := s.comments.CountByVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	commentIDs := make([]primitive.ObjectID, len(comments))
	ownerIDs := make([]primitive.ObjectID, len(comments))
	for i, c := range comments {
		commentIDs[i] = c.ID
		ownerIDs[i] = c.Owner
	}

	owners, err := s.ownerMap(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.CountByTargets(ctx, models.LikeTargetComment, commentIDs)
	if err != nil {
		return nil, err
	}
	liked, err := s.likedMap(ctx, models.LikeTargetComment, viewer, commentIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = models.CommentView{
			Comment:   c,
			Owner:     owners[c.Owner],
			LikeCount: likeCounts[c.ID],
			HasLiked:  liked[c.ID],
		}
	}

	return &models.CommentPage{
		Comments: views,
		Meta:     models.NewPageMeta(page, limit, total),
	}, nil
}

// ListUserTweets returns a user's tweets newest-first, each with owner
// projection, like count and the viewer-scoped hasLiked flag.
func (s *ViewService) ListUserTweets(ctx context.Context, userID string, viewer *primitive.ObjectID) ([]models.TweetView, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("malformed user id %q: %w", userID, ErrValidation)
	}

	tweets, err := s.tweets.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	tweetIDs := make([]primitive.ObjectID, len(tweets))
	for i, t := range tweets {
		tweetIDs[i] = t.ID
	}

	owners, err := s.ownerMap(ctx, []primitive.ObjectID{id})
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.CountByTargets(ctx, models.LikeTargetTweet, tweetIDs)
	if err != nil {
		return nil, err
	}
	liked, err := s.likedMap(ctx, models.LikeTargetTweet, viewer, tweetIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.TweetView, len(tweets))
	for i, t := range tweets {
		views[i] = models.TweetView{
			Tweet:     t,
			Owner:     owners[t.Owner],
			LikeCount: likeCounts[t.ID],
			HasLiked:  liked[t.ID],
		}
	}
	return views, nil
}

// GetPlaylist returns a playlist with its published videos embedded and the
// computed video count.
func (s *ViewService) GetPlaylist(ctx context.Context, playlistID string) (*models.PlaylistView, error) {
	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return nil, fmt.Errorf("malformed playlist id %q: %w", playlistID, ErrValidation)
	}

	playlist, err := s.playlists.GetPlaylistByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildPlaylistView(ctx, playlist)
}

// ListUserPlaylists returns every playlist of a user with published videos
// embedded.
func (s *ViewService) ListUserPlaylists(ctx context.Context, userID string) ([]models.PlaylistView, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("malformed user id %q: %w", userID, ErrValidation)
	}

	playlists, err := s.playlists.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	views := make([]models.PlaylistView, 0, len(playlists))
	for i := range playlists {
		view, err := s.buildPlaylistView(ctx, &playlists[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// GetChannelStats returns the dashboard aggregates for a channel: published
// video count, summed views and likes across published videos, and the
// subscriber count.
func (s *ViewService) GetChannelStats(ctx context.Context, ownerID primitive.ObjectID) (*models.ChannelStats, error) {
	videos, err := s.videos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	published := make([]models.Video, 0, len(videos))
	videoIDs := make([]primitive.ObjectID, 0, len(videos))
	for _, v := range videos {
		if v.IsPublished {
			published = append(published, v)
			videoIDs = append(videoIDs, v.ID)
		}
	}

	likeCounts, err := s.likes.CountByTargets(ctx, models.LikeTargetVideo, videoIDs)
	if err != nil {
		return nil, err
	}

	stats := &models.ChannelStats{TotalVideos: int64(len(published))}
	for _, v := range published {
		stats.TotalViews += v.Views
		stats.TotalLikes += likeCounts[v.ID]
	}

	stats.TotalSubscribers, err = s.subs.CountSubscribers(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetChannelVideos returns every video of a channel with owner projection and
// like counts, for the owner's dashboard.
func (s *ViewService) GetChannelVideos(ctx context.Context, ownerID primitive.ObjectID) ([]models.VideoView, error) {
	videos, err := s.videos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.buildVideoViews(ctx, videos, &ownerID)
}

// GetLikedVideos returns the videos a user has liked, as full video views.
func (s *ViewService) GetLikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.VideoView, error) {
	videoIDs, err := s.likes.ListVideoIDsLikedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	videos, err := s.videos.GetVideosByIDs(ctx, videoIDs)
	if err != nil {
		return nil, err
	}
	return s.buildVideoViews(ctx, videos, &userID)
}

// GetWatchHistory returns the user's watch history as full video views, in
// stored (append) order. Deleted videos drop out of the result silently.
func (s *ViewService) GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoView, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	videos, err := s.videos.GetVideosByIDs(ctx, user.WatchHistory)
	if err != nil {
		return nil, err
	}

	// Restore history order; the batch fetch does not preserve it.
	byID := make(map[primitive.ObjectID]models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	ordered := make([]models.Video, 0, len(videos))
	for _, id := range user.WatchHistory {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}

	return s.buildVideoViews(ctx, ordered, &userID)
}

// buildVideoViews joins a batch of videos with their owners, like counts and
// the viewer's liked flags using three batch queries.
func (s *ViewService) buildVideoViews(ctx context.Context, videos []models.Video, viewer *primitive.ObjectID) ([]models.VideoView, error) {
	videoIDs := make([]primitive.ObjectID, len(videos))
	ownerIDs := make([]primitive.ObjectID, len(videos))
	for i, v := range videos {
		videoIDs[i] = v.ID
		ownerIDs[i] = v.Owner
	}

	owners, err := s.ownerMap(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.CountByTargets(ctx, models.LikeTargetVideo, videoIDs)
	if err != nil {
		return nil, err
	}
	liked, err := s.likedMap(ctx, models.LikeTargetVideo, viewer, videoIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.VideoView, len(videos))
	for i, v := range videos {
		views[i] = models.VideoView{
			Video:     v,
			Owner:     owners[v.Owner],
			LikeCount: likeCounts[v.ID],
			IsLiked:   liked[v.ID],
		}
	}
	return views, nil
}

// ownerMap batch-fetches users and projects them down to OwnerInfo. A missing
// owner yields a zero projection rather than an error: a broken join must not
// crash the view.
func (s *ViewService) ownerMap(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.OwnerInfo, error) {
	users, err := s.users.GetUsersByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	owners := make(map[primitive.ObjectID]models.OwnerInfo, len(users))
	for i := range users {
		owners[users[i].ID] = users[i].ToOwnerInfo()
	}
	return owners, nil
}

func (s *ViewService) likedMap(ctx context.Context, kind models.LikeTarget, viewer *primitive.ObjectID, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	if viewer == nil {
		return map[primitive.ObjectID]bool{}, nil
	}
	return s.likes.FilterLikedTargets(ctx, kind, *viewer, targetIDs)
}

func (s *ViewService) buildPlaylistView(ctx context.Context, playlist *models.Playlist) (*models.PlaylistView, error) {
	videos, err := s.videos.GetVideosByIDs(ctx, playlist.Videos)
	if err != nil {
		return nil, err
	}

	published := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if v.IsPublished {
			published = append(published, v)
		}
	}

	views, err := s.buildVideoViews(ctx, published, nil)
	if err != nil {
		return nil, err
	}

	return &models.PlaylistView{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Owner:       playlist.Owner,
		Videos:      views,
		VideoCount:  len(views),
	}, nil
}

// normalizePage clamps page and limit to sane positive values.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

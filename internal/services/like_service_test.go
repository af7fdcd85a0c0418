package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type likeFixture struct {
	svc    *LikeService
	users  *fakeUserRepo
	videos *fakeVideoRepo
	likes  *fakeLikeRepo
	subs   *fakeSubscriptionRepo
}

func newLikeFixture() *likeFixture {
	users := newFakeUserRepo()
	videos := newFakeVideoRepo()
	comments := newFakeCommentRepo()
	tweets := newFakeTweetRepo()
	likes := newFakeLikeRepo()
	subs := newFakeSubscriptionRepo()
	return &likeFixture{
		svc:    NewLikeService(likes, subs, users, videos, comments, tweets),
		users:  users,
		videos: videos,
		likes:  likes,
		subs:   subs,
	}
}

func (f *likeFixture) addUser(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", FullName: username}
	require.NoError(t, f.users.CreateUser(context.Background(), user))
	return user.ID
}

func (f *likeFixture) addVideo(t *testing.T, owner primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	video := &models.Video{Title: "v", Owner: owner, IsPublished: true}
	require.NoError(t, f.videos.CreateVideo(context.Background(), video))
	return video.ID
}

func TestToggleLikeFlipsState(t *testing.T) {
	f := newLikeFixture()
	owner := f.addUser(t, "owner")
	liker := f.addUser(t, "liker")
	videoID := f.addVideo(t, owner)

	liked, err := f.svc.ToggleLike(context.Background(), models.LikeTargetVideo, videoID.Hex(), liker)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := f.likes.CountByTarget(context.Background(), models.LikeTargetVideo, videoID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	liked, err = f.svc.ToggleLike(context.Background(), models.LikeTargetVideo, videoID.Hex(), liker)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err = f.likes.CountByTarget(context.Background(), models.LikeTargetVideo, videoID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestToggleLikeUnknownKind(t *testing.T) {
	f := newLikeFixture()
	liker := f.addUser(t, "liker")

	_, err := f.svc.ToggleLike(context.Background(), models.LikeTarget("playlist"), primitive.NewObjectID().Hex(), liker)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggleLikeMalformedID(t *testing.T) {
	f := newLikeFixture()
	liker := f.addUser(t, "liker")

	_, err := f.svc.ToggleLike(context.Background(), models.LikeTargetVideo, "zzz", liker)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggleLikeMissingTarget(t *testing.T) {
	f := newLikeFixture()
	liker := f.addUser(t, "liker")

	_, err := f.svc.ToggleLike(context.Background(), models.LikeTargetVideo, primitive.NewObjectID().Hex(), liker)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestToggleLikePerKindIndependence(t *testing.T) {
	f := newLikeFixture()
	owner := f.addUser(t, "owner")
	liker := f.addUser(t, "liker")
	videoID := f.addVideo(t, owner)

	comment := &models.Comment{Content: "c", Video: videoID, Owner: owner}
	comments := newFakeCommentRepo()
	require.NoError(t, comments.CreateComment(context.Background(), comment))

	// Rebuild the service around the comment repo that holds the fixture.
	f.svc = NewLikeService(f.likes, f.subs, f.users, f.videos, comments, newFakeTweetRepo())

	_, err := f.svc.ToggleLike(context.Background(), models.LikeTargetVideo, videoID.Hex(), liker)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(context.Background(), models.LikeTargetComment, comment.ID.Hex(), liker)
	require.NoError(t, err)

	videoCount, err := f.likes.CountByTarget(context.Background(), models.LikeTargetVideo, videoID)
	require.NoError(t, err)
	commentCount, err := f.likes.CountByTarget(context.Background(), models.LikeTargetComment, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), videoCount)
	assert.Equal(t, int64(1), commentCount)
}

func TestToggleSubscription(t *testing.T) {
	f := newLikeFixture()
	channel := f.addUser(t, "channel")
	subscriber := f.addUser(t, "subscriber")

	subscribed, err := f.svc.ToggleSubscription(context.Background(), channel.Hex(), subscriber)
	require.NoError(t, err)
	assert.True(t, subscribed)

	count, err := f.subs.CountSubscribers(context.Background(), channel)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	subscribed, err = f.svc.ToggleSubscription(context.Background(), channel.Hex(), subscriber)
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestToggleSubscriptionSelfRejected(t *testing.T) {
	f := newLikeFixture()
	user := f.addUser(t, "solo")

	_, err := f.svc.ToggleSubscription(context.Background(), user.Hex(), user)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggleSubscriptionUnknownChannel(t *testing.T) {
	f := newLikeFixture()
	subscriber := f.addUser(t, "subscriber")

	_, err := f.svc.ToggleSubscription(context.Background(), primitive.NewObjectID().Hex(), subscriber)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestNotification(target primitive.ObjectID, createdAt time.Time) *models.Notification {
	alert := &models.PanicAlert{Protocol: utils.GenerateProtocol(createdAt), UserID: primitive.NewObjectID(), Latitude: 1, Longitude: 2}
	n := models.NewAlertNotification(alert, target, "title", "body")
	n.CreatedAt = createdAt
	return n
}

func TestAppendPublishesAndBroadcasts(t *testing.T) {
	repo := newFakeNotificationRepo()
	publisher := &fakePublisher{}
	broadcaster := &fakeBroadcaster{}
	svc := NewNotificationService(repo, publisher, broadcaster, nil, nil)
	target := primitive.NewObjectID()

	n := newTestNotification(target, time.Time{})
	n.IsRead = true
	require.NoError(t, svc.Append(context.Background(), n))

	assert.False(t, n.IsRead)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Equal(t, models.DeliveryStatusPending, repo.status(n.ID))

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, n.ID.Hex(), events[0].NotificationID)
	assert.NotEmpty(t, events[0].EventID)
	assert.Equal(t, string(models.NotificationTypePanicAlert), events[0].Type)

	sent := broadcaster.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, websocket.MessageTypeNotifications, sent[0].messageType)
	list, ok := sent[0].data.(*models.NotificationList)
	require.True(t, ok)
	assert.Equal(t, int64(1), list.UnreadCount)
	assert.Len(t, list.Items, 1)
}

func TestAppendPublishFailureIsRecorded(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakePublisher{err: errors.New("broker down")}, nil, nil, nil)

	n := newTestNotification(primitive.NewObjectID(), time.Now())
	require.NoError(t, svc.Append(context.Background(), n))

	assert.Equal(t, models.DeliveryStatusFailed, repo.status(n.ID))
	assert.Equal(t, eventPublishFailed, repo.statusErrs[n.ID])
}

func TestAppendStorageFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.createErr = errStorage
	publisher := &fakePublisher{}
	svc := NewNotificationService(repo, publisher, nil, nil, nil)

	err := svc.Append(context.Background(), newTestNotification(primitive.NewObjectID(), time.Now()))
	assert.ErrorIs(t, err, errStorage)
	assert.Empty(t, publisher.published())
}

func TestListForUserIsPureAndNewestFirst(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil, nil, nil, nil)
	target := primitive.NewObjectID()
	base := time.Now()

	older := newTestNotification(target, base.Add(-time.Minute))
	newer := newTestNotification(target, base)
	require.NoError(t, svc.Append(context.Background(), older))
	require.NoError(t, svc.Append(context.Background(), newer))
	require.NoError(t, svc.Append(context.Background(), newTestNotification(primitive.NewObjectID(), base)))

	items, total, err := svc.ListForUser(context.Background(), target, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)

	unread, err := svc.UnreadCount(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)
}

func TestMarkAllReadIsIdempotent(t *testing.T) {
	repo := newFakeNotificationRepo()
	broadcaster := &fakeBroadcaster{}
	svc := NewNotificationService(repo, nil, broadcaster, nil, nil)
	target := primitive.NewObjectID()

	require.NoError(t, svc.Append(context.Background(), newTestNotification(target, time.Now())))
	require.NoError(t, svc.Append(context.Background(), newTestNotification(target, time.Now())))

	modified, err := svc.MarkAllRead(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, int64(2), modified)

	for _, n := range repo.all() {
		assert.True(t, n.IsRead)
	}

	broadcasts := len(broadcaster.messages())
	modified, err = svc.MarkAllRead(context.Background(), target)
	require.NoError(t, err)
	assert.Zero(t, modified)
	assert.Len(t, broadcaster.messages(), broadcasts)
}

func TestMarkReadOnlyByTarget(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, nil, nil, nil, nil)
	target := primitive.NewObjectID()

	n := newTestNotification(target, time.Now())
	require.NoError(t, svc.Append(context.Background(), n))

	err := svc.MarkRead(context.Background(), primitive.NewObjectID(), n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, n.IsRead)

	require.NoError(t, svc.MarkRead(context.Background(), target, n.ID))
	assert.True(t, n.IsRead)
	require.NoError(t, svc.MarkRead(context.Background(), target, n.ID))
}

func TestSnapshotEmptyInbox(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationRepo(), nil, nil, nil, nil)

	list, err := svc.Snapshot(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, list.Items)
	assert.Zero(t, list.UnreadCount)
}

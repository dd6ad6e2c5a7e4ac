package services

import (
	"context"
	"errors"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type liveFeed struct {
	notifications NotificationService
	contacts      TrustedContactService
}

// NewLiveFeed builds the connect-time snapshot for the websocket feed: the
// notification list and the current trusted contact.
func NewLiveFeed(notifications NotificationService, contacts TrustedContactService) websocket.SnapshotProvider {
	return &liveFeed{notifications: notifications, contacts: contacts}
}

func (f *liveFeed) Snapshot(ctx context.Context, userID primitive.ObjectID) ([]websocket.Message, error) {
	list, err := f.notifications.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages := []websocket.Message{
		websocket.NewMessage(websocket.MessageTypeNotifications, userID, list),
	}

	contact, err := f.contacts.GetContact(ctx, userID)
	switch {
	case err == nil:
		messages = append(messages, websocket.NewMessage(websocket.MessageTypeTrustedContact, userID, contact))
	case !errors.Is(err, ErrNotFound):
		return messages, err
	}

	return messages, nil
}

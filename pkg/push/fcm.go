package push

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type FCMProvider struct {
	client *messaging.Client
}

func NewFCMProvider(ctx context.Context, credentialsFile, projectID string) (*FCMProvider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var appConfig *firebase.Config
	if projectID != "" {
		appConfig = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMProvider{
		client: client,
	}, nil
}

func (f *FCMProvider) Name() string {
	return "fcm"
}

func (f *FCMProvider) SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error) {
	message := buildFCMMessage(request)

	messageID, err := f.client.Send(ctx, message)
	if err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
			err = fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return &NotificationResponse{
			Success:  false,
			Error:    err.Error(),
			Token:    request.Token,
			Provider: f.Name(),
		}, err
	}

	return &NotificationResponse{
		MessageID: messageID,
		Success:   true,
		Token:     request.Token,
		Provider:  f.Name(),
	}, nil
}

func buildFCMMessage(request *NotificationRequest) *messaging.Message {
	message := &messaging.Message{
		Token: request.Token,
		Data:  request.Data,
		Notification: &messaging.Notification{
			Title: request.Title,
			Body:  request.Body,
		},
	}

	android := &messaging.AndroidConfig{
		Priority:    "normal",
		CollapseKey: request.CollapseKey,
		Notification: &messaging.AndroidNotification{
			Title: request.Title,
			Body:  request.Body,
			Sound: request.Sound,
		},
	}
	if request.Priority == "high" {
		android.Priority = "high"
	}
	if request.TTL > 0 {
		ttl := time.Duration(request.TTL) * time.Second
		android.TTL = &ttl
	}
	if cfg := request.Android; cfg != nil {
		if cfg.Priority != "" {
			android.Priority = cfg.Priority
		}
		if cfg.Sound != "" {
			android.Notification.Sound = cfg.Sound
		}
		android.Notification.Color = cfg.Color
		android.Notification.Tag = cfg.Tag
		android.Notification.ClickAction = cfg.ClickAction
		android.Notification.ChannelID = cfg.ChannelID
	}
	message.Android = android

	aps := &messaging.Aps{
		Alert: &messaging.ApsAlert{
			Title: request.Title,
			Body:  request.Body,
		},
		Sound: request.Sound,
	}
	if request.IOS != nil {
		if request.IOS.Sound != "" {
			aps.Sound = request.IOS.Sound
		}
		aps.Category = request.IOS.Category
	}
	headers := map[string]string{"apns-priority": "5"}
	if request.Priority == "high" {
		headers["apns-priority"] = "10"
	}
	message.APNS = &messaging.APNSConfig{
		Headers: headers,
		Payload: &messaging.APNSPayload{Aps: aps},
	}

	return message
}

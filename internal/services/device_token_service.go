package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DeviceTokenService interface {
	RegisterToken(ctx context.Context, caller *models.Caller, registration *models.DeviceTokenRegistration) (*models.DeviceToken, error)
	GetToken(ctx context.Context, userID primitive.ObjectID) (*models.DeviceToken, error)
}

type deviceTokenService struct {
	tokenRepo interfaces.DeviceTokenRepository
	logger    *logger.Logger
}

func NewDeviceTokenService(tokenRepo interfaces.DeviceTokenRepository, log *logger.Logger) DeviceTokenService {
	if log == nil {
		log = logger.NewNop()
	}
	return &deviceTokenService{
		tokenRepo: tokenRepo,
		logger:    log,
	}
}

// RegisterToken stores the caller's push token, replacing any previous one.
// A denied permission leaves the registry untouched.
func (s *deviceTokenService) RegisterToken(ctx context.Context, caller *models.Caller, registration *models.DeviceTokenRegistration) (*models.DeviceToken, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if registration == nil {
		return nil, fmt.Errorf("%w: registration is required", ErrValidation)
	}

	log := s.logger.WithContext(ctx).WithUserID(caller.UserID)

	if registration.Permission != models.PermissionGranted {
		log.WithField("permission", registration.Permission).Warn("Push permission not granted, token not registered")
		return nil, ErrPermissionDenied
	}

	token := strings.TrimSpace(registration.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrValidation)
	}

	saved, err := s.tokenRepo.Upsert(ctx, &models.DeviceToken{
		UserID:   caller.UserID,
		Token:    token,
		Platform: registration.Platform,
	})
	if err != nil {
		log.WithError(err).Error("Failed to store device token")
		return nil, err
	}

	log.WithField("platform", saved.Platform).Info("Device token registered")
	return saved, nil
}

func (s *deviceTokenService) GetToken(ctx context.Context, userID primitive.ObjectID) (*models.DeviceToken, error) {
	token, err := s.tokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return token, nil
}

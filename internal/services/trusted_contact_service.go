package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrustedContactService interface {
	SetContact(ctx context.Context, caller *models.Caller, request *models.SetTrustedContactRequest) (*models.TrustedContact, error)
	GetContact(ctx context.Context, userID primitive.ObjectID) (*models.TrustedContact, error)
}

type trustedContactService struct {
	contactRepo interfaces.TrustedContactRepository
	broadcaster Broadcaster
	logger      *logger.Logger
}

func NewTrustedContactService(contactRepo interfaces.TrustedContactRepository, broadcaster Broadcaster, log *logger.Logger) TrustedContactService {
	if log == nil {
		log = logger.NewNop()
	}
	return &trustedContactService{
		contactRepo: contactRepo,
		broadcaster: broadcaster,
		logger:      log,
	}
}

// SetContact overwrites the caller's trusted contact. Only presence is
// checked; the email is matched verbatim against accounts when an alert fires.
func (s *trustedContactService) SetContact(ctx context.Context, caller *models.Caller, request *models.SetTrustedContactRequest) (*models.TrustedContact, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if request == nil {
		return nil, fmt.Errorf("%w: email and phone are required", ErrValidation)
	}

	email := strings.TrimSpace(request.Email)
	phone := strings.TrimSpace(request.Phone)
	if email == "" || phone == "" {
		return nil, fmt.Errorf("%w: email and phone are required", ErrValidation)
	}

	contact, err := s.contactRepo.Upsert(ctx, &models.TrustedContact{
		UserID: caller.UserID,
		Email:  email,
		Phone:  phone,
	})
	if err != nil {
		s.logger.WithContext(ctx).WithUserID(caller.UserID).WithError(err).Error("Failed to save trusted contact")
		return nil, err
	}

	s.logger.LogUserAction(caller.UserID, "trusted_contact_updated", nil)

	if s.broadcaster != nil {
		s.broadcaster.SendUserNotification(caller.UserID, websocket.MessageTypeTrustedContact, contact)
	}

	return contact, nil
}

func (s *trustedContactService) GetContact(ctx context.Context, userID primitive.ObjectID) (*models.TrustedContact, error) {
	contact, err := s.contactRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contact, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/config"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/maps"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/metrics"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/sms"
)

// accountLookupLimit is two so an ambiguous email can be told apart from a
// unique one without reading every match.
const accountLookupLimit = 2

const (
	alertOutcomeCreated          = "created"
	alertOutcomePermissionDenied = "permission_denied"
	alertOutcomeLocationFailed   = "location_unavailable"
	alertOutcomePersistFailed    = "persist_failed"
	alertOutcomeUnauthenticated  = "unauthenticated"

	smsOutcomeSent         = "sent"
	smsOutcomeFailed       = "failed"
	smsOutcomeInvalidPhone = "invalid_phone"
)

type AlertService interface {
	EmitAlert(ctx context.Context, caller *models.Caller, location LocationSource) (*models.AlertResult, error)
	ListAlerts(ctx context.Context, caller *models.Caller, params *utils.PaginationParams) ([]*models.PanicAlert, int64, error)
	GetAlert(ctx context.Context, caller *models.Caller, protocol string) (*models.PanicAlert, error)
	Availability(ctx context.Context, caller *models.Caller) (*models.PanicButtonAvailability, error)
}

type alertService struct {
	alertRepo     interfaces.PanicAlertRepository
	userRepo      interfaces.UserRepository
	contactRepo   interfaces.TrustedContactRepository
	notifications NotificationService
	geocoder      maps.Geocoder
	smsProvider   sms.SMSProvider
	config        *config.AlertConfig
	metrics       *metrics.Metrics
	logger        *logger.Logger
	now           func() time.Time
}

// NewAlertService wires the emitter. geocoder and smsProvider may be nil,
// which disables reverse geocoding and the SMS fallback respectively.
func NewAlertService(
	alertRepo interfaces.PanicAlertRepository,
	userRepo interfaces.UserRepository,
	contactRepo interfaces.TrustedContactRepository,
	notifications NotificationService,
	geocoder maps.Geocoder,
	smsProvider sms.SMSProvider,
	cfg *config.AlertConfig,
	m *metrics.Metrics,
	log *logger.Logger,
) AlertService {
	if log == nil {
		log = logger.NewNop()
	}
	return &alertService{
		alertRepo:     alertRepo,
		userRepo:      userRepo,
		contactRepo:   contactRepo,
		notifications: notifications,
		geocoder:      geocoder,
		smsProvider:   smsProvider,
		config:        cfg,
		metrics:       m,
		logger:        log,
		now:           time.Now,
	}
}

// EmitAlert records a panic alert at the caller's current position and, when
// the trusted contact maps to exactly one account, appends a notification to
// that account's inbox. The alert is never rolled back once stored.
func (s *alertService) EmitAlert(ctx context.Context, caller *models.Caller, location LocationSource) (*models.AlertResult, error) {
	if !caller.Authenticated() {
		s.metrics.RecordAlert(alertOutcomeUnauthenticated)
		return nil, ErrUnauthenticated
	}

	log := s.logger.WithContext(ctx).WithUserID(caller.UserID)

	permission, err := location.RequestPermission(ctx)
	if err != nil || permission != models.PermissionGranted {
		log.WithError(err).WithField("permission", permission).Warn("Location permission not granted")
		s.metrics.RecordAlert(alertOutcomePermissionDenied)
		return nil, ErrPermissionDenied
	}

	fix, err := location.CurrentFix(ctx)
	if err != nil || !fix.Valid() {
		log.WithError(err).Warn("Location fix unavailable")
		s.metrics.RecordAlert(alertOutcomeLocationFailed)
		return nil, ErrLocationUnavailable
	}

	contact := s.trustedContact(ctx, caller, log)

	alert := &models.PanicAlert{
		UserID:    caller.UserID,
		UserEmail: caller.Email,
		UserName:  s.displayName(ctx, caller, log),
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Address:   s.reverseGeocode(ctx, fix, log),
	}
	if contact != nil {
		email, phone := contact.Email, contact.Phone
		alert.ContactEmail = &email
		alert.ContactPhone = &phone
	}

	if err := s.persist(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to persist panic alert")
		s.metrics.RecordAlert(alertOutcomePersistFailed)
		return nil, fmt.Errorf("%w: %v", ErrAlertPersistFailed, err)
	}
	s.metrics.RecordAlert(alertOutcomeCreated)

	log = log.WithField("protocol", alert.Protocol)
	log.LogAlertEvent(alert.Protocol, "alert_created", map[string]interface{}{
		"has_contact": contact != nil,
	})

	delivered := s.fanOut(ctx, alert, contact, log)

	return &models.AlertResult{
		Protocol:  alert.Protocol,
		Delivered: delivered,
		CreatedAt: alert.CreatedAt,
	}, nil
}

func (s *alertService) displayName(ctx context.Context, caller *models.Caller, log *logger.Logger) string {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to load caller profile, using email as name")
		return caller.Email
	}
	return user.DisplayName(caller.Email)
}

// trustedContact returns nil when the caller has no contact. A read error is
// treated the same way so the alert itself is still recorded.
func (s *alertService) trustedContact(ctx context.Context, caller *models.Caller, log *logger.Logger) *models.TrustedContact {
	contact, err := s.contactRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			log.WithError(err).Error("Failed to read trusted contact")
		}
		return nil
	}
	return contact
}

func (s *alertService) reverseGeocode(ctx context.Context, fix models.Coordinates, log *logger.Logger) string {
	if s.geocoder == nil || !s.config.GeocodeEnabled {
		return ""
	}

	geoCtx := ctx
	if s.config.GeocodeTimeout > 0 {
		var cancel context.CancelFunc
		geoCtx, cancel = context.WithTimeout(ctx, s.config.GeocodeTimeout)
		defer cancel()
	}

	resp, err := s.geocoder.ReverseGeocode(geoCtx, fix.Latitude, fix.Longitude)
	if err != nil {
		log.WithError(err).Debug("Reverse geocoding failed")
		return ""
	}

	address, err := resp.FormattedAddress()
	if err != nil {
		return ""
	}
	return address
}

// persist stores the alert under a fresh protocol, regenerating the
// protocol when the unique index reports a collision.
func (s *alertService) persist(ctx context.Context, alert *models.PanicAlert) error {
	attempts := s.config.ProtocolAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		now := s.now().UTC()
		alert.Protocol = utils.GenerateProtocol(now)
		alert.CreatedAt = now

		err = s.alertRepo.Create(ctx, alert)
		if err == nil || !errors.Is(err, interfaces.ErrDuplicateKey) {
			return err
		}
	}
	return err
}

func (s *alertService) fanOut(ctx context.Context, alert *models.PanicAlert, contact *models.TrustedContact, log *logger.Logger) bool {
	if contact == nil {
		log.Info("No trusted contact, notification skipped")
		return false
	}

	target := s.resolveAccount(ctx, strings.TrimSpace(contact.Email), log)
	mapLink := utils.BuildMapLink(s.config.MapLinkBase, alert.Latitude, alert.Longitude)
	title := utils.AlertTitle(alert.UserName)

	if target == nil {
		log.Info("Trusted contact has no unique account, notification skipped")
		s.sendSMSFallback(ctx, contact, title, mapLink, log)
		return false
	}

	notification := models.NewAlertNotification(alert, target.ID, title, utils.AlertBody(alert.Protocol, mapLink, alert.Address))
	if err := s.notifications.Append(ctx, notification); err != nil {
		log.WithError(err).Error("Failed to append notification, alert kept")
		return false
	}

	log.LogAlertEvent(alert.Protocol, "notification_appended", map[string]interface{}{
		"notification_id": notification.ID.Hex(),
		"target_user_id":  target.ID.Hex(),
	})
	return true
}

// resolveAccount returns the only account registered with email, or nil when
// there are none or several.
func (s *alertService) resolveAccount(ctx context.Context, email string, log *logger.Logger) *models.User {
	if email == "" {
		return nil
	}

	users, err := s.userRepo.FindByEmail(ctx, email, accountLookupLimit)
	if err != nil {
		log.WithError(err).Error("Failed to look up trusted contact account")
		return nil
	}
	if len(users) != 1 {
		log.WithField("matches", len(users)).Debug("Trusted contact email did not resolve to one account")
		return nil
	}
	return users[0]
}

func (s *alertService) sendSMSFallback(ctx context.Context, contact *models.TrustedContact, title, mapLink string, log *logger.Logger) {
	if !s.config.SMSFallback || s.smsProvider == nil || strings.TrimSpace(contact.Phone) == "" {
		return
	}

	to, ok := utils.FormatPhoneE164(contact.Phone, utils.DefaultCountryCode)
	if !ok {
		log.Warn("Trusted contact phone is not a valid number, SMS fallback skipped")
		s.metrics.RecordSMSFallback(smsOutcomeInvalidPhone)
		return
	}

	resp, err := s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
		To:      to,
		Message: title + " " + mapLink,
		Type:    "transactional",
	})
	if err != nil {
		log.WithError(err).WithField("provider", s.smsProvider.Name()).Error("SMS fallback failed")
		s.metrics.RecordSMSFallback(smsOutcomeFailed)
		return
	}

	log.WithFields(map[string]interface{}{
		"provider":   s.smsProvider.Name(),
		"message_id": resp.MessageID,
	}).Info("SMS fallback sent")
	s.metrics.RecordSMSFallback(smsOutcomeSent)
}

func (s *alertService) ListAlerts(ctx context.Context, caller *models.Caller, params *utils.PaginationParams) ([]*models.PanicAlert, int64, error) {
	if !caller.Authenticated() {
		return nil, 0, ErrUnauthenticated
	}
	if params == nil {
		params = utils.DefaultPagination()
	}
	params.Normalize()

	return s.alertRepo.ListByUserID(ctx, caller.UserID, params)
}

// GetAlert returns one of the caller's own alerts.
func (s *alertService) GetAlert(ctx context.Context, caller *models.Caller, protocol string) (*models.PanicAlert, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthenticated
	}

	alert, err := s.alertRepo.GetByProtocol(ctx, strings.TrimSpace(protocol))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if alert.UserID != caller.UserID {
		return nil, ErrForbidden
	}
	return alert, nil
}

func (s *alertService) Availability(ctx context.Context, caller *models.Caller) (*models.PanicButtonAvailability, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	availability := &models.PanicButtonAvailability{
		Visible: user.CanUsePanicButton(s.config.VisibleGenders),
	}

	if _, err := s.contactRepo.GetByUserID(ctx, caller.UserID); err == nil {
		availability.HasTrustedContact = true
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	return availability, nil
}

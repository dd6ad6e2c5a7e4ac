package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/config"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/maps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const mapLinkBase = "https://www.google.com/maps/search/?api=1&query="

type alertHarness struct {
	users         *fakeUserRepo
	contacts      *fakeContactRepo
	alerts        *fakeAlertRepo
	notifications *fakeNotificationRepo
	publisher     *fakePublisher
	sms           *fakeSMS
	config        *config.AlertConfig
	geocoder      maps.Geocoder
	caller        *models.Caller
	sender        *models.User
}

func newAlertHarness() *alertHarness {
	h := &alertHarness{
		users:         &fakeUserRepo{},
		contacts:      newFakeContactRepo(),
		alerts:        &fakeAlertRepo{},
		notifications: newFakeNotificationRepo(),
		publisher:     &fakePublisher{},
		sms:           &fakeSMS{},
		config: &config.AlertConfig{
			MapLinkBase:      mapLinkBase,
			ProtocolAttempts: 3,
			VisibleGenders:   []string{"feminino", "female"},
		},
	}
	h.sender = h.users.add("Maria", "maria@example.com", "feminino")
	h.caller = &models.Caller{UserID: h.sender.ID, Email: h.sender.Email}
	return h
}

func (h *alertHarness) service() AlertService {
	notifications := NewNotificationService(h.notifications, h.publisher, nil, nil, nil)
	return NewAlertService(h.alerts, h.users, h.contacts, notifications, h.geocoder, h.sms, h.config, nil, nil)
}

func (h *alertHarness) setContact(email, phone string) {
	h.contacts.contacts[h.sender.ID] = &models.TrustedContact{ID: primitive.NewObjectID(), UserID: h.sender.ID, Email: email, Phone: phone}
}

func granted(lat, lng float64) *fixedLocation {
	return &fixedLocation{permission: models.PermissionGranted, fix: models.Coordinates{Latitude: lat, Longitude: lng}}
}

func TestEmitAlertMatchedContact(t *testing.T) {
	h := newAlertHarness()
	contact := h.users.add("João", "joao@example.com", "masculino")
	h.setContact("joao@example.com", "+5585999990000")

	result, err := h.service().EmitAlert(context.Background(), h.caller, granted(-3.7319, -38.5267))
	require.NoError(t, err)
	assert.True(t, result.Delivered)
	assert.Len(t, result.Protocol, len(utils.ProtocolTimeLayout)+utils.ProtocolSuffixLength)

	require.Equal(t, 1, h.alerts.count())
	alert := h.alerts.alerts[0]
	assert.Equal(t, result.Protocol, alert.Protocol)
	require.NotNil(t, alert.ContactEmail)
	assert.Equal(t, "joao@example.com", *alert.ContactEmail)

	stored := h.notifications.all()
	require.Len(t, stored, 1)
	n := stored[0]
	assert.Equal(t, contact.ID, n.TargetUserID)
	assert.False(t, n.IsRead)
	assert.Equal(t, "Maria está precisando de ajuda!", n.Title)
	assert.Contains(t, n.Body, mapLinkBase+"-3.7319,-38.5267")
	assert.Equal(t, alert.Latitude, n.Latitude)
	assert.Equal(t, alert.Longitude, n.Longitude)
	assert.Equal(t, alert.Protocol, n.Protocol)
	assert.Equal(t, 2, h.users.lastFind)

	events := h.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, n.ID.Hex(), events[0].NotificationID)
	assert.Equal(t, contact.ID.Hex(), events[0].TargetUserID)
}

func TestEmitAlertWithoutContact(t *testing.T) {
	h := newAlertHarness()

	result, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)

	assert.False(t, result.Delivered)
	assert.Equal(t, 1, h.alerts.count())
	assert.Nil(t, h.alerts.alerts[0].ContactEmail)
	assert.Empty(t, h.notifications.all())
}

func TestEmitAlertContactReadErrorIsNotFatal(t *testing.T) {
	h := newAlertHarness()
	h.contacts.getErr = errStorage

	result, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.False(t, result.Delivered)
	assert.Equal(t, 1, h.alerts.count())
}

func TestEmitAlertUnmatchedContact(t *testing.T) {
	t.Run("no account", func(t *testing.T) {
		h := newAlertHarness()
		h.setContact("nobody@example.com", "+5585999990000")

		result, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
		require.NoError(t, err)
		assert.False(t, result.Delivered)
		assert.Equal(t, 1, h.alerts.count())
		assert.Empty(t, h.notifications.all())
	})

	t.Run("ambiguous email", func(t *testing.T) {
		h := newAlertHarness()
		h.users.add("A", "shared@example.com", "")
		h.users.add("B", "shared@example.com", "")
		h.setContact("shared@example.com", "+5585999990000")

		result, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
		require.NoError(t, err)
		assert.False(t, result.Delivered)
		assert.Empty(t, h.notifications.all())
	})

	t.Run("lookup error", func(t *testing.T) {
		h := newAlertHarness()
		h.setContact("joao@example.com", "+5585999990000")
		h.users.findErr = errStorage

		result, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
		require.NoError(t, err)
		assert.False(t, result.Delivered)
		assert.Equal(t, 1, h.alerts.count())
	})
}

func TestEmitAlertPersistsBeforeFanOut(t *testing.T) {
	h := newAlertHarness()
	h.users.add("João", "joao@example.com", "")
	h.setContact("joao@example.com", "+5585999990000")

	var alertsAtAppend int
	h.notifications.onCreate = func(*models.Notification) { alertsAtAppend = h.alerts.count() }

	_, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, alertsAtAppend)
}

func TestEmitAlertAppendFailureKeepsAlert(t *testing.T) {
	h := newAlertHarness()
	h.users.add("João", "joao@example.com", "")
	h.setContact("joao@example.com", "+5585999990000")
	h.notifications.createErr = errStorage

	result, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.False(t, result.Delivered)
	assert.Equal(t, 1, h.alerts.count())
	assert.Empty(t, h.publisher.published())
}

func TestEmitAlertPermissionDenied(t *testing.T) {
	for _, status := range []models.PermissionStatus{models.PermissionDenied, models.PermissionUndetermined} {
		h := newAlertHarness()
		location := &fixedLocation{permission: status}

		_, err := h.service().EmitAlert(context.Background(), h.caller, location)
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Zero(t, location.fixCalls)
		assert.Zero(t, h.alerts.count())
	}
}

func TestEmitAlertLocationUnavailable(t *testing.T) {
	h := newAlertHarness()

	_, err := h.service().EmitAlert(context.Background(), h.caller, &fixedLocation{
		permission: models.PermissionGranted,
		fixErr:     errors.New("gps timeout"),
	})
	assert.ErrorIs(t, err, ErrLocationUnavailable)

	_, err = h.service().EmitAlert(context.Background(), h.caller, granted(120, 0))
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.Zero(t, h.alerts.count())
}

func TestEmitAlertUnauthenticated(t *testing.T) {
	h := newAlertHarness()

	_, err := h.service().EmitAlert(context.Background(), nil, granted(1, 2))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = h.service().EmitAlert(context.Background(), &models.Caller{Email: "x@example.com"}, granted(1, 2))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestEmitAlertPersistFailure(t *testing.T) {
	h := newAlertHarness()
	h.users.add("João", "joao@example.com", "")
	h.setContact("joao@example.com", "+5585999990000")
	h.alerts.createErrs = []error{errStorage}

	_, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	assert.ErrorIs(t, err, ErrAlertPersistFailed)
	assert.Empty(t, h.notifications.all())
	assert.Equal(t, 1, h.alerts.attempts)
}

func TestEmitAlertRetriesProtocolCollision(t *testing.T) {
	h := newAlertHarness()
	h.alerts.createErrs = []error{interfaces.ErrDuplicateKey, interfaces.ErrDuplicateKey}

	result, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Protocol)
	assert.Equal(t, 3, h.alerts.attempts)

	h = newAlertHarness()
	h.alerts.createErrs = []error{interfaces.ErrDuplicateKey, interfaces.ErrDuplicateKey, interfaces.ErrDuplicateKey}
	_, err = h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	assert.ErrorIs(t, err, ErrAlertPersistFailed)
}

func TestEmitAlertNameFallsBackToEmail(t *testing.T) {
	h := newAlertHarness()
	h.sender.Name = "  "
	target := h.users.add("João", "joao@example.com", "")
	h.setContact(target.Email, "+5585999990000")

	_, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", h.alerts.alerts[0].UserName)
	assert.True(t, strings.HasPrefix(h.notifications.all()[0].Title, "maria@example.com"))
}

func TestEmitAlertProtocolShape(t *testing.T) {
	h := newAlertHarness()
	fixed := time.Date(2024, 5, 17, 21, 4, 5, 0, time.FixedZone("BRT", -3*3600))
	svc := h.service().(*alertService)
	svc.now = func() time.Time { return fixed }

	result, err := svc.EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Protocol, "20240518000405"))
}

func TestEmitAlertReverseGeocode(t *testing.T) {
	h := newAlertHarness()
	h.config.GeocodeEnabled = true
	h.config.GeocodeTimeout = time.Second
	h.geocoder = fakeGeocoder{address: "Rua A, 10 - Pacatuba"}
	target := h.users.add("João", "joao@example.com", "")
	h.setContact(target.Email, "+5585999990000")

	_, err := h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.Equal(t, "Rua A, 10 - Pacatuba", h.alerts.alerts[0].Address)
	assert.Contains(t, h.notifications.all()[0].Body, "Rua A, 10 - Pacatuba")

	h = newAlertHarness()
	h.config.GeocodeEnabled = true
	h.geocoder = fakeGeocoder{err: maps.ErrNoResults}
	_, err = h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.Empty(t, h.alerts.alerts[0].Address)
}

func TestEmitAlertSMSFallback(t *testing.T) {
	h := newAlertHarness()
	h.config.SMSFallback = true
	h.setContact("nobody@example.com", "(85) 99999-0000")

	result, err := h.service().EmitAlert(context.Background(), h.caller, granted(-3.7, -38.5))
	require.NoError(t, err)
	assert.False(t, result.Delivered)

	require.Len(t, h.sms.requests, 1)
	assert.Equal(t, "+5585999990000", h.sms.requests[0].To)
	assert.Contains(t, h.sms.requests[0].Message, "Maria está precisando de ajuda!")
	assert.Contains(t, h.sms.requests[0].Message, mapLinkBase+"-3.7,-38.5")

	h = newAlertHarness()
	h.setContact("nobody@example.com", "(85) 99999-0000")
	_, err = h.service().EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	assert.Empty(t, h.sms.requests)
}

func TestGetAlertOwnership(t *testing.T) {
	h := newAlertHarness()
	svc := h.service()

	result, err := svc.EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)

	alert, err := svc.GetAlert(context.Background(), h.caller, result.Protocol)
	require.NoError(t, err)
	assert.Equal(t, result.Protocol, alert.Protocol)

	other := &models.Caller{UserID: primitive.NewObjectID(), Email: "other@example.com"}
	_, err = svc.GetAlert(context.Background(), other, result.Protocol)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetAlert(context.Background(), h.caller, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAlertsNewestFirst(t *testing.T) {
	h := newAlertHarness()
	svc := h.service()

	first, err := svc.EmitAlert(context.Background(), h.caller, granted(1, 2))
	require.NoError(t, err)
	second, err := svc.EmitAlert(context.Background(), h.caller, granted(3, 4))
	require.NoError(t, err)

	alerts, total, err := svc.ListAlerts(context.Background(), h.caller, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, alerts, 2)
	assert.Equal(t, second.Protocol, alerts[0].Protocol)
	assert.Equal(t, first.Protocol, alerts[1].Protocol)
}

func TestAvailability(t *testing.T) {
	h := newAlertHarness()
	svc := h.service()

	availability, err := svc.Availability(context.Background(), h.caller)
	require.NoError(t, err)
	assert.True(t, availability.Visible)
	assert.False(t, availability.HasTrustedContact)

	h.setContact("joao@example.com", "+5585999990000")
	h.sender.Gender = "masculino"
	availability, err = svc.Availability(context.Background(), h.caller)
	require.NoError(t, err)
	assert.False(t, availability.Visible)
	assert.True(t, availability.HasTrustedContact)
}

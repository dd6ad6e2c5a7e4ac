package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/maps"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/push"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/sms"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	mu       sync.Mutex
	users    []*models.User
	getErr   error
	findErr  error
	lastFind int
}

func (r *fakeUserRepo) add(name, email, gender string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &models.User{ID: primitive.NewObjectID(), Name: name, Email: email, Gender: gender}
	r.users = append(r.users, u)
	return u
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string, limit int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFind = limit
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*models.User
	for _, u := range r.users {
		if u.Email == email && len(out) < limit {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	tokens  map[primitive.ObjectID]*models.DeviceToken
	writes  int
	getErr  error
	saveErr error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[primitive.ObjectID]*models.DeviceToken)}
}

func (r *fakeTokenRepo) Upsert(_ context.Context, token *models.DeviceToken) (*models.DeviceToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.writes++
	saved := *token
	if existing, ok := r.tokens[token.UserID]; ok {
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.ID = primitive.NewObjectID()
		saved.CreatedAt = time.Now()
	}
	saved.UpdatedAt = time.Now()
	r.tokens[token.UserID] = &saved
	return &saved, nil
}

func (r *fakeTokenRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.DeviceToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	token, ok := r.tokens[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return token, nil
}

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts map[primitive.ObjectID]*models.TrustedContact
	getErr   error
	saveErr  error
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[primitive.ObjectID]*models.TrustedContact)}
}

func (r *fakeContactRepo) Upsert(_ context.Context, contact *models.TrustedContact) (*models.TrustedContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	saved := *contact
	if existing, ok := r.contacts[contact.UserID]; ok {
		saved.ID = existing.ID
	} else {
		saved.ID = primitive.NewObjectID()
	}
	r.contacts[contact.UserID] = &saved
	return &saved, nil
}

func (r *fakeContactRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.TrustedContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	contact, ok := r.contacts[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return contact, nil
}

type fakeAlertRepo struct {
	mu         sync.Mutex
	alerts     []*models.PanicAlert
	createErrs []error
	attempts   int
}

func (r *fakeAlertRepo) Create(_ context.Context, alert *models.PanicAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, a := range r.alerts {
		if a.Protocol == alert.Protocol {
			return interfaces.ErrDuplicateKey
		}
	}
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	stored := *alert
	r.alerts = append(r.alerts, &stored)
	return nil
}

func (r *fakeAlertRepo) GetByProtocol(_ context.Context, protocol string) (*models.PanicAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.Protocol == protocol {
			return a, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeAlertRepo) ListByUserID(_ context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.PanicAlert, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PanicAlert
	for i := len(r.alerts) - 1; i >= 0; i-- {
		if r.alerts[i].UserID == userID {
			out = append(out, r.alerts[i])
		}
	}
	total := int64(len(out))
	return page(out, params), total, nil
}

func (r *fakeAlertRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	createErr     error
	onCreate      func(*models.Notification)
	statuses      map[primitive.ObjectID]models.DeliveryStatus
	statusErrs    map[primitive.ObjectID]string
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		statuses:   make(map[primitive.ObjectID]models.DeliveryStatus),
		statusErrs: make(map[primitive.ObjectID]string),
	}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if r.onCreate != nil {
		r.onCreate(n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	r.notifications = append(r.notifications, n)
	r.statuses[n.ID] = n.DeliveryStatus
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeNotificationRepo) ListByTargetUserID(_ context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.TargetUserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return page(out, params), total, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.TargetUserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ context.Context, userID, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.TargetUserID == userID {
			if n.IsRead {
				return false, nil
			}
			now := time.Now()
			n.IsRead = true
			n.ReadAt = &now
			return true, nil
		}
	}
	return false, interfaces.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var modified int64
	now := time.Now()
	for _, n := range r.notifications {
		if n.TargetUserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			modified++
		}
	}
	return modified, nil
}

func (r *fakeNotificationRepo) UpdateDeliveryStatus(_ context.Context, id primitive.ObjectID, status models.DeliveryStatus, deliveryErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	r.statusErrs[id] = deliveryErr
	return nil
}

func (r *fakeNotificationRepo) all() []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Notification(nil), r.notifications...)
}

func (r *fakeNotificationRepo) status(id primitive.ObjectID) models.DeliveryStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[id]
}

func page[T any](items []T, params *utils.PaginationParams) []T {
	if params == nil {
		return items
	}
	start := params.GetSkip()
	if start >= len(items) {
		return nil
	}
	end := start + params.GetLimit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.NotificationCreatedEvent
	err    error
}

func (p *fakePublisher) PublishNotificationCreated(_ context.Context, event *models.NotificationCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) published() []*models.NotificationCreatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.NotificationCreatedEvent(nil), p.events...)
}

type sentMessage struct {
	userID      primitive.ObjectID
	messageType string
	data        interface{}
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (b *fakeBroadcaster) SendUserNotification(userID primitive.ObjectID, messageType string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{userID: userID, messageType: messageType, data: data})
}

func (b *fakeBroadcaster) messages() []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMessage(nil), b.sent...)
}

type fakePushProvider struct {
	mu       sync.Mutex
	name     string
	requests []*push.NotificationRequest
	err      error
}

func (p *fakePushProvider) Name() string { return p.name }

func (p *fakePushProvider) SendNotification(_ context.Context, request *push.NotificationRequest) (*push.NotificationResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, request)
	if p.err != nil {
		return nil, p.err
	}
	return &push.NotificationResponse{MessageID: "msg-" + request.Token, Success: true, Token: request.Token, Provider: p.name}, nil
}

func (p *fakePushProvider) calls() []*push.NotificationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*push.NotificationRequest(nil), p.requests...)
}

type fakeGuard struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (g *fakeGuard) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.keys == nil {
		g.keys = make(map[string]bool)
	}
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

type fakeSMS struct {
	mu       sync.Mutex
	requests []*sms.SMSRequest
	err      error
}

func (f *fakeSMS) Name() string { return "fake-sms" }

func (f *fakeSMS) SendSMS(_ context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return &sms.SMSResponse{MessageID: "sms-1", Status: "queued"}, nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (g fakeGeocoder) ReverseGeocode(context.Context, float64, float64) (*maps.GeocodeResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &maps.GeocodeResponse{Results: []maps.GeocodeResult{{Address: g.address}}}, nil
}

type fixedLocation struct {
	permission models.PermissionStatus
	fix        models.Coordinates
	fixErr     error
	fixCalls   int
}

func (l *fixedLocation) RequestPermission(context.Context) (models.PermissionStatus, error) {
	return l.permission, nil
}

func (l *fixedLocation) CurrentFix(context.Context) (models.Coordinates, error) {
	l.fixCalls++
	return l.fix, l.fixErr
}

var errStorage = errors.New("storage unavailable")

package services

import (
	"context"
	"testing"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegisterTokenLastWriteWins(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewDeviceTokenService(repo, nil)
	caller := &models.Caller{UserID: primitive.NewObjectID(), Email: "a@example.com"}

	_, err := svc.RegisterToken(context.Background(), caller, &models.DeviceTokenRegistration{
		Permission: models.PermissionGranted, Token: "first", Platform: models.DevicePlatformAndroid,
	})
	require.NoError(t, err)

	saved, err := svc.RegisterToken(context.Background(), caller, &models.DeviceTokenRegistration{
		Permission: models.PermissionGranted, Token: " second ", Platform: models.DevicePlatformIOS,
	})
	require.NoError(t, err)
	assert.Equal(t, "second", saved.Token)

	stored, err := svc.GetToken(context.Background(), caller.UserID)
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Token)
	assert.Equal(t, models.DevicePlatformIOS, stored.Platform)
	assert.Len(t, repo.tokens, 1)
}

func TestRegisterTokenPermissionDeniedWritesNothing(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewDeviceTokenService(repo, nil)
	caller := &models.Caller{UserID: primitive.NewObjectID()}

	_, err := svc.RegisterToken(context.Background(), caller, &models.DeviceTokenRegistration{
		Permission: models.PermissionGranted, Token: "kept",
	})
	require.NoError(t, err)

	_, err = svc.RegisterToken(context.Background(), caller, &models.DeviceTokenRegistration{
		Permission: models.PermissionDenied, Token: "ignored",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, 1, repo.writes)
	assert.Equal(t, "kept", repo.tokens[caller.UserID].Token)
}

func TestRegisterTokenValidation(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewDeviceTokenService(repo, nil)

	_, err := svc.RegisterToken(context.Background(), nil, &models.DeviceTokenRegistration{Permission: models.PermissionGranted, Token: "t"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	caller := &models.Caller{UserID: primitive.NewObjectID()}
	_, err = svc.RegisterToken(context.Background(), caller, &models.DeviceTokenRegistration{Permission: models.PermissionGranted, Token: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, repo.writes)
}

func TestRegisterTokenStorageFailure(t *testing.T) {
	repo := newFakeTokenRepo()
	repo.saveErr = errStorage
	svc := NewDeviceTokenService(repo, nil)

	_, err := svc.RegisterToken(context.Background(), &models.Caller{UserID: primitive.NewObjectID()}, &models.DeviceTokenRegistration{
		Permission: models.PermissionGranted, Token: "t",
	})
	assert.ErrorIs(t, err, errStorage)
}

func TestGetTokenNotFound(t *testing.T) {
	svc := NewDeviceTokenService(newFakeTokenRepo(), nil)

	_, err := svc.GetToken(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/service"
	"github.com/Smarty6452/hbros-platform/backend/internal/testhelper"
)

func newAuth(store *testhelper.MemStore, mail service.MailPublisher, now time.Time) *service.Auth {
	return service.NewAuth(store, mail, "test-secret", 14*24*time.Hour, testhelper.FixedClock(now))
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	store := testhelper.NewMemStore()
	mail := &testhelper.RecordingMail{}
	auth := newAuth(store, mail, testNow)
	ctx := context.Background()

	user, err := auth.Register(ctx, service.RegisterParams{
		Name:     "Ulrich",
		Email:    "ulrich@example.com",
		Password: "secret1",
		Role:     domain.RoleViewer,
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	require.Len(t, mail.Messages(), 1)
	assert.Equal(t, domain.MailTypeWelcome, mail.Messages()[0].Type)
	assert.Equal(t, "ulrich@example.com", mail.Messages()[0].To)

	result, err := auth.Login(ctx, "ulrich@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ulrich", result.Name)
	assert.Equal(t, domain.RoleViewer, result.Role)

	caller, err := auth.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Caller{ID: user.ID, Role: domain.RoleViewer, Name: "Ulrich"}, caller)
}

func TestAuth_RegisterErrors(t *testing.T) {
	store := testhelper.NewMemStore()
	auth := newAuth(store, &testhelper.RecordingMail{}, testNow)
	ctx := context.Background()

	params := service.RegisterParams{Name: "Paula", Email: "paula@example.com", Password: "secret1", Role: domain.RolePoster}
	_, err := auth.Register(ctx, params)
	require.NoError(t, err)

	_, err = auth.Register(ctx, params)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	params.Email = "admin@example.com"
	params.Role = "Admin"
	_, err = auth.Register(ctx, params)
	assert.ErrorIs(t, err, domain.ErrRoleNotAllowed)
}

func TestAuth_RegisterSurvivesMailFailure(t *testing.T) {
	store := testhelper.NewMemStore()
	auth := newAuth(store, &testhelper.RecordingMail{Err: errors.New("broker down")}, testNow)

	user, err := auth.Register(context.Background(), service.RegisterParams{
		Name: "Paula", Email: "paula@example.com", Password: "secret1", Role: domain.RolePoster,
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestAuth_LoginRejectsBadCredentials(t *testing.T) {
	store := testhelper.NewMemStore()
	auth := newAuth(store, nil, testNow)
	ctx := context.Background()

	_, err := auth.Register(ctx, service.RegisterParams{Name: "Paula", Email: "paula@example.com", Password: "secret1", Role: domain.RolePoster})
	require.NoError(t, err)

	_, err = auth.Login(ctx, "paula@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuth_ParseToken(t *testing.T) {
	store := testhelper.NewMemStore()
	auth := newAuth(store, nil, testNow)
	user := &domain.User{ID: 12, Name: "Paula", Role: domain.RolePoster}

	token, err := auth.IssueToken(user)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		caller, err := auth.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(12), caller.ID)
		assert.Equal(t, domain.RolePoster, caller.Role)
	})

	t.Run("expired", func(t *testing.T) {
		later := newAuth(store, nil, testNow.AddDate(0, 0, 15))
		_, err := later.ParseToken(token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := service.NewAuth(store, nil, "another-secret", time.Hour, testhelper.FixedClock(testNow))
		_, err := other.ParseToken(token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ParseToken("not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

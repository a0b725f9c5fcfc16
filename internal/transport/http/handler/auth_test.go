package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dultive/dultive-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) RequestVerificationCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(1).(*domain.User); u != nil {
		return args.String(0), u, args.Error(2)
	}
	return args.String(0), nil, args.Error(2)
}

func TestRequestVerificationCode_OK(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestVerificationCode", mock.Anything, "a@x.com").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verification-code", strings.NewReader(`{"email":"a@x.com"}`))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).RequestVerificationCode(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "verification code sent")
}

func TestRequestVerificationCode_Throttled(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestVerificationCode", mock.Anything, "a@x.com").
		Return(&domain.RetryAfterError{Seconds: 42})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verification-code", strings.NewReader(`{"email":"a@x.com"}`))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).RequestVerificationCode(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "42", rr.Header().Get("Retry-After"))
}

func TestRequestVerificationCode_DeliveryFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestVerificationCode", mock.Anything, "a@x.com").
		Return(domain.ErrDeliveryFailed)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verification-code", strings.NewReader(`{"email":"a@x.com"}`))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).RequestVerificationCode(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRegister_Created(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).
		Return(&domain.User{UserID: "u1", Email: "a@x.com", IsVerified: true}, nil)

	body, err := json.Marshal(domain.RegisterRequest{
		UserType:         domain.UserTypePerson,
		Name:             "Maria",
		Email:            "a@x.com",
		Password:         "secret123",
		VerificationCode: "123456",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).Register(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotNil(t, env.User)
	assert.Equal(t, "u1", env.User.UserID)
	assert.Empty(t, env.Token)
}

func TestRegister_InvalidBody(t *testing.T) {
	svc := &mockAuthSvc{}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).Register(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, &domain.DuplicateFieldError{Field: "email"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"a@x.com"}`))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).Register(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "email")
}

func TestLogin_OK(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, domain.LoginRequest{Email: "a@x.com", Password: "pw"}).
		Return("tok", &domain.User{UserID: "u1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.com","password":"pw"}`))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).Login(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "tok", env.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).
		Return("", nil, domain.ErrBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.com","password":"nope"}`))
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).Login(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	gatewaymock "ticket-service/internal/adapters/gateway/mock"
	"ticket-service/internal/app"
	"ticket-service/internal/config"
	"ticket-service/internal/core/domain"
)

// Mock - implementation of the ticket service
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) PurchaseTickets(ctx context.Context, accountID int64, requests ...domain.TicketTypeRequest) (*domain.PurchaseResult, error) {
	args := m.Called(ctx, accountID, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseResult), args.Error(1)
}

func (m *MockTicketService) Pricing() domain.Pricing {
	return m.Called().Get(0).(domain.Pricing)
}

func (m *MockTicketService) MaxTickets() int {
	return m.Called().Int(0)
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) IsAllowed(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHandlePurchase_Success(t *testing.T) {
	svc := new(MockTicketService)
	want := []domain.TicketTypeRequest{
		domain.NewTicketTypeRequest(domain.TicketTypeAdult, 2),
		domain.NewTicketTypeRequest(domain.TicketTypeChild, 1),
	}
	svc.On("PurchaseTickets", mock.Anything, int64(9), want).Return(&domain.PurchaseResult{
		Status:       domain.StatusSuccess,
		Message:      domain.PurchaseSucceededMessage,
		AccountID:    9,
		TotalAmount:  65,
		TotalSeats:   3,
		TicketCounts: domain.TicketCounts{Adult: 2, Child: 1},
	}, nil)

	router := NewRouter(RouterDeps{Service: svc, Logger: testLogger()})
	rec := doRequest(t, router, http.MethodPost, "/api/v1/purchases",
		`{"account_id":9,"tickets":[{"type":"ADULT","quantity":2},{"type":"CHILD","quantity":1}]}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"status":"success",
		"message":"Tickets purchased successfully",
		"account_id":9,
		"total_amount":65,
		"total_seats":3,
		"ticket_counts":{"ADULT":2,"CHILD":1,"INFANT":0}
	}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestHandlePurchase_Errors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{"invalid purchase", domain.NewInvalidPurchase("Infant tickets cannot exceed adult tickets"), http.StatusBadRequest, "Infant tickets cannot exceed adult tickets"},
		{"payment failed", fmt.Errorf("%w: declined", domain.ErrPaymentFailed), http.StatusPaymentRequired, "payment failed"},
		{"reservation failed", fmt.Errorf("%w: timeout", domain.ErrReservationFailed), http.StatusBadGateway, "seat reservation failed"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTicketService)
			svc.On("PurchaseTickets", mock.Anything, int64(1), mock.Anything).Return(nil, tt.serviceErr)

			router := NewRouter(RouterDeps{Service: svc, Logger: testLogger()})
			rec := doRequest(t, router, http.MethodPost, "/api/v1/purchases",
				`{"account_id":1,"tickets":[{"type":"ADULT","quantity":1}]}`, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, errorBody(t, rec))
		})
	}
}

func TestHandlePurchase_BadBody(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"not json", `{`, "invalid request body"},
		{"unknown ticket type", `{"account_id":1,"tickets":[{"type":"SENIOR","quantity":1}]}`, "Invalid ticket type: SENIOR"},
		{"fractional account id", `{"account_id":1.5,"tickets":[{"type":"ADULT","quantity":1}]}`, "Invalid account ID"},
		{"string account id", `{"account_id":"abc","tickets":[]}`, "Invalid account ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTicketService)
			router := NewRouter(RouterDeps{Service: svc, Logger: testLogger()})

			rec := doRequest(t, router, http.MethodPost, "/api/v1/purchases", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantError, errorBody(t, rec))
			svc.AssertNotCalled(t, "PurchaseTickets", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandlePurchase_MissingTicketType(t *testing.T) {
	svc := app.NewTicketService(gatewaymock.NewPaymentGateway(testLogger()), gatewaymock.NewSeatReservationGateway(testLogger()), config.DefaultTicketing(), testLogger())
	router := NewRouter(RouterDeps{Service: svc, Logger: testLogger()})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/purchases",
		`{"account_id":1,"tickets":[{"quantity":1}]}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ticket type: missing", errorBody(t, rec))
}

func TestHandlePurchase_LogsRequestAndSubject(t *testing.T) {
	secret := "test-secret"
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	svc := new(MockTicketService)
	svc.On("PurchaseTickets", mock.Anything, int64(1), mock.Anything).
		Return(nil, domain.NewInvalidPurchase("Infant tickets cannot exceed adult tickets"))
	router := NewRouter(RouterDeps{Service: svc, Logger: logger, JWTSecret: secret})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/purchases",
		`{"account_id":1,"tickets":[{"type":"INFANT","quantity":1}]}`,
		map[string]string{
			"Authorization": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(secret), "box-office"),
			"X-Request-Id":  "req-42",
		})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var entry map[string]any
	scanner := bufio.NewScanner(&logs)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		if line["msg"] == "purchase request rejected" {
			entry = line
		}
	}
	require.NotNil(t, entry, "rejection was not logged")
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "box-office", entry["subject"])
	assert.Equal(t, "Infant tickets cannot exceed adult tickets", entry["reason"])
}

func TestHandlePrices(t *testing.T) {
	svc := new(MockTicketService)
	svc.On("Pricing").Return(config.DefaultTicketing().Pricing())
	svc.On("MaxTickets").Return(25)

	router := NewRouter(RouterDeps{Service: svc, Logger: testLogger()})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/prices", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prices":{"ADULT":25,"CHILD":15,"INFANT":0},"max_tickets":25}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	router := NewRouter(RouterDeps{Service: new(MockTicketService), Logger: testLogger()})

	rec := doRequest(t, router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRateLimiter(t *testing.T) {
	svc := new(MockTicketService)
	svc.On("Pricing").Return(domain.Pricing{})
	svc.On("MaxTickets").Return(25)
	cfg := config.RateLimitConfig{Requests: 1, WindowSeconds: 30}

	t.Run("blocked", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: false}
		router := NewRouter(RouterDeps{Service: svc, Logger: testLogger(), RateLimiter: NewRateLimiterMiddleware(limiter, cfg, testLogger())})

		rec := doRequest(t, router, http.MethodGet, "/api/v1/prices", "", nil)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "30", rec.Header().Get("Retry-After"))
		require.Len(t, limiter.keys, 1)
		assert.Equal(t, "192.0.2.1", limiter.keys[0])
	})

	t.Run("fails open", func(t *testing.T) {
		limiter := &fakeLimiter{err: errors.New("redis down")}
		router := NewRouter(RouterDeps{Service: svc, Logger: testLogger(), RateLimiter: NewRateLimiterMiddleware(limiter, cfg, testLogger())})

		rec := doRequest(t, router, http.MethodGet, "/api/v1/prices", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health is not limited", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: false}
		router := NewRouter(RouterDeps{Service: svc, Logger: testLogger(), RateLimiter: NewRateLimiterMiddleware(limiter, cfg, testLogger())})

		rec := doRequest(t, router, http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, limiter.keys)
	})
}

func TestJWTMiddleware(t *testing.T) {
	secret := "test-secret"
	svc := new(MockTicketService)
	svc.On("Pricing").Return(domain.Pricing{})
	svc.On("MaxTickets").Return(25)
	router := NewRouter(RouterDeps{Service: svc, Logger: testLogger(), JWTSecret: secret})

	sign := func(method jwt.SigningMethod, key any) string {
		return signToken(t, method, key, "box-office")
	}

	tests := []struct {
		name       string
		header     map[string]string
		wantStatus int
	}{
		{"no header", nil, http.StatusUnauthorized},
		{"not bearer", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized},
		{"wrong secret", map[string]string{"Authorization": "Bearer " + sign(jwt.SigningMethodHS256, []byte("other"))}, http.StatusUnauthorized},
		{"wrong algorithm", map[string]string{"Authorization": "Bearer " + sign(jwt.SigningMethodHS512, []byte(secret))}, http.StatusUnauthorized},
		{"valid", map[string]string{"Authorization": "Bearer " + sign(jwt.SigningMethodHS256, []byte(secret))}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, "/api/v1/prices", "", tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestClaimsFromContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), claimsContextKey, jwt.MapClaims{"sub": "x"})
	claims, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "x", claims["sub"])
}

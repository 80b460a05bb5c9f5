package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/storefront-go/internal/crypto"
	"github.com/storefront/storefront-go/internal/middleware"
	"github.com/storefront/storefront-go/internal/repository"
	"github.com/storefront/storefront-go/internal/service"
)

const registerBody = `{"name":"A","email":"a@x.com","password":"p1","phone":"1234567890"}`

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (d *memDenylist) Revoke(_ context.Context, id string, _ time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[id] = true
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[id], nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type testServer struct {
	handler http.Handler
	store   *repository.MemoryStore
}

func newTestServer(t *testing.T, denylist service.Denylist, db Pinger) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore()
	tokens, err := crypto.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	authSvc := service.NewAuthService(log, store.Users(), crypto.NewHasher(bcrypt.MinCost), tokens, denylist)
	profileSvc := service.NewProfileService(store.Users(), store.Addresses())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewRouter(ctx, RouterConfig{
		Auth:           NewAuthHandler(authSvc, log),
		Profile:        NewProfileHandler(profileSvc, log),
		Health:         NewHealthHandler(db, log),
		Authenticator:  authSvc,
		Log:            log,
		AllowedOrigins: []string{"http://localhost:5173"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
	return &testServer{handler: h, store: store}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.AuthHeader, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/auth/user/register", registerBody, "").Code)

	rec := s.do(http.MethodPost, "/auth/user/login", `{"email":"a@x.com","password":"p1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	token, ok := strings.CutPrefix(rec.Header().Get(middleware.AuthHeader), "Bearer ")
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func decodeMessages(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var body []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegister_ThenDuplicate(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodPost, "/auth/user/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User created successfully", decodeMessage(t, rec))
	assert.NotContains(t, rec.Body.String(), "p1")

	rec = s.do(http.MethodPost, "/auth/user/register", registerBody, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email or phone number already exists", decodeMessage(t, rec))
}

func TestRegister_DuplicatePhoneOnly(t *testing.T) {
	s := newTestServer(t, nil, nil)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/auth/user/register", registerBody, "").Code)

	rec := s.do(http.MethodPost, "/auth/user/register",
		`{"name":"B","email":"b@x.com","password":"p2","phone":1234567890}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email or phone number already exists", decodeMessage(t, rec))
}

func TestRegister_ValidationErrors(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodPost, "/auth/user/register", `{"email":"not-an-email"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	msgs := decodeMessages(t, rec)
	assert.Contains(t, msgs, "Name is required")
	assert.Contains(t, msgs, "Invalid email address")
	assert.Contains(t, msgs, "Password is required")
	assert.Contains(t, msgs, "Phone number is required")
}

func TestRegister_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodPost, "/auth/user/register", `{"name":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Invalid request body"}, decodeMessages(t, rec))

	rec = s.do(http.MethodPost, "/auth/user/register", `{"phone":true}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Invalid request body"}, decodeMessages(t, rec))
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	s := newTestServer(t, nil, nil)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.do(http.MethodPost, "/auth/user/register", registerBody, "").Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		if c == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusBadRequest, c)
		}
	}
	assert.Equal(t, 1, created)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil, nil)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/auth/user/register", registerBody, "").Code)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"success", `{"email":"a@x.com","password":"p1"}`, http.StatusOK, "Login successful"},
		{"unknown email", `{"email":"nobody@x.com","password":"p1"}`, http.StatusBadRequest, "Invalid email or password"},
		{"wrong password", `{"email":"a@x.com","password":"nope"}`, http.StatusBadRequest, "Wrong password"},
		{"email case differs", `{"email":"A@x.com","password":"p1"}`, http.StatusBadRequest, "Invalid email or password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/auth/user/login", tt.body, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeMessage(t, rec))

			header := rec.Header().Get(middleware.AuthHeader)
			if tt.status == http.StatusOK {
				assert.True(t, strings.HasPrefix(header, "Bearer "))
			} else {
				assert.Empty(t, header)
			}
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(http.MethodPost, "/auth/user/login", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Email is required", "Password is required"}, decodeMessages(t, rec))
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t, nil, nil)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/auth/user/logout"},
		{http.MethodGet, "/auth/user/refresh-token"},
		{http.MethodGet, "/auth/user/profile"},
		{http.MethodPut, "/auth/user/profile"},
		{http.MethodGet, "/auth/user/me"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := s.do(rt.method, rt.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Access denied. No token provided", decodeMessage(t, rec))

			rec = s.do(rt.method, rt.path, "", "garbage")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Invalid or expired token", decodeMessage(t, rec))
		})
	}
}

func TestProfile_GetAndUpdate(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.login(t)

	rec := s.do(http.MethodGet, "/auth/user/profile", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "A", profile["name"])
	assert.Equal(t, "a@x.com", profile["email"])
	assert.Equal(t, "1234567890", profile["phone"])
	assert.Equal(t, []any{}, profile["address"])

	update := `{"street":"1 Main St","city":"Springfield","state":"IL","zip":"62701","country":"US"}`
	for i := 0; i < 2; i++ {
		rec = s.do(http.MethodPut, "/auth/user/profile", update, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Profile updated successfully", decodeMessage(t, rec))
	}

	rec = s.do(http.MethodGet, "/auth/user/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	addresses, ok := profile["address"].([]any)
	require.True(t, ok)
	require.Len(t, addresses, 2)
	first := addresses[0].(map[string]any)
	assert.Equal(t, "Springfield", first["city"])
}

func TestProfile_UnknownUser(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tokens, err := crypto.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.GenerateToken(4242)
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/auth/user/profile", "", token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `"Internal Server Error"`, rec.Body.String())

	update := `{"street":"1 Main St","city":"Springfield","state":"IL","zip":"62701","country":"US"}`
	rec = s.do(http.MethodPut, "/auth/user/profile", update, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `"Internal Server Error"`, rec.Body.String())
}

func TestProfile_UpdateValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.login(t)

	rec := s.do(http.MethodPut, "/auth/user/profile", `{"street":"1 Main St"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{
		"City is required",
		"State is required",
		"Zip code is required",
		"Country is required",
	}, decodeMessages(t, rec))
}

func TestLogout_WithoutDenylistKeepsTokenValid(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.login(t)

	rec := s.do(http.MethodPost, "/auth/user/logout", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeMessage(t, rec))
	values, present := rec.Header()[middleware.AuthHeader]
	assert.True(t, present)
	assert.Equal(t, []string{""}, values)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/auth/user/profile", "", token).Code)
}

func TestLogout_WithDenylistRevokesToken(t *testing.T) {
	s := newTestServer(t, &memDenylist{revoked: make(map[string]bool)}, nil)
	token := s.login(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/auth/user/logout", "", token).Code)

	rec := s.do(http.MethodGet, "/auth/user/profile", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decodeMessage(t, rec))
}

func TestRefresh_RotatesWithDenylist(t *testing.T) {
	s := newTestServer(t, &memDenylist{revoked: make(map[string]bool)}, nil)
	token := s.login(t)

	rec := s.do(http.MethodGet, "/auth/user/refresh-token", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Token refreshed successfully", decodeMessage(t, rec))

	fresh, ok := strings.CutPrefix(rec.Header().Get(middleware.AuthHeader), "Bearer ")
	require.True(t, ok)
	assert.NotEqual(t, token, fresh)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/auth/user/profile", "", token).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/auth/user/profile", "", fresh).Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, pingFunc(func(context.Context) error { return nil }))
	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", "", "").Code)

	down := newTestServer(t, nil, pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health/ready", "", "").Code)
}

func TestCORS_ExposesAuthenticationHeader(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/user/login", strings.NewReader(`{}`))
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), middleware.AuthHeader)
}

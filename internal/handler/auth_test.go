package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-booking/internal/config"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
	"github.com/iliyamo/cinema-ticket-booking/internal/utils"
)

type memUsers struct {
	byID map[uint64]*model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) (uint64, error) {
	for _, x := range m.byID {
		if x.Email == u.Email {
			return 0, repository.ErrConflict
		}
	}
	id := uint64(len(m.byID) + 1)
	cp := *u
	cp.ID = id
	m.byID[id] = &cp
	return id, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

type memTokens struct {
	live map[string]uint64
}

func (m *memTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	m.live[hash] = userID
	return nil
}

func (m *memTokens) ValidateRefresh(_ context.Context, hash string, _ time.Time) (uint64, error) {
	id, ok := m.live[hash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	return id, nil
}

func (m *memTokens) RevokeByHash(_ context.Context, hash string) error {
	if _, ok := m.live[hash]; !ok {
		return repository.ErrTokenInvalid
	}
	delete(m.live, hash)
	return nil
}

// staleTokens answers ValidateRefresh from a snapshot taken before any
// revocation, the view two concurrent refreshes of one token both get.
type staleTokens struct {
	*memTokens
	snapshot map[string]uint64
}

func (s *staleTokens) ValidateRefresh(_ context.Context, hash string, _ time.Time) (uint64, error) {
	id, ok := s.snapshot[hash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	return id, nil
}

const testSecret = "test-secret"

func authServer() *echo.Echo {
	return authServerWith(&memUsers{byID: map[uint64]*model.User{}}, &memTokens{live: map[string]uint64{}})
}

func authServerWith(users UserStore, ts TokenStore) *echo.Echo {
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	h := NewAuthHandler(cfg, users, ts, quietLog())
	e := echo.New()
	e.Validator = NewValidator()
	g := e.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, middleware.JWTAuth(testSecret))
	return e
}

func tokens(t *testing.T, body map[string]any) (access, refresh string) {
	t.Helper()
	data := body["data"].(map[string]any)
	access = data["access"].(map[string]any)["token"].(string)
	refresh = data["refresh"].(map[string]any)["token"].(string)
	return access, refresh
}

func TestRegisterLoginMe(t *testing.T) {
	e := authServer()

	rec := call(e, http.MethodPost, "/api/auth/register",
		`{"name":"Rina","email":"Rina@Example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	access, _ := tokens(t, decode(t, rec))

	id, claims, err := utils.ParseAccessToken(testSecret, access)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, "CUSTOMER", claims.Role)

	rec = call(e, http.MethodPost, "/api/auth/register",
		`{"name":"Rina","email":"rina@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(e, http.MethodPost, "/api/auth/login", `{"email":"rina@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(e, http.MethodPost, "/api/auth/login", `{"email":"rina@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	access, _ = tokens(t, decode(t, rec))

	req := newReq(http.MethodGet, "/api/auth/me", access)
	rec = serveReq(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rina@example.com", decode(t, rec)["data"].(map[string]any)["email"])
}

func TestRegisterValidation(t *testing.T) {
	rec := call(authServer(), http.MethodPost, "/api/auth/register", `{"name":"","email":"nope","password":"short"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestRefreshRotates(t *testing.T) {
	e := authServer()
	rec := call(e, http.MethodPost, "/api/auth/register",
		`{"name":"Budi","email":"budi@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, refresh := tokens(t, decode(t, rec))

	rec = call(e, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, next := tokens(t, decode(t, rec))
	assert.NotEqual(t, refresh, next)

	rec = call(e, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenRotatesOnlyOnce(t *testing.T) {
	users := &memUsers{byID: map[uint64]*model.User{}}
	store := &memTokens{live: map[string]uint64{}}
	rec := call(authServerWith(users, store), http.MethodPost, "/api/auth/register",
		`{"name":"Sari","email":"sari@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, refresh := tokens(t, decode(t, rec))

	snapshot := map[string]uint64{}
	for k, v := range store.live {
		snapshot[k] = v
	}
	e := authServerWith(users, &staleTokens{memTokens: store, snapshot: snapshot})

	body := `{"refresh_token":"` + refresh + `"}`
	assert.Equal(t, http.StatusOK, call(e, http.MethodPost, "/api/auth/refresh", body).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/api/auth/refresh", body).Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	e := authServer()
	rec := call(e, http.MethodPost, "/api/auth/register",
		`{"name":"Dewi","email":"dewi@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, refresh := tokens(t, decode(t, rec))
	body := `{"refresh_token":"` + refresh + `"}`

	assert.Equal(t, http.StatusNoContent, call(e, http.MethodPost, "/api/auth/logout", body).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/api/auth/logout", body).Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/api/auth/refresh", body).Code)
}

func newReq(method, path, bearer string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	return req
}

func serveReq(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

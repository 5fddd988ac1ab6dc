package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"geekdeals/internal/handlers"
	"geekdeals/internal/middleware"
	"geekdeals/internal/repositories"
	"geekdeals/internal/services"
)

type lastCode struct {
	mu   sync.Mutex
	code string
}

func (l *lastCode) SendLoginCode(email, name, code string) error {
	l.mu.Lock()
	l.code = code
	l.mu.Unlock()
	return nil
}

func (l *lastCode) get() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.code
}

func newRouter(t *testing.T) (*gin.Engine, *lastCode, *services.CodeDispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := repositories.NewMemoryUserRepository()
	auth := services.NewAuthService(bcrypt.MinCost)
	users := services.NewUserService(userRepo, auth)
	store, err := services.NewCodeStore(services.CodeStoreConfig{})
	require.NoError(t, err)
	mail := &lastCode{}
	dispatcher := services.NewCodeDispatcher(mail, nil)
	tokens, err := services.NewTokenIssuer(services.TokenConfig{Secret: "test-secret"})
	require.NoError(t, err)
	login := services.NewLoginService(services.NewCredentialVerifier(userRepo, auth), store, dispatcher, tokens, userRepo, nil)

	r := SetupRoutes(gin.New(),
		middleware.AuthMiddleware(tokens, users),
		handlers.NewAuthHandler(login),
		handlers.NewUserHandler(users),
		handlers.NewProductHandler(services.NewProductService(repositories.NewMemoryProductRepository())),
	)
	return r, mail, dispatcher
}

func call(t *testing.T, r *gin.Engine, method, path string, body any, bearer string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func TestHealth(t *testing.T) {
	r, _, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Geek Deals Platform API funcionando!", w.Body.String())

	code, body := call(t, r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestTwoStepLoginFlow(t *testing.T) {
	r, mail, dispatcher := newRouter(t)

	code, body := call(t, r, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ana", "cpf": "12345678900", "email": "ana@geek.com", "password": "s3cret",
	}, "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Conta criada com sucesso!", body["message"])

	code, body = call(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ana@geek.com", "password": "s3cret",
	}, "")
	require.Equal(t, http.StatusOK, code)
	session, _ := body["sessionToken"].(string)
	require.NotEmpty(t, session)
	dispatcher.Wait()

	code, body = call(t, r, http.MethodPost, "/api/auth/2fa/resend", map[string]string{"sessionToken": session}, "")
	require.Equal(t, http.StatusOK, code)
	dispatcher.Wait()

	code, body = call(t, r, http.MethodPost, "/api/auth/2fa/verify", map[string]string{
		"sessionToken": session, "code": mail.get(),
	}, "")
	require.Equal(t, http.StatusOK, code)
	access, _ := body["accessToken"].(string)
	require.NotEmpty(t, access)

	code, body = call(t, r, http.MethodGet, "/api/auth/me", nil, access)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ana@geek.com", body["email"])

	code, _ = call(t, r, http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, r, http.MethodGet, "/api/products", nil, access)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, r, http.MethodDelete, "/api/products/whatever", nil, access)
	assert.Equal(t, http.StatusNoContent, code)
}

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geekdeals/internal/config"
	"geekdeals/internal/limiter"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                   config.EnvDevelopment,
		Port:                  3000,
		DatabaseURL:           "memory://",
		JWTSecret:             "test-secret",
		JWTExpiration:         "1h",
		JWTIssuer:             "geekdeals-api",
		BcryptCost:            4,
		SMTPFrom:              "noreply@geekdeals.com",
		CodeTTL:               "10m",
		CodeSweepInterval:     "5m",
		CodeMaxAttempts:       5,
		LoginThrottleEnabled:  true,
		LoginThrottlePerEmail: 10,
		LoginThrottlePerIP:    30,
		LoginThrottleWindow:   "15m",
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig())
	require.NoError(t, err)
	defer a.Close(ctx)

	for _, path := range []string{"/", "/healthz"} {
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/products", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_MissingSecretFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewOperatorNotifier(t *testing.T) {
	cfg := testConfig()
	assert.NotNil(t, newOperatorNotifier(cfg))

	cfg.Env = config.EnvProduction
	assert.Nil(t, newOperatorNotifier(cfg))
}

func TestNewLoginThrottle(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()

	th, closer := newLoginThrottle(ctx, cfg)
	assert.IsType(t, &limiter.MemoryLimiter{}, th)
	assert.Nil(t, closer)

	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	th, closer = newLoginThrottle(ctx, cfg)
	require.NotNil(t, closer)
	defer closer(ctx)
	assert.IsType(t, &limiter.RedisLimiter{}, th)

	ok, err := th.Allow(ctx, "email:ana@geek.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("glt:email:ana@geek.com"))

	cfg.LoginThrottleEnabled = false
	th, closer = newLoginThrottle(ctx, cfg)
	assert.Nil(t, th)
	assert.Nil(t, closer)
}

func TestNewEmailService(t *testing.T) {
	cfg := testConfig()
	assert.NotNil(t, newEmailService(cfg))

	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPUser = "mailer"
	assert.NotNil(t, newEmailService(cfg))
}

func TestOpenStorage_UnsupportedScheme(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseURL = "mysql://x"
	_, _, _, err := openStorage(context.Background(), cfg)
	assert.Error(t, err)
}

package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("CORS_ORIGINS", "https://shop.example, https://admin.example")
	return LoadConfig()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_PUBLIC_URL", "")
	t.Setenv("MONGO_URL", "mongodb://fallback:27017")
	t.Setenv("BCRYPT_COST", "not-a-number")
	cfg := testConfig(t)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "mongodb://fallback:27017", cfg.MongoURI)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORSOrigins)
}

func TestNewServerRequiresSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""

	_, _, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestNewServerRejectsUnknownDrivers(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = "cassandra"
	_, _, err := NewServer(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.UploadBackend = "ftp"
	_, _, err = NewServer(cfg)
	assert.Error(t, err)
}

func TestNewServerWithMemoryStore(t *testing.T) {
	srv, cleanup, err := NewServer(testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	for path, want := range map[string]int{
		"/health":                    http.StatusOK,
		"/api/v1/categories":         http.StatusOK,
		"/api/v1/products/get/count": http.StatusOK,
		"/api/v1/users":              http.StatusUnauthorized,
		"/nope":                      http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	c := corsConfig([]string{"https://shop.example"})
	assert.False(t, c.AllowAllOrigins)
	assert.True(t, c.AllowCredentials)
	assert.Equal(t, []string{"https://shop.example"}, c.AllowOrigins)
}

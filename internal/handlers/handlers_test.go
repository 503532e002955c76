package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eshop-backend/internal/model"
	"eshop-backend/internal/service"
	"eshop-backend/internal/store"
	"eshop-backend/internal/store/memory"
	"eshop-backend/internal/upload"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func init() { gin.SetMode(gin.TestMode) }

type testAPI struct {
	t          *testing.T
	router     *gin.Engine
	db         *memory.DB
	stores     store.Stores
	auth       service.AuthService
	adminToken string
	userToken  string
	user       model.User
	uploadDir  string
}

// newTestAPI mounts the routes over stores. Admin and user accounts live in
// a separate memory store so stores may be empty.
func newTestAPI(t *testing.T, stores store.Stores, orders service.OrderService) *testAPI {
	t.Helper()
	accounts := memory.New().Stores().Users
	if stores.Users != nil {
		accounts = stores.Users
	}
	auth := service.NewAuthService(accounts, service.AuthConfig{
		Secret:     []byte("test-secret"),
		BcryptCost: bcrypt.MinCost,
	})

	uploadDir := t.TempDir()
	r := gin.New()
	Routes(r.Group("/api/v1"), Deps{
		Stores:  stores,
		Auth:    auth,
		Orders:  orders,
		Uploads: upload.New(upload.Local{Dir: uploadDir, PublicPath: "/public/uploads"}),
	})

	ctx := context.Background()
	admin, err := auth.Register(ctx, model.User{Name: "Root", Email: "root@example.com", IsAdmin: true}, "rootpw")
	require.NoError(t, err)
	user, err := auth.Register(ctx, model.User{Name: "Ada", Email: "ada@example.com"}, "adapw")
	require.NoError(t, err)
	adminToken, err := auth.IssueToken(admin)
	require.NoError(t, err)
	userToken, err := auth.IssueToken(user)
	require.NoError(t, err)

	return &testAPI{t: t, router: r, stores: stores, auth: auth, adminToken: adminToken, userToken: userToken, user: user, uploadDir: uploadDir}
}

// newMemoryAPI is a testAPI over a fresh in-memory database.
func newMemoryAPI(t *testing.T) *testAPI {
	t.Helper()
	db := memory.New()
	st := db.Stores()
	api := newTestAPI(t, st, service.NewOrderService(st))
	api.db = db
	return api
}

func (a *testAPI) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) json(method, path, token string, v any) *httptest.ResponseRecorder {
	a.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(a.t, err)
		body = bytes.NewReader(b)
	}
	return a.do(method, path, token, body, "application/json")
}

type file struct {
	field, name string
	content     []byte
}

func (a *testAPI) multipart(method, path, token string, fields map[string]string, files ...file) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(a.t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(a.t, err)
		_, err = fw.Write(f.content)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, w.Close())
	return a.do(method, path, token, &body, w.FormDataContentType())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *testAPI) category(name string) model.Category {
	a.t.Helper()
	c, err := a.stores.Categories.Create(context.Background(), model.Category{Name: name})
	require.NoError(a.t, err)
	return c
}

func (a *testAPI) product(name string, price float64, cat model.Category, featured bool) model.Product {
	a.t.Helper()
	p, err := a.stores.Products.Create(context.Background(), model.Product{
		Name: name, Price: price, CategoryID: cat.ID, IsFeatured: featured, Image: "http://old/" + name + ".png",
	})
	require.NoError(a.t, err)
	return p
}

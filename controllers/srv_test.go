package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearpool/app"
	"gearpool/controllers"
	"gearpool/ledger"
	"gearpool/models"
)

const (
	memberID  = int64(1001)
	managerID = int64(2001)
)

// stubCache 内存版 SearchCache：记录 Put 的内容，Invalidate 整体清空
type stubCache struct {
	mu    sync.Mutex
	items map[string][]models.Gear
}

func newStubCache() *stubCache {
	return &stubCache{items: map[string][]models.Gear{}}
}

func (c *stubCache) Get(ctx context.Context, q string) ([]models.Gear, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[q], nil
}

func (c *stubCache) Put(ctx context.Context, q string, items []models.Gear) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[q] = items
	return nil
}

func (c *stubCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string][]models.Gear{}
	return nil
}

// newTestRouter 用内存存储搭一个与生产同形的路由树
func newTestRouter(t *testing.T) (*gin.Engine, *ledger.MemStore) {
	return newTestRouterWithCache(t, nil)
}

func newTestRouterWithCache(t *testing.T, c controllers.SearchCache) (*gin.Engine, *ledger.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ledger.NewMemStore()
	store.AddUser(models.User{TelegramID: memberID, FullName: "Member", Phone: "1"})
	store.AddUser(models.User{TelegramID: managerID, FullName: "Manager", Phone: "2", IsManager: true})

	s := &controllers.Srv{
		Ledger: ledger.NewService(store),
		Users:  store,
		Cache:  c,
		Log:    zap.NewNop(),
	}
	gearCtl := controllers.NewGearController(s)
	rentalCtl := controllers.NewRentalController(s)
	userCtl := controllers.NewUserController(s)

	identMW := app.IdentityRequired(s.Users)
	managerMW := app.ManagerOnly()

	r := gin.New()

	users := r.Group("/api/users")
	users.POST("", userCtl.CreateUser)
	users.GET("/:id", userCtl.GetUser)
	users.PATCH("/:id", userCtl.PatchUser)
	users.GET("/:id/is_manager", userCtl.IsManager)

	gear := r.Group("/api/gear")
	gear.GET("/search", gearCtl.SearchGear)
	gear.GET("/:id", gearCtl.GetGear)
	gearAdmin := r.Group("/api/gear", identMW, managerMW)
	gearAdmin.POST("", gearCtl.CreateGear)
	gearAdmin.PATCH("/:id", gearCtl.EditGear)

	rentals := r.Group("/api/rentals")
	rentals.GET("/active", rentalCtl.ListActive)
	rentals.GET("/:id", rentalCtl.GetRental)
	rentals.GET("/:id/returns", rentalCtl.ListReturns)
	rentalsAdmin := r.Group("/api/rentals", identMW, managerMW)
	rentalsAdmin.POST("", rentalCtl.CreateRental)
	rentalsAdmin.PATCH("/:id/return", rentalCtl.Return)
	rentalsAdmin.PATCH("/:id", rentalCtl.EditRental)

	return r, store
}

// doJSON 发送一次请求；identity != 0 时带上身份头
func doJSON(t *testing.T, r *gin.Engine, method, path string, identity int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if identity != 0 {
		req.Header.Set(app.IdentityHeader, jsonInt(identity))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), "body: %s", w.Body.String())
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

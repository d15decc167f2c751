package app_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"gearpool/app"
	"gearpool/ledger"
	"gearpool/models"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ledger.NewMemStore()
	store.AddUser(models.User{TelegramID: 1, FullName: "Member", Phone: "1"})
	store.AddUser(models.User{TelegramID: 2, FullName: "Manager", Phone: "2", IsManager: true})

	r := gin.New()
	r.GET("/ident", app.IdentityRequired(store), func(c *gin.Context) {
		c.JSON(http.StatusOK, app.H{"telegramID": c.GetInt64("telegramID")})
	})
	r.GET("/admin", app.IdentityRequired(store), app.ManagerOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path string, identity int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if identity != 0 {
		req.Header.Set(app.IdentityHeader, strconv.FormatInt(identity, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityRequired(t *testing.T) {
	r := newAuthRouter(t)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/ident", 0).Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/ident", 99).Code)
	})

	t.Run("known user passes", func(t *testing.T) {
		w := get(r, "/ident", 1)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"telegramID":1`)
	})
}

func TestManagerOnly(t *testing.T) {
	r := newAuthRouter(t)

	t.Run("member forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(r, "/admin", 1).Code)
	})

	t.Run("manager allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, get(r, "/admin", 2).Code)
	})

	t.Run("no identity at all", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/admin", 0).Code)
	})
}

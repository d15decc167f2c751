package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearpool/controllers"
	"gearpool/ledger"
	"gearpool/models"
)

// lostRaceDirectory 模拟检查与写入之间被对手插队：FindUser 永远未命中
type lostRaceDirectory struct{ *ledger.MemStore }

func (d lostRaceDirectory) FindUser(ctx context.Context, telegramID int64) (*models.User, error) {
	return nil, nil
}

func TestUserEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("create", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/users", 0, map[string]any{
			"telegramId": 3001, "fullName": "New Member", "phone": "+70000000003",
		})
		mustStatus(t, w, http.StatusCreated)
		var u models.User
		decodeBody(t, w, &u)
		assert.Equal(t, int64(3001), u.TelegramID)
		assert.False(t, u.IsManager)
	})

	t.Run("create duplicate is 409", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/users", 0, map[string]any{
			"telegramId": memberID, "fullName": "Again", "phone": "1",
		})
		mustStatus(t, w, http.StatusConflict)
	})

	t.Run("get", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/users/1001", 0, nil)
		mustStatus(t, w, http.StatusOK)
		var u models.User
		decodeBody(t, w, &u)
		assert.Equal(t, "Member", u.FullName)
	})

	t.Run("get missing is 404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/users/424242", 0, nil)
		mustStatus(t, w, http.StatusNotFound)
	})

	t.Run("get bad id is 400", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/users/abc", 0, nil)
		mustStatus(t, w, http.StatusBadRequest)
	})

	t.Run("patch applies supplied fields", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, "/api/users/1001", 0, map[string]any{
			"phone": "+79990000000", "document": "AB1234",
		})
		mustStatus(t, w, http.StatusOK)
		var u models.User
		decodeBody(t, w, &u)
		assert.Equal(t, "+79990000000", u.Phone)
		require.NotNil(t, u.Document)
		assert.Equal(t, "AB1234", *u.Document)
		assert.Equal(t, "Member", u.FullName)
	})

	t.Run("patch empty document clears it", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, "/api/users/1001", 0, map[string]any{
			"document": "",
		})
		mustStatus(t, w, http.StatusOK)
		var u models.User
		decodeBody(t, w, &u)
		assert.Nil(t, u.Document)
	})

	t.Run("lost race on create is 409", func(t *testing.T) {
		// 对手在存在性检查之后、写入之前抢先注册了同一 id：
		// FindUser 未命中但 CreateUser 撞主键，也要映射成冲突而非 503
		store := ledger.NewMemStore()
		store.AddUser(models.User{TelegramID: 42, FullName: "First", Phone: "1"})

		s := &controllers.Srv{
			Ledger: ledger.NewService(store),
			Users:  lostRaceDirectory{store},
			Log:    zap.NewNop(),
		}
		r2 := gin.New()
		r2.POST("/api/users", controllers.NewUserController(s).CreateUser)

		w := doJSON(t, r2, http.MethodPost, "/api/users", 0, map[string]any{
			"telegramId": 42, "fullName": "Second", "phone": "2",
		})
		mustStatus(t, w, http.StatusConflict)
	})

	t.Run("is_manager flag", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/users/2001/is_manager", 0, nil)
		mustStatus(t, w, http.StatusOK)
		var resp struct {
			IsManager bool `json:"isManager"`
		}
		decodeBody(t, w, &resp)
		assert.True(t, resp.IsManager)

		w = doJSON(t, r, http.MethodGet, "/api/users/1001/is_manager", 0, nil)
		mustStatus(t, w, http.StatusOK)
		decodeBody(t, w, &resp)
		assert.False(t, resp.IsManager)
	})
}

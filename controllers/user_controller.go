// controllers/user_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gearpool/app"
	"gearpool/models"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// POST /api/users
func (uc *UserController) CreateUser(c *gin.Context) {
	var in struct {
		TelegramID int64   `json:"telegramId" binding:"required"`
		FullName   string  `json:"fullName" binding:"required"`
		Phone      string  `json:"phone" binding:"required"`
		Document   *string `json:"document"`
		IsManager  bool    `json:"isManager"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	existing, err := uc.Users.FindUser(c.Request.Context(), in.TelegramID)
	if err != nil {
		uc.fail(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, app.H{"error": "user already exists"})
		return
	}

	u := &models.User{
		TelegramID: in.TelegramID,
		FullName:   in.FullName,
		Phone:      in.Phone,
		Document:   in.Document,
		IsManager:  in.IsManager,
	}
	if err := uc.Users.CreateUser(c.Request.Context(), u); err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid telegram id"})
		return
	}
	u, err := uc.Users.FindUser(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// PATCH /api/users/:id — 只应用提供的字段；document 传空串表示清除
func (uc *UserController) PatchUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid telegram id"})
		return
	}
	var in struct {
		FullName  *string `json:"fullName"`
		Phone     *string `json:"phone"`
		Document  *string `json:"document"`
		IsManager *bool   `json:"isManager"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = *in.FullName
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Document != nil {
		if *in.Document == "" {
			fields["document"] = nil
		} else {
			fields["document"] = *in.Document
		}
	}
	if in.IsManager != nil {
		fields["is_manager"] = *in.IsManager
	}

	u, err := uc.Users.UpdateUser(c.Request.Context(), id, fields)
	if err != nil {
		uc.fail(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/users/:id/is_manager
func (uc *UserController) IsManager(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid telegram id"})
		return
	}
	u, err := uc.Users.FindUser(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, app.H{"isManager": u.IsManager})
}

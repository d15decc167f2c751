// controllers/rental_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gearpool/app"
	"gearpool/ledger"
)

type RentalController struct{ *Srv }

func NewRentalController(s *Srv) *RentalController { return &RentalController{Srv: s} }

// POST /api/rentals （仅管理员签发）
func (rc *RentalController) CreateRental(c *gin.Context) {
	var in struct {
		BorrowerID int64     `json:"borrowerId" binding:"required"`
		IssuerID   int64     `json:"issuerId" binding:"required"`
		GearID     string    `json:"gearId" binding:"required"`
		Quantity   int       `json:"quantity" binding:"required"`
		DueAt      time.Time `json:"dueAt" binding:"required"`
		Event      string    `json:"event" binding:"required"`
		Note       string    `json:"note"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	rec, err := rc.Ledger.Checkout(c.Request.Context(), ledger.CheckoutInput{
		BorrowerID: in.BorrowerID,
		IssuerID:   in.IssuerID,
		GearID:     in.GearID,
		Quantity:   in.Quantity,
		DueAt:      in.DueAt,
		Event:      in.Event,
		Note:       in.Note,
	})
	if err != nil {
		rc.fail(c, err)
		return
	}
	// 借出改变了 available_count，缓存的检索结果已过期
	rc.dropSearchCache(c.Request.Context())
	c.JSON(http.StatusCreated, rec)
}

// GET /api/rentals/active?userId=
func (rc *RentalController) ListActive(c *gin.Context) {
	var borrowerID *int64
	if v := c.Query("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid userId"})
			return
		}
		borrowerID = &id
	}
	items, err := rc.Ledger.ListOutstanding(c.Request.Context(), borrowerID)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// GET /api/rentals/:id
func (rc *RentalController) GetRental(c *gin.Context) {
	rec, err := rc.Ledger.GetRental(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// PATCH /api/rentals/:id/return （仅管理员验收；quantity 缺省=全部）
func (rc *RentalController) Return(c *gin.Context) {
	var in struct {
		AcceptorID int64 `json:"acceptorId" binding:"required"`
		Quantity   *int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	rec, err := rc.Ledger.Return(c.Request.Context(), ledger.ReturnInput{
		RentalID:   c.Param("id"),
		AcceptorID: in.AcceptorID,
		Quantity:   in.Quantity,
	})
	if err != nil {
		rc.fail(c, err)
		return
	}
	// 归还改变了 available_count，缓存的检索结果已过期
	rc.dropSearchCache(c.Request.Context())
	c.JSON(http.StatusOK, rec)
}

// PATCH /api/rentals/:id — 只改元数据，不碰数量
func (rc *RentalController) EditRental(c *gin.Context) {
	var in struct {
		DueAt *time.Time `json:"dueAt"`
		Event *string    `json:"event"`
		Note  *string    `json:"note"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	rec, err := rc.Ledger.EditRental(c.Request.Context(), c.Param("id"), ledger.RentalPatch{
		DueAt: in.DueAt,
		Event: in.Event,
		Note:  in.Note,
	})
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/rentals/:id/returns — 部分归还的审计轨迹
func (rc *RentalController) ListReturns(c *gin.Context) {
	evs, err := rc.Ledger.ListReturnEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": evs})
}

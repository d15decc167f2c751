// controllers/gear_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gearpool/app"
	"gearpool/ledger"
)

type GearController struct{ *Srv }

func NewGearController(s *Srv) *GearController { return &GearController{Srv: s} }

// POST /api/gear （仅管理员）
func (gc *GearController) CreateGear(c *gin.Context) {
	var in struct {
		Name           string `json:"name" binding:"required"`
		TotalQuantity  int    `json:"totalQuantity" binding:"required"`
		AvailableCount *int   `json:"availableCount"`
		Description    string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	g, err := gc.Ledger.RegisterGear(c.Request.Context(), ledger.RegisterGearInput{
		Name:           in.Name,
		TotalQuantity:  in.TotalQuantity,
		AvailableCount: in.AvailableCount,
		Description:    in.Description,
	})
	if err != nil {
		gc.fail(c, err)
		return
	}
	gc.dropSearchCache(c.Request.Context())
	c.JSON(http.StatusCreated, g)
}

// GET /api/gear/:id
func (gc *GearController) GetGear(c *gin.Context) {
	g, err := gc.Ledger.GetGear(c.Request.Context(), c.Param("id"))
	if err != nil {
		gc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GET /api/gear/search?q=
func (gc *GearController) SearchGear(c *gin.Context) {
	q := c.Query("q")

	if gc.Cache != nil {
		if items, err := gc.Cache.Get(c.Request.Context(), q); err != nil {
			gc.Log.Warn("search cache get failed", zap.Error(err))
		} else if items != nil {
			c.JSON(http.StatusOK, app.H{"items": items, "cached": true})
			return
		}
	}

	items, err := gc.Ledger.SearchGear(c.Request.Context(), q)
	if err != nil {
		gc.fail(c, err)
		return
	}
	if gc.Cache != nil {
		if err := gc.Cache.Put(c.Request.Context(), q, items); err != nil {
			gc.Log.Warn("search cache put failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// PATCH /api/gear/:id （仅管理员；只应用提供的字段）
func (gc *GearController) EditGear(c *gin.Context) {
	var in struct {
		Name           *string `json:"name"`
		TotalQuantity  *int    `json:"totalQuantity"`
		AvailableCount *int    `json:"availableCount"`
		Description    *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	g, err := gc.Ledger.EditGear(c.Request.Context(), c.Param("id"), ledger.GearPatch{
		Name:           in.Name,
		TotalQuantity:  in.TotalQuantity,
		AvailableCount: in.AvailableCount,
		Description:    in.Description,
	})
	if err != nil {
		gc.fail(c, err)
		return
	}
	gc.dropSearchCache(c.Request.Context())
	c.JSON(http.StatusOK, g)
}

package routes

import (
	"github.com/gin-gonic/gin"

	"gearpool/app"
	"gearpool/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	gearCtl := controllers.NewGearController(s)
	rentalCtl := controllers.NewRentalController(s)
	userCtl := controllers.NewUserController(s)

	// 复用的中间件
	identMW := app.IdentityRequired(s.Users)
	managerMW := app.ManagerOnly()

	// ------------------------------
	// 用户（身份目录）
	// ------------------------------
	users := r.Group("/api/users")
	{
		users.POST("", userCtl.CreateUser)
		users.GET("/:id", userCtl.GetUser)
		users.PATCH("/:id", userCtl.PatchUser)
		users.GET("/:id/is_manager", userCtl.IsManager)
	}

	// ------------------------------
	// 装备目录
	// ------------------------------
	gear := r.Group("/api/gear")
	{
		gear.GET("/search", gearCtl.SearchGear)
		gear.GET("/:id", gearCtl.GetGear)
	}
	gearAdmin := r.Group("/api/gear", identMW, managerMW)
	{
		gearAdmin.POST("", gearCtl.CreateGear)
		gearAdmin.PATCH("/:id", gearCtl.EditGear)
	}

	// ------------------------------
	// 借还台账
	// ------------------------------
	rentals := r.Group("/api/rentals")
	{
		rentals.GET("/active", rentalCtl.ListActive)
		rentals.GET("/:id", rentalCtl.GetRental)
		rentals.GET("/:id/returns", rentalCtl.ListReturns)
	}
	rentalsAdmin := r.Group("/api/rentals", identMW, managerMW)
	{
		rentalsAdmin.POST("", rentalCtl.CreateRental)
		rentalsAdmin.PATCH("/:id/return", rentalCtl.Return)
		rentalsAdmin.PATCH("/:id", rentalCtl.EditRental)
	}
}

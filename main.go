package main

import (
	"context"
	"log"
	"os"

	"gearpool/app"
	"gearpool/config"
	"gearpool/db"
	"gearpool/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	// 空库时按环境变量引导首个管理员
	app.BootstrapFirstManager(context.Background(), application.Config,
		db.NewRepo(application.DB), application.Log)

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}

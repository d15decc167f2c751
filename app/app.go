package app

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gearpool/db"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Log    *zap.Logger
	Config Config
}

// Config 从环境变量读取
type Config struct {
	RedisAddr      string
	RedisPwd       string
	WebOrigin      string
	SearchCacheTTL time.Duration

	// 首个管理员的引导配置
	BootstrapManagerID   int64
	BootstrapManagerName string
}

func MustNew() *App {
	cfg := loadConfig()

	var logger *zap.Logger
	var err error
	if os.Getenv("GIN_MODE") == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis", zap.Error(err))
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{Router: r, DB: dbConn, RDB: rdb, Log: logger, Config: cfg}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	_ = a.Log.Sync()
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttlSec := get("SEARCH_CACHE_TTL_SECONDS", "60")
	ttl := 60 * time.Second
	if d, err := time.ParseDuration(ttlSec + "s"); err == nil {
		ttl = d
	}

	var bootID int64
	if v := os.Getenv("BOOTSTRAP_MANAGER_TELEGRAM_ID"); v != "" {
		bootID, _ = strconv.ParseInt(v, 10, 64)
	}

	return Config{
		RedisAddr:            get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:             os.Getenv("REDIS_PASSWORD"),
		WebOrigin:            get("WEB_ORIGIN", "http://localhost:3000"),
		SearchCacheTTL:       ttl,
		BootstrapManagerID:   bootID,
		BootstrapManagerName: get("BOOTSTRAP_MANAGER_NAME", "bootstrap manager"),
	}
}

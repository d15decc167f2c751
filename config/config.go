package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（不存在时静默跳过）
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
}

package db

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gearpool/models"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	// TranslateError: 把重复键等驱动错误翻译成 gorm 哨兵错误
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Gear{}, &models.Rental{}, &models.ReturnEvent{}); err != nil {
		return err
	}

	// 数据库侧兜底约束：计数永不越界、数量恒为正
	checks := []struct{ table, name, expr string }{
		{models.GearTable, "gear_total_positive", "total_quantity > 0"},
		{models.GearTable, "gear_available_in_range", "available_count >= 0 AND available_count <= total_quantity"},
		{models.RentalTable, "rentals_quantity_positive", "quantity > 0"},
	}
	for _, c := range checks {
		if err := db.Exec(fmt.Sprintf(
			`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s`, c.table, c.name)).Error; err != nil {
			return err
		}
		if err := db.Exec(fmt.Sprintf(
			`ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)`, c.table, c.name, c.expr)).Error; err != nil {
			return err
		}
	}

	// 查询未归还记录更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_borrower
	  ON %s (borrower_id)
	  WHERE returned_at IS NULL;
	`, models.RentalTable, models.RentalTable)).Error; err != nil {
		return err
	}

	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_gear_issuedat_desc
	  ON %s (gear_id, issued_at DESC)
	  WHERE returned_at IS NULL;
	`, models.RentalTable, models.RentalTable)).Error; err != nil {
		return err
	}

	return nil
}

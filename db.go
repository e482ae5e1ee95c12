package main

import (
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"familyhub/models"
)

var db *gorm.DB

func initDB() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any
	// permission errors are logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		migrateModels(db)
	}
	ensureUploadBase()
}

// migrateModels migrates each table individually so a failure on one doesn't
// block the others.
func migrateModels(gdb *gorm.DB) {
	if err := gdb.AutoMigrate(&models.Task{}); err != nil {
		log.Printf("migration warning (tasks): %v", err)
	}
	if err := gdb.AutoMigrate(&models.Event{}); err != nil {
		log.Printf("migration warning (events): %v", err)
	}
	if err := gdb.AutoMigrate(&models.Meal{}); err != nil {
		log.Printf("migration warning (meals): %v", err)
	}
	if err := gdb.AutoMigrate(&models.Expense{}); err != nil {
		log.Printf("migration warning (expenses): %v", err)
	}
	if err := gdb.AutoMigrate(&models.Trip{}); err != nil {
		log.Printf("migration warning (trips): %v", err)
	}
	if err := gdb.AutoMigrate(&models.Upload{}); err != nil {
		log.Printf("migration warning (uploads): %v", err)
	}
}

// ensureUploadBase creates the base directory for stored receipt images.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir returns the base directory for receipt uploads (configurable
// via UPLOAD_BASE env).
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}

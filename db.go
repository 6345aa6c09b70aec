package main

import (
	"log"
	"os"
	"strings"

	"be04/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// masterRoles are the four account kinds the app knows about.
var masterRoles = []models.Role{
	{Name: "administrator", Description: "full access"},
	{Name: "store", Description: "store account"},
	{Name: "manager", Description: "store manager"},
	{Name: "vendor", Description: "supplier/vendor account"},
}

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	// Now migrate the rest (users will get FK to roles)
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.Store{}); err != nil {
			log.Printf("migration warning (stores): %v", err)
		}
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.WeightReading{}); err != nil {
			log.Printf("migration warning (weight_readings): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
	}
	seedDB()
}

func seedRoles() {
	for _, r := range masterRoles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

// seedDB ensures master roles and, when ADMIN_USERNAME/ADMIN_PASSWORD are
// set, a bootstrap administrator account.
func seedDB() {
	seedRoles()

	adminUser := os.Getenv("ADMIN_USERNAME")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminUser == "" || adminPass == "" {
		return
	}
	var existing models.User
	if err := db.Where("username = ?", adminUser).First(&existing).Error; err == nil {
		return
	}
	var role models.Role
	if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
		log.Printf("seed warning: administrator role missing: %v", err)
		return
	}
	hpw, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("seed warning: bcrypt failed: %v", err)
		return
	}
	rid := role.ID
	admin := models.User{Username: adminUser, HashedPassword: hpw, RoleID: &rid, Approved: true}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("seed warning: create admin failed: %v", err)
	}
}

// uploadBaseDir is where scan images are stored; override with UPLOAD_BASE.
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "public"
}

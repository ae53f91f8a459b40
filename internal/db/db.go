package db

import (
	"log"
	"os"
	"studymate/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the database and runs migrations. With DATABASE_URL set it
// connects to Postgres; otherwise it falls back to a local SQLite file so a
// fresh checkout runs with zero setup.
func Init() {
	var dialector gorm.Dialector
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "studymate.db"
		}
		dialector = sqlite.Open(path)
	}

	var err error
	// TranslateError lets handlers match gorm.ErrDuplicatedKey on both drivers
	DB, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	err = DB.AutoMigrate(
		&models.User{},
		&models.Study{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Enrollment{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")
}

package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/utils"
)

var (
	db     *gorm.DB
	onceDB sync.Once
)

func DB() *gorm.DB {
	onceDB.Do(func() {
		port, err := strconv.Atoi(os.Getenv("DB_PORT"))
		if err != nil {
			port = 5432
		}

		dsn := fmt.Sprintf(
			"postgres://%[4]s:%[5]s@%[1]s:%[2]d/%[3]s",
			os.Getenv("DB_HOST"),
			port,
			os.Getenv("DB_NAME"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASS"),
		)

		logLevel := logger.Warn

		if utils.IsDebug() {
			logLevel = logger.Info
		}

		database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
			Logger:                 logger.Default.LogMode(logLevel),
		})
		if err != nil {
			slog.Error(fmt.Sprintf("Could not connect to PostgreSQL: %v", err))
			os.Exit(1)
		}

		if err := database.Exec("CREATE EXTENSION IF NOT EXISTS unaccent").Error; err != nil {
			slog.Error(fmt.Sprintf("Could not load unaccent extension: %v", err))
		}

		if err := database.AutoMigrate(
			&models.User{},
			&models.Site{},
			&models.SiteUser{},
			&models.SiteSetting{},
			&models.Payee{},
			&models.Category{},
			&models.SiteCategory{},
			&models.Video{},
			&models.Playlist{},
			&models.PlaylistVideo{},
			&models.ImpressionReport{},
			&models.HealthCheckOverride{},
		); err != nil {
			slog.Error(fmt.Sprintf("Could not migrate models: %v", err))
			os.Exit(1)
		}

		db = database
	})

	return db
}

func setupCategories() {
	categories := []string{
		"Food & Drink",
		"Home & Garden",
		"Travel",
		"Parenting",
		"Lifestyle",
		"Finance",
		"Health & Fitness",
		"Education",
	}

	for _, name := range categories {
		category := &models.Category{}

		if err := DB().Where(&models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
			slog.Error(fmt.Sprintf("Could not create %s category: %v", name, err))
			continue
		}
	}
}

func setupDefaultAdmin() {
	email := os.Getenv("DEFAULT_ADMIN_EMAIL")

	if !utils.IsValidEmail(email) {
		slog.Warn("No default administrator configured.")
		return
	}

	count := int64(0)
	if err := DB().Model(&models.User{}).
		Where("is_admin = @is_admin AND deleted_at IS NULL", sql.Named("is_admin", true)).
		Count(&count).Error; err != nil {
		slog.Error(fmt.Sprintf("Could not count administrators: %v", err))
		return
	}

	if count > 0 {
		return
	}

	password, err := utils.RandomPassword(35)
	if err != nil {
		slog.Error(fmt.Sprintf("Could not generate administrator password: %v", err))
		return
	}

	secret, err := utils.RandomString(48)
	if err != nil {
		slog.Error(fmt.Sprintf("Could not generate administrator token secret: %v", err))
		return
	}

	isAdmin := true
	active := true
	admin := &models.User{
		Email:       email,
		Password:    utils.HashPassword(password),
		IsAdmin:     &isAdmin,
		Active:      &active,
		TokenSecret: secret,
	}

	if err := DB().Where(&models.User{Email: email}).FirstOrCreate(&admin).Error; err != nil {
		slog.Error(fmt.Sprintf("Could not create default administrator: %v", err))
	}
}

func SetupDefaultData() {
	setupCategories()
	setupDefaultAdmin()
}

package main

import (
	"context"

	"anoa.com/droneanalytics/internal/bootstrap"
	"anoa.com/droneanalytics/internal/config"
	userRepo "anoa.com/droneanalytics/internal/modules/user/repository"
	"anoa.com/droneanalytics/internal/server"
	"anoa.com/droneanalytics/pkg/credential"
	"anoa.com/droneanalytics/pkg/database"
	"anoa.com/droneanalytics/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	dbLogLevel := gormLogger.Warn
	if cfg.IsDevelopment() {
		dbLogLevel = gormLogger.Info
	}

	db, err := database.Connect(database.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		Host:        cfg.DBHost,
		User:        cfg.DBUser,
		Password:    cfg.DBPass,
		Name:        cfg.DBName,
		Port:        cfg.DBPort,
		SQLitePath:  cfg.SQLitePath,
		LogLevel:    dbLogLevel,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	if cfg.IsDevelopment() {
		credentials := credential.NewManager(cfg.JWTSecret, cfg.JWTTTL)
		seed := bootstrap.AdminSeed{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}
		if err := bootstrap.SeedAdminUser(context.Background(), userRepo.NewUserRepository(db), credentials, seed); err != nil {
			log.WithError(err).Fatal("failed to seed admin user")
		}
	}

	redisClient := connectRedis(cfg.RedisURL, log)

	srv := server.NewServer(server.Deps{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
		Search:      server.NewSearch(cfg),
		Logger:      log,
	})

	log.WithFields(logrus.Fields{
		"port": cfg.Port,
		"env":  cfg.AppEnv,
	}).Info("drone analytics API listening")

	if err := srv.Run(":" + cfg.Port); err != nil {
		if closeErr := srv.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("failed to release resources")
		}
		log.WithError(err).Fatal("server exited with error")
	}
}

// connectRedis returns nil when redis is not configured or unreachable; the
// upload rate limit is then disabled.
func connectRedis(url string, log *logrus.Logger) *redis.Client {
	if url == "" {
		log.Info("REDIS_URL not set, upload rate limit disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.WithError(err).Warn("invalid REDIS_URL, upload rate limit disabled")
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, upload rate limit disabled")
		_ = client.Close()
		return nil
	}

	return client
}

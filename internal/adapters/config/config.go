package config

import (
	"fmt"
	"log"
	"os"
	"time"

	postgresStorage "github.com/bcplughub/backend/internal/adapters/database/postgres"
	redisStorage "github.com/bcplughub/backend/internal/adapters/database/redis"
	"github.com/bcplughub/backend/pkg/blob"
	"github.com/bcplughub/backend/pkg/imagegen"
	"github.com/bcplughub/backend/pkg/logger"
	"github.com/bcplughub/backend/pkg/smtp"
	"github.com/bcplughub/backend/pkg/textgen"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	Database *gorm.DB
	Redis    *redisStorage.Client
	SMTP     *smtp.Client
	TextGen  *textgen.Client
	ImageGen *imagegen.Client
	Blob     *blob.Client
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
}

func Get() *Config {
	initConfig()

	err := logger.Init(logger.Config{
		Debug:     viper.GetBool("settings.debug"),
		LogToFile: viper.GetBool("settings.log-to-file"),
		LogsDir:   viper.GetString("settings.logs-dir"),
	})
	if err != nil {
		panic(err)
	}

	var gormConfig *gorm.Config
	if viper.GetBool("settings.debug") {
		newLogger := gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
		gormConfig = &gorm.Config{
			Logger: newLogger,
		}
	} else {
		gormConfig = &gorm.Config{}
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable TimeZone=UTC",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	redisClient, err := redisStorage.New(redisStorage.Options{
		Host:     viper.GetString("service.redis.host"),
		Port:     viper.GetString("service.redis.port"),
		Password: viper.GetString("service.redis.password"),
	})
	if err != nil {
		logger.Log.Panicf("Failed to connect to redis: %v", err)
	} else {
		logger.Log.Info("Successfully connected to redis")
	}

	var smtpClient *smtp.Client
	if viper.GetString("service.smtp.host") != "" {
		dialer := gomail.NewDialer(
			viper.GetString("service.smtp.host"),
			viper.GetInt("service.smtp.port"),
			viper.GetString("service.smtp.email"),
			viper.GetString("service.smtp.password"),
		)
		smtpClient = smtp.NewClient(dialer)
	}

	var textGenClient *textgen.Client
	var imageGenClient *imagegen.Client
	if apiKey := viper.GetString("service.openai.api-key"); apiKey != "" {
		textGenClient = textgen.NewClient(textgen.Options{
			BaseURL: viper.GetString("service.openai.base-url"),
			APIKey:  apiKey,
			Model:   viper.GetString("service.openai.text-model"),
		})
		imageGenClient = imagegen.NewClient(imagegen.Options{
			BaseURL: viper.GetString("service.openai.base-url"),
			APIKey:  apiKey,
			Model:   viper.GetString("service.openai.image-model"),
		})
	}

	var blobClient *blob.Client
	if viper.GetString("service.s3.endpoint") != "" {
		blobClient, err = blob.NewClient(blob.Options{
			Endpoint:  viper.GetString("service.s3.endpoint"),
			Region:    viper.GetString("service.s3.region"),
			AccessKey: viper.GetString("service.s3.access-key"),
			SecretKey: viper.GetString("service.s3.secret-key"),
			Bucket:    viper.GetString("service.s3.bucket"),
		})
		if err != nil {
			logger.Log.Panicf("Failed to init blob storage: %v", err)
		}
	}

	return &Config{
		Database: database,
		Redis:    redisClient,
		SMTP:     smtpClient,
		TextGen:  textGenClient,
		ImageGen: imageGenClient,
		Blob:     blobClient,
	}
}

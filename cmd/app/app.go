package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bcplughub/backend/internal/adapters/config"
	httpController "github.com/bcplughub/backend/internal/adapters/controller/http"
	postgresStorage "github.com/bcplughub/backend/internal/adapters/database/postgres"
	"github.com/bcplughub/backend/internal/domain/service"
	"github.com/bcplughub/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type App struct {
	engine *gin.Engine
	events *service.EventService
}

func New(cfg *config.Config) (*App, error) {
	apiLogger, err := logger.Named("api")
	if err != nil {
		return nil, err
	}
	eventsLogger, err := logger.Named("events")
	if err != nil {
		return nil, err
	}
	notifyLogger, err := logger.Named("notify")
	if err != nil {
		return nil, err
	}
	predictLogger, err := logger.Named("predict")
	if err != nil {
		return nil, err
	}

	userStorage := postgresStorage.NewUserStorage(cfg.Database)
	eventStorage := postgresStorage.NewEventStorage(cfg.Database)
	historyStorage := postgresStorage.NewHistoricalEventStorage(cfg.Database)
	notificationStorage := postgresStorage.NewNotificationStorage(cfg.Database)

	notifyService := service.NewNotifyService(notificationStorage, nil, notifyLogger)
	if cfg.SMTP != nil {
		notifyService = service.NewNotifyService(notificationStorage, cfg.SMTP, notifyLogger)
	}

	posterService := service.NewPosterService(nil, nil, viper.GetString("service.event-base-url"), apiLogger)
	if cfg.ImageGen != nil && cfg.Blob != nil {
		posterService = service.NewPosterService(cfg.ImageGen, cfg.Blob, viper.GetString("service.event-base-url"), apiLogger)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	userService := service.NewUserService(userStorage, nil, rng, apiLogger)
	predictService := service.NewPredictService(eventStorage, cfg.Redis.Insights, nil, viper.GetDuration("predict.cache-ttl"), predictLogger, nil)
	if cfg.TextGen != nil {
		userService = service.NewUserService(userStorage, cfg.TextGen, rng, apiLogger)
		predictService = service.NewPredictService(eventStorage, cfg.Redis.Insights, cfg.TextGen, viper.GetDuration("predict.cache-ttl"), predictLogger, nil)
	}

	eventService := service.NewEventService(eventStorage, historyStorage, userStorage, notifyService, posterService, eventsLogger, nil)

	seed := viper.GetInt64("predict.seed")
	if seed == 0 {
		seed = 42
	}
	goatedService := service.NewGoatedService(eventStorage, cfg.Redis.Goated, seed, viper.GetDuration("predict.cache-ttl"), predictLogger, nil)

	engine := httpController.SetupRouter(httpController.Handlers{
		Users:         httpController.NewUserHandler(userService, eventService),
		Events:        httpController.NewEventHandler(eventService),
		Notifications: httpController.NewNotificationHandler(notifyService),
		Insights:      httpController.NewInsightsHandler(predictService, goatedService),
	}, viper.GetStringSlice("server.allow-origins"), viper.GetBool("settings.debug"))

	return &App{
		engine: engine,
		events: eventService,
	}, nil
}

// Start launches the background sweeps and serves HTTP.
func (a *App) Start() error {
	interval := viper.GetDuration("settings.archive-interval")
	if interval == 0 {
		interval = time.Minute
	}
	a.events.StartArchiveScheduler(interval)

	addr := fmt.Sprintf("%s:%d", viper.GetString("server.host"), viper.GetInt("server.port"))
	logger.Log.Infof("Listening on %s", addr)
	return a.engine.Run(addr)
}

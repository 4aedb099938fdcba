package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	qhttp "medicost/http"
	"medicost/insurance"
	"medicost/logging"
	"medicost/model"
	"medicost/monitoring"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Model struct {
		Path        string `yaml:"path"`
		WarmOnStart bool   `yaml:"warm_on_start"`
	} `yaml:"model"`
	Rates struct {
		USDToINR float64 `yaml:"usd_to_inr"`
	} `yaml:"rates"`
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		RateLimit      int      `yaml:"rate_limit"`
	} `yaml:"http"`
	Log        logging.Config `yaml:"log"`
	Monitoring struct {
		Live         bool `yaml:"live"`
		RecentBuffer int  `yaml:"recent_buffer"`
	} `yaml:"monitoring"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(config.Log)
	defer logger.Sync()

	// 2. Model registry: lazy single load, probed at startup when configured
	registry := model.NewRegistry(config.Model.Path, logger)
	if config.Model.WarmOnStart {
		if _, err := registry.Get(); err != nil {
			logger.Fatal("model artifact unusable", zap.Error(err))
		}
		monitoring.ModelLoaded.Set(1)
	}

	watcher, err := monitoring.WatchArtifact(config.Model.Path, logger)
	if err != nil {
		logger.Warn("artifact watcher disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	// 3. Prediction core
	service := insurance.NewPredictionService(registry, logger)

	var hub *monitoring.Hub
	if config.Monitoring.Live {
		hub = monitoring.NewHub(config.Monitoring.RecentBuffer, logger)
		go hub.Run()
		defer hub.Stop()
	}

	// 4. HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds != 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) != 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}
	serverConfig.RateLimit = config.Http.RateLimit

	api := qhttp.NewAPI(service, registry, hub, config.Rates.USDToINR, logger)
	server := qhttp.NewServer(serverConfig, api, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	if config.Rates.USDToINR == 0 {
		config.Rates.USDToINR = 83.50
	}
	return &config, nil
}

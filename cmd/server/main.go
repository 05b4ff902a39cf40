package main

import (
	"log"
	"os"

	"github.com/iceymoss/news-hub/internal/conf"
	"github.com/iceymoss/news-hub/internal/server"
	pkgconf "github.com/iceymoss/news-hub/pkg/config"
	"github.com/iceymoss/news-hub/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn("⚠️ .env not loaded", zap.Error(err))
	}

	env := os.Getenv("NEWSHUB_ENV")
	if env == "" {
		env = "local"
	}
	pkgconf.InitConfig(env, "")

	cfg, err := conf.LoadConfig("configs/config.yaml")
	if err != nil {
		logger.Fatal("❌ LoadConfig error", zap.Error(err))
	}

	srv := server.NewServer(cfg)

	port := cfg.Server.Port
	if port == "" {
		port = ":8080"
	}

	log.Printf("🌐 News hub running at http://localhost%s", port)
	if err := srv.Run(port); err != nil {
		logger.Fatal("❌ Server error", zap.Error(err))
	}
}

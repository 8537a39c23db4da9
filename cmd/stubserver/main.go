// Package main runs the in-memory stub backend for local development.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/technovus/client-go/internal/config"
	"github.com/technovus/client-go/internal/stubserver"
	"github.com/technovus/client-go/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	loggerCfg := config.LoadLoggerConfigFromEnv()
	zl, err := logger.NewWithConfig(loggerCfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	cfg := stubserver.Config{
		FixedOTP:       config.GetEnv("STUB_FIXED_OTP", "1234"),
		JWTKey:         config.GetEnv("STUB_JWT_KEY", ""),
		AccessTokenTTL: config.GetEnvDuration("STUB_ACCESS_TOKEN_TTL", 0),
		PermissionGate: config.GetEnv("STUB_PERMISSION_GATE", "true") == "true",
	}

	srv := stubserver.New(cfg, zl)

	addr := config.GetEnv("STUB_ADDR", ":8080")
	if err := srv.Run(addr); err != nil {
		zl.Fatalw("server stopped", "error", err)
	}
}

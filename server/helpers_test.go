package server

import (
	"go.uber.org/zap"

	"platformserver/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.TickRate = 60
	cfg.RespawnDelayMs = 1800
	cfg.DisconnectGraceMs = 15000
	return cfg
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"platformserver/config"
	"platformserver/server"
)

// 入口：加载配置，启动 HTTP + WebSocket 服务，初始化房间协调器
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// 使用第三方 zap 日志库写入 app.log（带滚动）
	if err := server.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	// 可选的 YAML 调优文件：覆盖编译期物理/节奏常量
	if err := server.LoadTuning(cfg.TuningPath); err != nil {
		server.Log.Fatalf("tuning: %v", err)
	}

	mgr := server.NewManager(cfg, server.Log)
	mux := server.NewMux(cfg, mgr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		server.Log.Infof("listening on %s (env=%s, tickRate=%dHz)", addr, cfg.Env, cfg.TickRate)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
}

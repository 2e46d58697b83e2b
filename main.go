package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moyoez/fileshare-go/api"
	"github.com/moyoez/fileshare-go/api/notifyhub"
	"github.com/moyoez/fileshare-go/process"
	"github.com/moyoez/fileshare-go/storage"
	"github.com/moyoez/fileshare-go/tool"
)

func main() {
	cfg := tool.SetFlags()
	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.UseUploadDir != "" {
		appCfg.UploadDir = cfg.UseUploadDir
	}
	if cfg.UsePort > 0 {
		appCfg.Port = cfg.UsePort
	}
	if cfg.UseShareURL != "" {
		appCfg.ShareURL = cfg.UseShareURL
	}

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	if err := os.MkdirAll(appCfg.UploadDir, 0o755); err != nil {
		tool.DefaultLogger.Fatalf("Failed to create upload dir %s: %v", appCfg.UploadDir, err)
	}

	hub := notifyhub.New()
	namer := storage.NewNamer(appCfg.UploadDir)

	var converter *process.Converter
	if !cfg.SkipConvert {
		converter = process.NewConverter(appCfg.UploadDir, appCfg.ConvertWorkers, namer, hub)
	} else {
		tool.DefaultLogger.Info("Image conversion disabled")
	}

	apiServer := api.NewDefaultServer(appCfg, converter, namer, hub)
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	tool.DefaultLogger.Info("Shutting down file sharing service")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		tool.DefaultLogger.Errorf("Server shutdown: %v", err)
	}
	if converter != nil {
		converter.Stop()
	}
}

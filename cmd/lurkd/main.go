package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/emberhall/lurkd/pkg/config"
	"github.com/emberhall/lurkd/pkg/logger"
	"github.com/emberhall/lurkd/pkg/server"
	"github.com/emberhall/lurkd/pkg/world"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	listen := flag.String("listen", "", "Listen address (overrides config)")
	noConsole := flag.Bool("no-console", false, "Disable the admin console")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Init("info", "")
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	defer logger.Sync()

	w, err := world.Load(cfg.MapPath)
	if err != nil {
		logger.Fatal("failed to build game map", zap.Error(err))
	}

	desc, err := os.ReadFile(cfg.DescriptionPath)
	if err != nil {
		logger.Fatal("failed to read description file",
			zap.String("path", cfg.DescriptionPath), zap.Error(err))
	}

	srv := server.New(server.Config{
		Address:       cfg.Listen,
		InitialPoints: cfg.InitialPoints,
		StatLimit:     cfg.StatLimit,
		MajorRev:      cfg.MajorRev,
		MinorRev:      cfg.MinorRev,
		Description:   string(desc),
	}, w)

	if err := srv.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	logger.Info("lurkd started",
		zap.String("address", cfg.Listen),
		zap.Uint16("initial_points", cfg.InitialPoints),
		zap.Uint16("stat_limit", cfg.StatLimit))

	if !*noConsole {
		go srv.RunConsole(os.Stdin, os.Stdout, cfg.CmdPrefix)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.Stringer("signal", sig))

	srv.Stop()
}

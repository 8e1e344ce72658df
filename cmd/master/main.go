package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"armada/internal/config"
	"armada/internal/logging"
	"armada/internal/master/scheduler"
	"armada/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	etcdManager, err := store.NewEtcdManager(cfg.Etcd.Endpoints, logger.Named("store"))
	if err != nil {
		logger.Fatal("connect to etcd", zap.Error(err))
	}
	defer etcdManager.Close()

	ttl, err := cfg.HeartbeatTTL()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	sched := scheduler.New(etcdManager, ttl, logger.Named("scheduler"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down master")
}

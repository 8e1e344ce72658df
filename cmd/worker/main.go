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
	"armada/internal/worker"
	"armada/pkg/cluster"
	"armada/pkg/model"
	"armada/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	address := flag.String("address", "", "Override the advertised node address")
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

	addr := *address
	if addr == "" {
		addr = cfg.Worker.Address
	}
	if addr == "" {
		addr, err = cluster.OutboundAddress()
		if err != nil {
			logger.Fatal("discover node address", zap.Error(err))
		}
	}

	interval, err := cfg.HeartbeatInterval()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	agent := worker.NewAgent(worker.Config{
		Address: addr,
		Capacity: model.Resources{
			CPU:    cfg.Worker.CPU,
			GPU:    cfg.Worker.GPU,
			Custom: cfg.Worker.Custom,
		},
		HeartbeatInterval: interval,
	}, etcdManager, logger.Named("agent"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go agent.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker", zap.String("address", addr))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"armada/internal/config"
	"armada/internal/logging"
	"armada/pkg/cluster"
	"armada/pkg/fleet"
	"armada/pkg/model"
	"armada/pkg/runtime"
	"armada/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	selfAddr := flag.String("self", "", "Override the coordinator's own address")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall operation timeout")

	pushPath := flag.String("push", "", "Distribute a local file to every other live node")
	execCmd := flag.String("exec", "", "Run a shell command on every live node")
	runCmds := flag.String("run", "", "Comma-separated commands to run with explicit resources")
	cpu := flag.Float64("cpu", 1, "CPUs per command for -run")
	gpu := flag.Float64("gpu", 0, "GPUs per command for -run")
	resList := flag.String("res", "", "Extra resources for -run, e.g. fast_disk=1,licenses=2")
	getLog := flag.String("getlog", "", "Print the stored output of a job ID")

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
		log.Fatalf("connect to etcd: %v", err)
	}
	defer etcdManager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *getLog != "" {
		output, err := etcdManager.GetJobOutput(ctx, *getLog)
		if err != nil {
			log.Fatalf("get output: %v", err)
		}
		fmt.Println(output)
		return
	}

	ttl, err := cfg.HeartbeatTTL()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	dir := cluster.NewDirectory(etcdManager, ttl)
	if *selfAddr != "" {
		dir = dir.WithSelfAddress(*selfAddr)
	}
	fl := fleet.New(dir, runtime.NewEtcdRuntime(etcdManager, logger.Named("runtime")), logger.Named("fleet"))

	switch {
	case *pushPath != "":
		if err := fl.DistributeFile(ctx, *pushPath); err != nil {
			log.Fatalf("distribute file: %v", err)
		}
		fmt.Printf("distributed %s to all other live nodes\n", *pushPath)

	case *execCmd != "":
		results, err := fl.RunOnAllNodes(ctx, *execCmd)
		if err != nil {
			log.Fatalf("run on all nodes: %v", err)
		}
		printResults(results)

	case *runCmds != "":
		resources, err := parseResources(*resList)
		if err != nil {
			log.Fatalf("parse -res: %v", err)
		}
		resources["CPU"] = *cpu
		resources["GPU"] = *gpu

		commands := strings.Split(*runCmds, ",")
		results, err := fl.RunWithResources(ctx, commands, resources)
		if err != nil {
			log.Fatalf("run with resources: %v", err)
		}
		printResults(results)

	default:
		flag.Usage()
	}
}

func printResults(results []model.Result) {
	for _, r := range results {
		fmt.Printf("--- %s (job %s, exit %d)\n", r.NodeAddress, r.JobID, r.ExitCode)
		if r.Output != "" {
			fmt.Print(r.Output)
			if !strings.HasSuffix(r.Output, "\n") {
				fmt.Println()
			}
		}
	}
}

func parseResources(list string) (map[string]float64, error) {
	resources := map[string]float64{}
	if list == "" {
		return resources, nil
	}
	for _, pair := range strings.Split(list, ",") {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=quantity, got %q", pair)
		}
		qty, err := strconv.ParseFloat(raw, 64)
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("invalid quantity %q for %s", raw, name)
		}
		resources[strings.TrimSpace(name)] = qty
	}
	return resources, nil
}

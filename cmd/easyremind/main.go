package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/djlord-it/easy-remind/internal/config"
	"github.com/djlord-it/easy-remind/internal/evaluator"
	"github.com/djlord-it/easy-remind/internal/metrics"
	"github.com/djlord-it/easy-remind/internal/planner"
	"github.com/djlord-it/easy-remind/internal/sink"
	"github.com/djlord-it/easy-remind/internal/store"
	"github.com/djlord-it/easy-remind/internal/store/memory"
	pgstore "github.com/djlord-it/easy-remind/internal/store/postgres"
	redisstore "github.com/djlord-it/easy-remind/internal/store/redis"

	_ "github.com/lib/pq"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`easyremind - personal reminder scheduling engine

Usage:
  easyremind <command>

Commands:
  serve      Start the reminder engine
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  STORE_BACKEND         Config store backend: memory, redis or postgres (default: "memory")
  REDIS_ADDR            Redis address (required for STORE_BACKEND=redis)
  DATABASE_URL          PostgreSQL connection string (required for STORE_BACKEND=postgres)

  DELIVERY_MODE         poll, preregister or both (default: "poll")
  TICK_INTERVAL         Evaluator poll interval (default: "1m")
  RESYNC_INTERVAL       Planner resync interval (default: "15m")
  HORIZON_DAYS          Interval alarm planning horizon (default: "7")

  BRIDGE_URL            Notification bridge base URL (default: log delivery)
  BRIDGE_SECRET         HMAC secret for bridge requests
  BRIDGE_TIMEOUT        Bridge request timeout (default: "30s")
  ACTION_URL            URL to open when a notification is tapped

  HTTP_ADDR             HTTP server address for metrics (default: ":8080")
  METRICS_ENABLED       Enable Prometheus metrics (default: "false")
  METRICS_PATH          Metrics endpoint path (default: "/metrics")

  EVENTBUS_BUFFER_SIZE  Reminder event buffer size (default: "100")
  ALARM_ID_SPACE        Alarm ID space size (default: "9999")
  ALARM_ID_ATTEMPTS     Alarm ID allocation attempt cap (default: "100")`)
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	kv, cleanup, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store error: %v\n", err)
		return exitRuntimeError
	}
	defer cleanup()

	configStore := store.NewConfig(kv)

	var metricsSink metrics.Sink = metrics.NewNoopSink()
	if cfg.MetricsEnabled {
		metricsSink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
	}

	var notifySink sink.Sink
	if cfg.BridgeURL != "" {
		notifySink = sink.NewWebhookSink(cfg.BridgeURL, cfg.BridgeSecret, cfg.BridgeTimeout)
		log.Printf("main: using webhook sink at %s", cfg.BridgeURL)
	} else {
		notifySink = sink.NewLogSink()
		log.Println("main: no bridge configured, using log sink")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.MetricsPath, promhttp.Handler())
		server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("main: metrics on %s%s", cfg.HTTPAddr, cfg.MetricsPath)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("main: metrics server: %v", err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	runPoll := cfg.DeliveryMode == config.DeliveryModePoll || cfg.DeliveryMode == config.DeliveryModeBoth
	runPreregister := cfg.DeliveryMode == config.DeliveryModePreregister || cfg.DeliveryMode == config.DeliveryModeBoth

	if runPoll {
		bus := evaluator.NewEventBus(cfg.EventBusBufferSize)
		runner := evaluator.NewRunner(
			evaluator.Config{TickInterval: cfg.TickInterval},
			configStore, bus, metricsSink,
		)
		deliverer := sink.NewDeliverer(notifySink, metricsSink, cfg.ActionURL)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = runner.Run(ctx)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			deliverer.Run(ctx, bus.Channel())
		}()
	}

	if runPreregister {
		p := planner.New(
			planner.Config{
				HorizonDays:   cfg.HorizonDays,
				IDSpace:       cfg.AlarmIDSpace,
				MaxIDAttempts: cfg.AlarmIDAttempts,
			},
			configStore, notifySink, metricsSink,
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx, cfg.ResyncInterval)
		}()
	}

	log.Printf("easyremind %s started (mode=%s, store=%s)", version, cfg.DeliveryMode, cfg.StoreBackend)

	<-ctx.Done()
	log.Println("main: shutting down")
	wg.Wait()

	return exitSuccess
}

// openStore builds the configured KV backend. The returned cleanup closes
// the underlying connection, if any.
func openStore(cfg config.Config) (store.KV, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		return memory.New(), func() {}, nil

	case config.StoreBackendRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return redisstore.New(client), func() { client.Close() }, nil

	case config.StoreBackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		kv := pgstore.New(db)
		if err := kv.EnsureSchema(pingCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return kv, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func runValidate() int {
	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}
	fmt.Println("configuration OK")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()
	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitRuntimeError
	}
	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("easyremind %s (%s)\n", version, commit)
	return exitSuccess
}

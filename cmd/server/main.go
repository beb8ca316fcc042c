package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"machinecraft.ai/internal/bus"
	"machinecraft.ai/internal/ledger"
	persistlog "machinecraft.ai/internal/persistence/log"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
	"machinecraft.ai/internal/sim/tuning"
	"machinecraft.ai/internal/sim/world"
	"machinecraft.ai/internal/transport/ws"
)

func main() {
	var (
		worldID    = flag.String("world", "world_1", "world id")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		memLedger  = flag.Bool("mem_ledger", false, "use an in-memory ledger (no persistence)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if tune.ProtocolVersion != protocol.Version {
		logger.Fatalf("tuning protocol_version %q does not match server %q", tune.ProtocolVersion, protocol.Version)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	logger.Printf("catalogs: %d machines, %d storage types, %d items (machines digest %.12s)",
		len(cats.Machines.ByID), len(cats.Storage.ByID), len(cats.Items.Index), cats.Machines.Digest)

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("mkdir %s: %v", worldDir, err)
	}

	storageTypes := make([]string, 0, len(cats.Storage.ByID))
	for id := range cats.Storage.ByID {
		storageTypes = append(storageTypes, id)
	}
	sort.Strings(storageTypes)

	var led ledger.Ledger
	if *memLedger {
		led = ledger.NewMemory(storageTypes)
		logger.Printf("ledger: in-memory")
	} else {
		path := strings.TrimSpace(tune.LedgerPath)
		if path == "" {
			path = filepath.Join(worldDir, "ledger.db")
		}
		sq, err := ledger.OpenSQLite(path, storageTypes)
		if err != nil {
			logger.Fatalf("open ledger: %v", err)
		}
		defer sq.Close()
		led = sq
		logger.Printf("ledger: sqlite %s", path)
	}

	logDir := strings.TrimSpace(tune.LogDir)
	if logDir == "" {
		logDir = filepath.Join(worldDir, "logs")
	}
	passLog := persistlog.NewPassLogger(logDir)
	defer passLog.Close()
	auditLog := persistlog.NewAuditLogger(logDir)
	defer auditLog.Close()

	mb := bus.New()
	w := world.New(world.WorldConfig{
		ID:                  *worldID,
		TickRateHz:          tune.TickRateHz,
		ReconcileEveryTicks: tune.ReconcileEveryTicks,
		EvictRadius:         tune.SessionEvictRadius,
	}, cats, led, mb)
	w.SetPassLogger(passLog)
	w.SetAuditLogger(auditLog)

	srv := ws.NewServer(w, mb, logger, tune.ValidateResponses)
	mux := srv.Mux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	httpSrv := &http.Server{Addr: tune.ListenAddr, Handler: mux}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Printf("listening on %s (world %s, tick %d Hz, reconcile every %d ticks)",
			tune.ListenAddr, *worldID, tune.TickRateHz, tune.ReconcileEveryTicks)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logger.Printf("world loop: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	logger.Printf("shutdown complete")
}

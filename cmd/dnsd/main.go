// Command dnsd runs the DNS engine: an authoritative responder backed by a
// loaded zone directory, and a recursive resolver for everything else, both
// reachable over UDP.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lucaspiller/dnsd/internal/dns/authoritative"
	"github.com/lucaspiller/dnsd/internal/dns/blocklist"
	"github.com/lucaspiller/dnsd/internal/dns/blocklist/bloom"
	"github.com/lucaspiller/dnsd/internal/dns/blocklist/bolt"
	blru "github.com/lucaspiller/dnsd/internal/dns/blocklist/lru"
	"github.com/lucaspiller/dnsd/internal/dns/blocklist/parsers"
	"github.com/lucaspiller/dnsd/internal/dns/cache"
	"github.com/lucaspiller/dnsd/internal/dns/common/log"
	"github.com/lucaspiller/dnsd/internal/dns/config"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/resolver"
	"github.com/lucaspiller/dnsd/internal/dns/server"
	"github.com/lucaspiller/dnsd/internal/dns/transport"
	"github.com/lucaspiller/dnsd/internal/dns/zone"
)

const (
	version                = "0.1.0-dev"
	defaultShutdownTimeout = 10 * time.Second
	defaultDialTimeout     = 5 * time.Second
)

// Application holds every wired component of the DNS server.
type Application struct {
	config    *config.AppConfig
	transport transport.ServerTransport
	handler   transport.Handler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":           version,
		"env":               cfg.Env,
		"log_level":         cfg.LogLevel,
		"port":              cfg.Port,
		"transport":         cfg.Protocol,
		"zone_dir":          cfg.ZoneDir,
		"blocklist_enabled": cfg.BlocklistEnabled,
	}, "Starting dnsd")

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Server failed")
	}

	log.Info(nil, "dnsd stopped gracefully")
}

// buildApplication constructs every component and wires them together.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()

	zoneStore, err := buildZoneStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build zone store: %w", err)
	}

	blocklistRepo, err := buildBlocklist(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build blocklist: %w", err)
	}

	responseCache, err := buildCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build response cache: %w", err)
	}

	roots, err := parseRootServers(cfg.RootServers)
	if err != nil {
		return nil, fmt.Errorf("invalid root server configuration: %w", err)
	}

	udpTransport := transport.NewUDPTransport(defaultDialTimeout, (&net.Dialer{}).DialContext)

	res := resolver.NewResolver(resolver.Options{
		Cache:        responseCache,
		Blocklist:    blocklistRepo,
		Transport:    udpTransport,
		Logger:       logger,
		QueryTimeout: time.Duration(cfg.QueryTimeoutSeconds) * time.Second,
		RootServers:  roots,
	})

	responder := authoritative.New(authoritative.Options{
		Zones:     zoneStore,
		Blocklist: blocklistRepo,
		Logger:    logger,
	})

	handler := server.New(server.Options{
		Zones:     zoneStore,
		Responder: responder,
		Resolver:  res,
		Logger:    logger,
	})

	addr := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))
	serverTransport := transport.NewUDPServerTransport(addr, logger)

	return &Application{
		config:    cfg,
		transport: serverTransport,
		handler:   handler,
	}, nil
}

func buildZoneStore(cfg *config.AppConfig, logger log.Logger) (*zone.Store, error) {
	store := zone.NewStore()

	zones, err := zone.LoadDirectory(cfg.ZoneDir, 300*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone directory: %w", err)
	}
	for _, z := range zones {
		store.AddZone(z)
	}

	log.Info(map[string]any{
		"zone_dir": cfg.ZoneDir,
		"zones":    len(store.Origins()),
	}, "Zone store initialized")

	return store, nil
}

// buildBlocklist wires the bolt-backed Store, the LRU decision cache, and the
// bloom-filter fast path into a Repository, loading rules from every
// configured source. A disabled blocklist falls back to Noop so the
// Authoritative Responder and Resolver never need a nil check.
func buildBlocklist(cfg *config.AppConfig, logger log.Logger) (blocklist.Repository, error) {
	if !cfg.BlocklistEnabled {
		log.Info(nil, "Blocklist disabled")
		return blocklist.Noop{}, nil
	}

	store, err := bolt.New(cfg.BlocklistStorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open blocklist store: %w", err)
	}

	decisionCache, err := blru.New(cfg.BlocklistDecisionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create blocklist decision cache: %w", err)
	}

	repo := blocklist.NewRepository(store, decisionCache, bloom.NewFactory(), cfg.BlocklistBloomFPRate)

	rules, err := loadBlocklistRules(cfg.BlocklistSources, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocklist sources: %w", err)
	}

	if err := repo.Update(rules, uint64(time.Now().Unix()), time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to load blocklist rules: %w", err)
	}

	log.Info(map[string]any{
		"sources": cfg.BlocklistSources,
		"rules":   len(rules),
	}, "Blocklist loaded")

	return repo, nil
}

// loadBlocklistRules parses every configured source, choosing the hosts-file
// or plain-list parser by extension: ".hosts" files use the 0.0.0.0-prefixed
// hosts format, everything else is treated as a plain newline-delimited list.
func loadBlocklistRules(sources []string, logger log.Logger) ([]domain.BlockRule, error) {
	var all []domain.BlockRule
	now := time.Now()
	for _, path := range sources {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}

		var rules []domain.BlockRule
		if strings.HasSuffix(path, ".hosts") {
			rules, err = parsers.ParseHostsFile(f, path, logger, now)
		} else {
			rules, err = parsers.ParsePlainList(f, path, logger, now)
		}
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		all = append(all, rules...)
	}
	return all, nil
}

// noopCache disables response caching without requiring the Resolver to
// special-case a nil Cache.
type noopCache struct{}

func (noopCache) Get(string) ([]domain.ResourceRecord, bool) { return nil, false }
func (noopCache) Set([]domain.ResourceRecord) error          { return nil }

func buildCache(cfg *config.AppConfig) (resolver.Cache, error) {
	if cfg.DisableCache {
		log.Info(nil, "DNS response caching disabled")
		return noopCache{}, nil
	}
	c, err := cache.New(int(cfg.CacheSize))
	if err != nil {
		return nil, err
	}
	log.Info(map[string]any{"size": cfg.CacheSize}, "DNS response cache configured")
	return c, nil
}

func parseRootServers(addrs []string) ([]net.IP, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid root server address %q: %w", addr, err)
		}
		ip := net.ParseIP(host)
		if ip == nil {
			return nil, fmt.Errorf("invalid root server IP %q", host)
		}
		ips = append(ips, ip)
	}
	return ips, nil
}

// Run starts the DNS server and blocks until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	if err := app.transport.Start(ctx, app.handler); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	log.Info(map[string]any{"address": app.transport.Address()}, "dnsd listening")

	<-ctx.Done()
	log.Info(nil, "Shutdown initiated")

	stopped := make(chan error, 1)
	go func() { stopped <- app.transport.Stop() }()

	select {
	case err := <-stopped:
		if err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "Error during transport shutdown")
		}
		log.Info(nil, "Graceful shutdown completed")
		return nil
	case <-time.After(defaultShutdownTimeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

package svc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/cuihairu/werewolf/internal/audit"
	"github.com/cuihairu/werewolf/internal/audit/chain"
	chsink "github.com/cuihairu/werewolf/internal/audit/clickhouse"
	"github.com/cuihairu/werewolf/internal/broadcast"
	"github.com/cuihairu/werewolf/internal/broadcast/mq"
	"github.com/cuihairu/werewolf/internal/cli/common"
	"github.com/cuihairu/werewolf/internal/db"
	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/internal/gateway"
	"github.com/cuihairu/werewolf/internal/hotreload"
	"github.com/cuihairu/werewolf/internal/objstore"
	"github.com/cuihairu/werewolf/internal/ports"
	"github.com/cuihairu/werewolf/internal/repo/gorm/snapshots"
	"github.com/cuihairu/werewolf/internal/repo/memory"
	rediscache "github.com/cuihairu/werewolf/internal/repo/redis"
	"github.com/cuihairu/werewolf/internal/session"
	"github.com/cuihairu/werewolf/internal/telemetry"
	"github.com/cuihairu/werewolf/services/werewolf/internal/config"
)

type ServiceContext struct {
	Config    config.Config
	Engine    *session.Engine
	Library   *role.Library
	Hub       *broadcast.Hub
	Telemetry *telemetry.Provider

	watcher *hotreload.Watcher
	rdb     *goredis.Client
	closers []func() error
}

// NewServiceContext wires the engine and its adapters from c.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	logx.Info("Initializing werewolf service context")
	ctx := context.Background()
	el := c.EngineLog
	logger := common.SetupLoggerWithFile(el.Level, el.Format, el.File, el.MaxSize, el.MaxBackups, el.MaxAge, el.Compress)

	s := &ServiceContext{Config: c, Hub: broadcast.NewHub(16)}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	s.Library = role.NewLibrary(role.DefaultCatalog(), logger)
	if c.Roles.File != "" {
		if err := s.Library.LoadFile(c.Roles.File); err != nil {
			return nil, fmt.Errorf("load roles: %w", err)
		}
		if c.Roles.Watch {
			w, err := hotreload.NewWatcher(nil, logger)
			if err != nil {
				return nil, err
			}
			s.watcher = w
			if err := s.Library.Watch(w, c.Roles.File); err != nil {
				return nil, err
			}
			if err := w.Start(ctx); err != nil {
				return nil, err
			}
		}
	}

	store, err := s.openStore(logger)
	if err != nil {
		return nil, err
	}

	q, err := mq.New(c.Queue, logger)
	if err != nil {
		return nil, fmt.Errorf("open queue: %w", err)
	}
	s.closers = append(s.closers, q.Close)
	pubs := broadcast.Multi{s.Hub}
	var gw ports.Gateway = gateway.Log{Logger: logger}
	if t := strings.ToLower(c.Queue.Type); t != "" && t != "noop" {
		pubs = append(pubs, mq.Publisher{Q: q})
		gw = gateway.NewOutbox(q)
	}
	if c.Redis.URL != "" && c.Redis.PubSub {
		cli, err := s.redis()
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, broadcast.NewRedis(cli, c.Redis.Prefix, logger))
	}

	deps := session.Deps{
		Library:   s.Library,
		Store:     store,
		Publisher: pubs,
		Gateway:   gw,
		Logger:    logger,
	}
	if c.Archive.Driver != "" {
		bs, err := objstore.Open(ctx, c.Archive)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		s.closers = append(s.closers, bs.Close)
		deps.Archive = objstore.NewArchive(bs, c.Archive.Prefix)
	}
	var auditors audit.Multi
	if c.Audit.Path != "" {
		aw, err := chain.NewWriter(c.Audit.Path)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		s.closers = append(s.closers, aw.Close)
		auditors = append(auditors, aw)
	}
	if c.Audit.ClickHouse.DSN != "" {
		sink, err := chsink.Open(c.Audit.ClickHouse, logger)
		if err != nil {
			return nil, fmt.Errorf("open audit sink: %w", err)
		}
		s.closers = append(s.closers, sink.Close)
		auditors = append(auditors, sink)
	}
	switch len(auditors) {
	case 0:
	case 1:
		deps.Auditor = auditors[0]
	default:
		deps.Auditor = auditors
	}
	if s.Telemetry, err = telemetry.NewProvider(ctx, c.Telemetry, logger); err != nil {
		return nil, err
	}
	deps.Metrics = s.Telemetry.Metrics
	deps.Tracer = s.Telemetry.Tracer()

	if s.Engine, err = session.New(s.engineConfig(), deps); err != nil {
		return nil, err
	}
	ok = true
	return s, nil
}

func (s *ServiceContext) engineConfig() session.Config {
	ec := s.Config.Engine
	cfg := session.DefaultConfig()
	if ec.Phase != (phase.Config{}) {
		cfg.Phase = ec.Phase
	}
	if ec.MaxCascadeWaves > 0 {
		cfg.MaxCascadeWaves = ec.MaxCascadeWaves
	}
	if ec.LockWait > 0 {
		cfg.LockWait = ec.LockWait
	}
	if ec.CallTimeout > 0 {
		cfg.CallTimeout = ec.CallTimeout
	}
	if ec.TimerRetry > 0 {
		cfg.TimerRetry = ec.TimerRetry
	}
	if ec.QueueSize > 0 {
		cfg.QueueSize = ec.QueueSize
	}
	if ec.MinSeats > 0 {
		cfg.MinSeats = ec.MinSeats
	}
	if ec.MaxSeats > 0 {
		cfg.MaxSeats = ec.MaxSeats
	}
	return cfg
}

// redis returns the shared client, created on first use.
func (s *ServiceContext) redis() (*goredis.Client, error) {
	if s.rdb != nil {
		return s.rdb, nil
	}
	opt, err := goredis.ParseURL(s.Config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	s.rdb = goredis.NewClient(opt)
	s.closers = append(s.closers, s.rdb.Close)
	return s.rdb, nil
}

func (s *ServiceContext) openStore(logger *slog.Logger) (ports.SnapshotStore, error) {
	var store ports.SnapshotStore = memory.NewStore()
	if s.Config.Storage.Driver == "gorm" {
		gdb, err := db.Open(s.Config.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := snapshots.AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if sqlDB, err := gdb.DB(); err == nil {
			s.closers = append(s.closers, sqlDB.Close)
		}
		store = snapshots.NewRepo(gdb)
	}
	if s.Config.Redis.URL != "" {
		cli, err := s.redis()
		if err != nil {
			return nil, err
		}
		store = rediscache.NewCachedStore(cli, store, s.Config.Redis.Prefix, s.Config.Redis.CacheTTL, logger)
	}
	return store, nil
}

// Close stops the engine and releases adapters in reverse order.
func (s *ServiceContext) Close() {
	if s.Engine != nil {
		s.Engine.Close()
	}
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	if s.Telemetry != nil {
		_ = s.Telemetry.Shutdown(context.Background())
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logx.Errorf("close: %v", err)
		}
	}
	s.closers = nil
}

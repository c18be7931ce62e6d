package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"

	chsink "github.com/cuihairu/werewolf/internal/audit/clickhouse"
	"github.com/cuihairu/werewolf/internal/broadcast/mq"
	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/internal/objstore"
	"github.com/cuihairu/werewolf/internal/telemetry"
)

type Config struct {
	rest.RestConf

	Engine struct {
		Phase           phase.Config  `json:",optional"`
		MaxCascadeWaves int           `json:",default=8"`
		LockWait        time.Duration `json:",default=5s"`
		CallTimeout     time.Duration `json:",default=3s"`
		TimerRetry      time.Duration `json:",default=5s"`
		QueueSize       int           `json:",default=64"`
		MinSeats        int           `json:",default=3"`
		MaxSeats        int           `json:",default=20"`
	} `json:",optional"`

	// Storage 快照存储
	Storage struct {
		Driver string `json:",default=memory,options=memory|gorm"`
		DSN    string `json:",optional"` // sqlite 或 postgres
	} `json:",optional"`

	Redis struct {
		URL      string        `json:",optional"`
		Prefix   string        `json:",default=werewolf"`
		CacheTTL time.Duration `json:",default=6h"`
		PubSub   bool          `json:",default=false"`
	} `json:",optional"`

	// Queue carries the snapshot event stream and gateway commands.
	Queue mq.Config `json:",optional"`

	Archive objstore.Config `json:",optional"`

	Telemetry telemetry.Config `json:",optional"`

	Roles struct {
		File  string `json:",optional"`
		Watch bool   `json:",default=true"`
	} `json:",optional"`

	Audit struct {
		Path       string        `json:",optional"`
		ClickHouse chsink.Config `json:",optional"`
	} `json:",optional"`

	// EngineLog configures the slog output of the engine. The service layer
	// logs through logx (RestConf.Log).
	EngineLog struct {
		Level      string `json:",default=info"`
		Format     string `json:",default=console"`
		File       string `json:",optional"`
		MaxSize    int    `json:",default=100"`
		MaxBackups int    `json:",default=5"`
		MaxAge     int    `json:",default=30"`
		Compress   bool   `json:",optional"`
	} `json:",optional"`
}

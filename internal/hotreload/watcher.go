package hotreload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler 热更新回调函数
type ReloadHandler func(ctx context.Context, event ReloadEvent) error

// ReloadEvent 热更新事件
type ReloadEvent struct {
	Path      string    `json:"path"`
	Content   []byte    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Config 热更新配置
type Config struct {
	DebounceTime time.Duration `json:"debounce_time"` // 防抖时间
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{DebounceTime: 500 * time.Millisecond}
}

// Watcher watches individual files and calls the handler registered for each
// path after changes settle.
type Watcher struct {
	config  *Config
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu         sync.Mutex
	handlers   map[string]ReloadHandler // abs path -> handler
	debouncers map[string]*time.Timer
	running    bool
	stopChan   chan struct{}
}

// NewWatcher 创建文件监听器
func NewWatcher(config *Config, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		config:     config,
		logger:     logger,
		watcher:    fw,
		handlers:   make(map[string]ReloadHandler),
		debouncers: make(map[string]*time.Timer),
		stopChan:   make(chan struct{}),
	}, nil
}

// Watch registers a handler for one file. The parent directory is watched so
// editors that replace files on save are still observed.
func (w *Watcher) Watch(path string, handler ReloadHandler) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[abs] = handler
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	w.logger.Info("Registered hot reload handler", "path", abs)
	return nil
}

// Start runs the event loop until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("hot reloader is already running")
	}
	w.running = true
	w.mu.Unlock()
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(ctx, ev.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	handler, ok := w.handlers[abs]
	if !ok {
		return
	}
	if t, exists := w.debouncers[abs]; exists {
		t.Stop()
	}
	w.debouncers[abs] = time.AfterFunc(w.config.DebounceTime, func() {
		if err := w.Reload(ctx, abs, handler); err != nil {
			w.logger.Error("Failed to reload file", "file", abs, "error", err)
		}
	})
}

// Reload reads the file and invokes handler immediately.
func (w *Watcher) Reload(ctx context.Context, path string, handler ReloadHandler) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return handler(ctx, ReloadEvent{Path: path, Content: content, Timestamp: time.Now()})
}

// Stop 停止热更新
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.debouncers {
		t.Stop()
	}
	if w.running {
		close(w.stopChan)
		w.running = false
	}
	return w.watcher.Close()
}

package xagent

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/fsnotify/fsnotify"
)

// 监视器默认值
const (
	DefaultDebounce       = 100 * time.Millisecond
	DefaultReloadAttempts = 3
)

// WatchCallback 配置文件变更回调，err 非 nil 表示重载失败，此时 cfg 为 nil。
type WatchCallback func(cfg *Config, err error)

// WatchOption 监视器选项
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	attempts uint
}

// WithDebounce 设置防抖时间，防抖期内的多次变更只触发一次重载。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithReloadAttempts 设置单次重载的最大尝试次数，默认 3。
// 文件读取失败或内容不完整（解析失败）时按防抖间隔重试，校验失败不重试。
func WithReloadAttempts(n uint) WatchOption {
	return func(o *watchOptions) {
		if n > 0 {
			o.attempts = n
		}
	}
}

// ConfigWatcher 配置文件监视器。
//
// 监视文件所在目录并按文件名过滤，以兼容编辑器先写临时文件再 rename 的保存方式。
// Stop 返回时监视 goroutine 和所有重载回调均已结束。
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	attempts uint

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	running  bool
	stopped  bool
	timer    *time.Timer
	loopDone chan struct{}
	inflight sync.WaitGroup
}

// WatchConfig 创建配置文件监视器，需调用 Start 或 StartAsync 开始监视。
// 回调中不能调用 Stop。
func WatchConfig(path string, callback WatchCallback, opts ...WatchOption) (*ConfigWatcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if _, err := detectFormat(path); err != nil {
		return nil, err
	}

	o := watchOptions{debounce: DefaultDebounce, attempts: DefaultReloadAttempts}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xagent: failed to create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		return nil, errors.Join(
			fmt.Errorf("xagent: failed to watch directory %s: %w", dir, err),
			fw.Close(),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ConfigWatcher{
		path:     path,
		watcher:  fw,
		callback: callback,
		debounce: o.debounce,
		attempts: o.attempts,
		ctx:      ctx,
		cancel:   cancel,
		loopDone: make(chan struct{}),
	}, nil
}

// Start 启动监视，阻塞直到 Stop。
func (w *ConfigWatcher) Start() {
	if w.markRunning() {
		w.run()
	}
}

// StartAsync 在后台 goroutine 中启动监视。
func (w *ConfigWatcher) StartAsync() {
	if w.markRunning() {
		go w.run()
	}
}

func (w *ConfigWatcher) markRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopped {
		return false
	}
	w.running = true
	return true
}

// Stop 停止监视并等待正在执行的重载回调结束。可重复调用。
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	running := w.running
	w.cancel()
	if w.timer != nil && w.timer.Stop() {
		w.inflight.Done()
	}
	w.timer = nil
	w.mu.Unlock()

	err := w.watcher.Close()
	if running {
		<-w.loopDone
	}
	w.inflight.Wait()
	return err
}

func (w *ConfigWatcher) run() {
	defer close(w.loopDone)
	filename := filepath.Base(w.path)
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.notify(nil, fmt.Errorf("xagent: watch error: %w", err))
		}
	}
}

func (w *ConfigWatcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.inflight.Done()
	}
	w.inflight.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.inflight.Done()
		cfg, err := w.reload()
		if w.ctx.Err() != nil {
			return
		}
		w.notify(cfg, err)
	})
}

// reload 加载配置，读取失败或写入未完成时重试
func (w *ConfigWatcher) reload() (*Config, error) {
	return retry.NewWithData[*Config](
		retry.Context(w.ctx),
		retry.Attempts(w.attempts),
		retry.Delay(w.debounce),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrLoadFailed) || errors.Is(err, ErrParseFailed)
		}),
	).Do(func() (*Config, error) {
		return LoadConfig(w.path)
	})
}

func (w *ConfigWatcher) notify(cfg *Config, err error) {
	if w.callback != nil {
		w.callback(cfg, err)
	}
}

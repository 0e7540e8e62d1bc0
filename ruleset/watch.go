package ruleset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/depmatch/rule"
)

// Watcher keeps a rule file compiled, reloading it whenever it changes on
// disk. A reload that fails to compile is logged and the previous rule
// set stays active.
type Watcher struct {
	path    string
	mode    rule.Mode
	logger  *zap.Logger
	current atomic.Pointer[RuleSet]
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	onReload []func(*RuleSet)
}

// NewWatcher loads path and prepares to watch it. The initial load must
// succeed.
func NewWatcher(path string, mode rule.Mode, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	rs, err := Load(abs, mode)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	// editors often replace the file instead of writing it in place, so
	// watch the directory and filter by name
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("error adding directory to watcher: %w", err)
	}

	w := &Watcher{
		path:    abs,
		mode:    mode,
		logger:  logger,
		watcher: fw,
	}
	w.current.Store(rs)
	return w, nil
}

// Current returns the active rule set.
func (w *Watcher) Current() *RuleSet {
	return w.current.Load()
}

// OnReload registers fn to be called with every successfully reloaded
// rule set.
func (w *Watcher) OnReload(fn func(*RuleSet)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.String("path", w.path), zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	rs, err := Load(w.path, w.mode)
	if err != nil {
		w.logger.Warn("Keeping previous rules, reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.current.Store(rs)
	w.logger.Info("Reloaded rules", zap.String("path", w.path), zap.Int("rules", rs.Len()))

	w.mu.Lock()
	callbacks := append([]func(*RuleSet){}, w.onReload...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(rs)
	}
}

package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 为 [Renderer.Watch] 未指定防抖间隔时的默认值。
const DefaultDebounce = 200 * time.Millisecond

// Watch 监听 inDir 的变化，防抖后重新执行 [Renderer.Render]。
//
// 监听期间的渲染失败只记录日志，不会退出；ctx 结束时返回 nil。
// 调用方通常先执行一次 Render，再进入 Watch。
// 原地渲染（inDir 与 outDir 相同）时写出的文件会再次触发渲染，因此返回 [ErrInPlaceWatch]。
func (r *Renderer) Watch(ctx context.Context, inDir, outDir string, debounce time.Duration) error {
	if SameDir(inDir, outDir) {
		return ErrInPlaceWatch
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	skipDir := nestedOutput(inDir, outDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addWatchRecursive(watcher, inDir, skipDir); err != nil {
		return fmt.Errorf("watch %s: %w", inDir, err)
	}
	r.logger.Info("Watching for changes", "dir", inDir, "debounce", debounce)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-timerC:
			timerC = nil
			res, err := r.Render(ctx, inDir, outDir)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.logger.Error("Render failed", "error", err)
				continue
			}
			r.logger.Info("Rendered", "files", res.Rendered, "skipped", res.Skipped)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("Watcher error", "error", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Create) {
				if fi, statErr := os.Stat(evt.Name); statErr == nil && fi.IsDir() {
					if addErr := addWatchRecursive(watcher, evt.Name, skipDir); addErr != nil {
						r.logger.Warn("Add watch failed", "path", evt.Name, "error", addErr)
					}
				}
			}
			if !shouldRerender(evt, skipDir) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		}
	}
}

// shouldRerender 忽略隐藏文件（含渲染用的临时文件）、纯权限变化以及嵌套输出目录内的事件。
func shouldRerender(evt fsnotify.Event, skipDir string) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) {
		return false
	}
	if strings.HasPrefix(filepath.Base(evt.Name), ".") {
		return false
	}
	if skipDir != "" {
		if abs, err := filepath.Abs(evt.Name); err == nil {
			if abs == skipDir || strings.HasPrefix(abs, skipDir+string(filepath.Separator)) {
				return false
			}
		}
	}

	return true
}

func addWatchRecursive(watcher *fsnotify.Watcher, root, skipDir string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir != "" {
			if abs, absErr := filepath.Abs(path); absErr == nil && abs == skipDir {
				return filepath.SkipDir
			}
		}

		return watcher.Add(path)
	})
}

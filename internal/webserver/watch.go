package webserver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/steelyard-dev/steelyard/internal/policy"
)

// debounceInterval batches the event bursts editors produce on save.
const debounceInterval = 200 * time.Millisecond

// watchPolicy reloads the policy document when its file changes on
// disk. The parent directory is watched instead of the file itself:
// editors commonly replace files by rename, which silently drops a
// watch held on the old inode.
func (s *Server) watchPolicy(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating policy watcher: %w", err)
	}

	dir := filepath.Dir(s.cfg.PolicyPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		var reload *time.Timer
		target := filepath.Clean(s.cfg.PolicyPath)
		for {
			select {
			case <-ctx.Done():
				if reload != nil {
					reload.Stop()
				}
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if reload != nil {
					reload.Stop()
				}
				reload = time.AfterFunc(debounceInterval, s.reloadPolicy)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("policy watcher error", "error", err)
			}
		}
	}()

	s.logger.Info("watching policy document", "path", s.cfg.PolicyPath)
	return nil
}

// reloadPolicy swaps in a fresh document handle. The compiled-policy
// cache keys on handle identity, so the new revision compiles exactly
// once on its first evaluation.
func (s *Server) reloadPolicy() {
	doc, err := policy.LoadDocument(s.cfg.PolicyPath)
	if err != nil {
		s.logger.Warn("policy reload failed, keeping previous revision",
			"path", s.cfg.PolicyPath, "error", err)
		return
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	s.collector.RecordPolicyReload()
	s.logger.Info("policy reloaded", "path", s.cfg.PolicyPath)
}

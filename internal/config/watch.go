package config

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors that save atomically emit a burst of create/write events for a
// single save; reloads are held back until the burst settles.
const reloadDebounce = 250 * time.Millisecond

// Sections churnd cannot swap at runtime. Edits to them are logged but only
// take effect on restart.
var restartOnly = map[string]bool{
	"http_port": true,
	"auth":      true,
	"report":    true,
	"sources":   true,
}

// Watch re-reads the config whenever the file at path is rewritten and hands
// the new Config to apply. A rewrite that fails to load keeps the previous
// config; a rewrite that changes nothing is skipped. Sections that cannot be
// hot-swapped produce a warning instead. Watch runs until ctx is cancelled.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	// Baseline for change detection: the file as it stands now.
	prev, err := Load(path)
	if err != nil {
		return err
	}
	slog.Info("config: watching for changes",
		"path", path, "alert_rules", len(prev.Server.Alerts.Rules))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			pending = time.After(reloadDebounce)

		case <-pending:
			pending = nil
			// Re-add the path in case an atomic save replaced the inode.
			_ = watcher.Add(path)

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: rewrite rejected — keeping previous config",
					"path", path, "err", err)
				continue
			}

			changed := changedSections(prev, cfg)
			if len(changed) == 0 {
				continue
			}
			if stale := restartSections(changed); len(stale) > 0 {
				slog.Warn("config: changed sections need a restart",
					"sections", strings.Join(stale, ","))
			}
			slog.Info("config: reloaded",
				"sections", strings.Join(changed, ","),
				"alert_rules", len(cfg.Server.Alerts.Rules))
			prev = cfg
			apply(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// changedSections names the server sections that differ between two loaded
// configs, in a fixed order.
func changedSections(old, cur *Config) []string {
	var out []string
	if old.Server.HTTPPort != cur.Server.HTTPPort {
		out = append(out, "http_port")
	}
	if old.Server.Auth != cur.Server.Auth {
		out = append(out, "auth")
	}
	if !reflect.DeepEqual(old.Server.Report, cur.Server.Report) {
		out = append(out, "report")
	}
	if !reflect.DeepEqual(old.Server.Sources, cur.Server.Sources) {
		out = append(out, "sources")
	}
	if !reflect.DeepEqual(old.Server.Alerts, cur.Server.Alerts) {
		out = append(out, "alerts")
	}
	return out
}

// restartSections filters changed down to the restart-only ones.
func restartSections(changed []string) []string {
	var out []string
	for _, s := range changed {
		if restartOnly[s] {
			out = append(out, s)
		}
	}
	return out
}

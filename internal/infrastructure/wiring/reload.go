package wiring

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/config"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/watch"
)

// ErrNoConfigFile is returned by WatchConfig when the configuration did not
// come from a file.
var ErrNoConfigFile = errors.New("configuration was not loaded from a file")

// WatchConfig reloads the config file on change and applies the reloadable
// settings to the dashboard. Invalid edits are logged and ignored. It blocks
// until ctx is done.
func (s *Services) WatchConfig(ctx context.Context) error {
	path := s.Config.Path
	if path == "" {
		return ErrNoConfigFile
	}
	w, err := watch.NewFileWatcher(watch.DefaultDebounce, func(ev watch.ChangeEvent) {
		next, err := config.Load(path)
		if err != nil {
			s.Logger.Warn("config reload rejected", "path", ev.Path, "error", err)
			return
		}
		s.Dashboard.Reconfigure(Settings(next))
		s.Logger.Info("config reloaded", "path", ev.Path, "op", ev.Op,
			"poll_interval", next.PollInterval, "jobs_target", next.JobsTarget)
	}, path)
	if err != nil {
		return err
	}
	return w.WithLogger(s.Logger).Run(ctx)
}

package config

import (
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/hpn/hpn-codepilot/internal/domain"
)

// Store holds the live configuration snapshot. Readers always get a copy of
// the latest valid configuration; an invalid edit is logged and ignored.
type Store struct {
	mu        sync.RWMutex
	v         *viper.Viper
	cfg       *Configuration
	logger    *slog.Logger
	listeners []func(*Configuration)
	watcher   *fsnotify.Watcher
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for reload events.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore loads configuration from configPath (or the default search paths
// when empty) and returns a Store holding it.
func NewStore(configPath string, opts ...StoreOption) (*Store, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	s := &Store{v: v, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := *s.cfg
	cfg.Server.AllowedOrigins = append([]string(nil), s.cfg.Server.AllowedOrigins...)
	return cfg
}

// Assistant returns the current aiCodingAssistant settings.
func (s *Store) Assistant() domain.AssistantSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Assistant
}

// ConfigFileUsed returns the path of the loaded config file, or "".
func (s *Store) ConfigFileUsed() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.ConfigFileUsed()
}

// OnChange registers fn to run after every successful reload or Set.
func (s *Store) OnChange(fn func(*Configuration)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Watch reloads the snapshot whenever the config file changes. The file's
// directory is watched so editors that save by rename are picked up.
// It is a no-op when no config file was found.
func (s *Store) Watch() error {
	file := s.ConfigFileUsed()
	if file == "" {
		return nil
	}
	file = filepath.Clean(file)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &ConfigError{Op: "watch", Err: err}
	}
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		_ = watcher.Close()
		return &ConfigError{Op: "watch", Err: err}
	}

	s.mu.Lock()
	previous := s.watcher
	s.watcher = watcher
	s.mu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}

	go s.watch(watcher, file)
	return nil
}

func (s *Store) watch(watcher *fsnotify.Watcher, file string) {
	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != file || e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.logger.Info("config file changed", slog.String("file", e.Name), slog.String("op", e.Op.String()))
			if err := s.Reload(); err != nil {
				s.logger.Warn("keeping previous configuration", slog.String("error", err.Error()))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("config watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close stops the watcher started by Watch.
func (s *Store) Close() error {
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if watcher == nil {
		return nil
	}
	return watcher.Close()
}

// Reload re-reads the config file and swaps the snapshot if it is valid.
func (s *Store) Reload() error {
	if s.ConfigFileUsed() != "" {
		s.mu.Lock()
		err := s.v.ReadInConfig()
		s.mu.Unlock()
		if err != nil {
			return &ConfigError{Op: "read", Err: err}
		}
	}
	return s.refresh()
}

// Set overrides a single key in memory, e.g. "aiCodingAssistant.useLocal".
// The file on disk is left untouched. An override that fails validation is rolled back.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	previous, had := s.v.Get(key), s.v.IsSet(key)
	s.v.Set(key, value)
	s.mu.Unlock()

	if err := s.refresh(); err != nil {
		s.mu.Lock()
		if had {
			s.v.Set(key, previous)
		} else {
			s.v.Set(key, nil)
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) refresh() error {
	s.mu.Lock()
	cfg, err := decode(s.v)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = cfg
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		snapshot := *cfg
		fn(&snapshot)
	}
	s.logger.Info("configuration applied",
		slog.Bool("use_local", cfg.Assistant.UseLocal),
		slog.String("cloud_provider", cfg.Assistant.CloudProvider),
	)
	return nil
}

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// Config is the demo feeder profile.
type Config struct {
	UpdateRateMs int    `toml:"update_rate_ms"`
	DurationS    int    `toml:"duration_s"`
	VendorID     uint16 `toml:"vendor_id"`
	ProductID    uint16 `toml:"product_id"`
	EchoOutput   bool   `toml:"echo_output"`
}

func defaultConfig() Config {
	return Config{
		UpdateRateMs: 10,
		DurationS:    10,
		EchoOutput:   true,
	}
}

// configStore holds the live profile and, when a config file is given,
// reloads it on every write so the feeder picks up changes while running.
type configStore struct {
	path    string
	watcher *fsnotify.Watcher

	mu     sync.RWMutex
	config Config
}

func newConfigStore(path string) (*configStore, error) {
	store := &configStore{
		path:   path,
		config: defaultConfig(),
	}
	if path == "" {
		return store, nil
	}
	if err := store.reload(); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config: %w", err)
	}
	store.watcher = watcher
	go store.watchEvents()
	return store, nil
}

func (store *configStore) watchEvents() {
	for event := range store.watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
			if err := store.reload(); err != nil {
				fmt.Printf("config reload failed: %v\n", err)
			}
		}
	}
}

func (store *configStore) reload() error {
	config := defaultConfig()
	if _, err := toml.DecodeFile(store.path, &config); err != nil {
		return fmt.Errorf("decode config %s: %w", store.path, err)
	}
	store.mu.Lock()
	store.config = config
	store.mu.Unlock()
	return nil
}

func (store *configStore) current() Config {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.config
}

func (store *configStore) updateInterval() time.Duration {
	return time.Duration(store.current().UpdateRateMs) * time.Millisecond
}

func (store *configStore) duration() time.Duration {
	return time.Duration(store.current().DurationS) * time.Second
}

func (store *configStore) Close() error {
	if store.watcher == nil {
		return nil
	}
	return store.watcher.Close()
}

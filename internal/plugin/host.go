// Package plugin hosts third-party extensions: the ordered event bus, the
// registry of plugin directive kinds, capability grants, and the loader
// contract that activates a plugin with a capability-scoped API.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/game/command"
)

// DefaultAPIVersion is the plugin API version this host implements.
const DefaultAPIVersion = "1.0.0"

// Handle is a loaded, not yet activated plugin.
type Handle interface {
	Activate(api *API) error
	Deactivate() error
}

// ActionProvider is implemented by handles that export a directive
// handler. It is registered as "plugin:<id>:action".
type ActionProvider interface {
	HandleAction(ctx context.Context, call ActionCall) error
}

// Loader turns a manifest and its directory into a Handle.
type Loader interface {
	Load(ctx context.Context, m *Manifest, dir string) (Handle, error)
}

// Recorder observes the number of loaded plugins.
type Recorder interface {
	PluginsLoaded(n int)
}

// HostConfig collects the Host's collaborators. Nil fields get in-memory
// or no-op defaults.
type HostConfig struct {
	APIVersion string
	Bus        *Bus
	Actions    *Actions
	Commands   *command.Registry
	Storage    Storage
	Notifier   Notifier
	Recorder   Recorder
	Logger     *zap.Logger
}

type loaded struct {
	manifest *Manifest
	handle   Handle
}

// Host loads and unloads plugins and owns everything they register.
type Host struct {
	Bus      *Bus
	Actions  *Actions
	Commands *command.Registry
	UI       *UI

	caps       *Capabilities
	storage    Storage
	notifier   Notifier
	recorder   Recorder
	logger     *zap.Logger
	apiVersion *semver.Version

	mu      sync.Mutex
	plugins map[string]*loaded
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string)    {}
func (nopNotifier) PlaySound(string, string) {}

type nopRecorder struct{}

func (nopRecorder) PluginsLoaded(int) {}

// NewHost builds a Host.
//
// Postcondition: returns an error if cfg.APIVersion is not a semantic version.
func NewHost(cfg HostConfig) (*Host, error) {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	v, err := semver.StrictNewVersion(cfg.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("plugin api version %q: %w", cfg.APIVersion, err)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Bus == nil {
		cfg.Bus = NewBus(cfg.Logger)
	}
	if cfg.Actions == nil {
		cfg.Actions = NewActions()
	}
	if cfg.Commands == nil {
		cfg.Commands = command.NewRegistry()
	}
	if cfg.Storage == nil {
		cfg.Storage = NewMemoryStorage()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	return &Host{
		Bus:        cfg.Bus,
		Actions:    cfg.Actions,
		Commands:   cfg.Commands,
		UI:         NewUI(),
		caps:       NewCapabilities(),
		storage:    cfg.Storage,
		notifier:   cfg.Notifier,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger,
		apiVersion: v,
		plugins:    make(map[string]*loaded),
	}, nil
}

// Capabilities returns the grant table.
func (h *Host) Capabilities() *Capabilities { return h.caps }

// ActionKind returns the kind under which a plugin's exported handler is
// registered.
func ActionKind(pluginID string) string {
	return "plugin:" + pluginID + ":action"
}

// Load activates the plugin described by m, found in dir.
//
// Postcondition: on error nothing the plugin registered remains.
func (h *Host) Load(ctx context.Context, loader Loader, m *Manifest, dir string) error {
	if err := m.Compatible(h.apiVersion); err != nil {
		return err
	}
	if m.Checksum != "" {
		src, err := os.ReadFile(filepath.Join(dir, m.Entry))
		if err != nil {
			return fmt.Errorf("reading plugin %s entry: %w", m.ID, err)
		}
		if err := m.VerifyEntry(src); err != nil {
			return err
		}
	}

	h.mu.Lock()
	if _, exists := h.plugins[m.ID]; exists {
		h.mu.Unlock()
		return fmt.Errorf("plugin %s already loaded", m.ID)
	}
	h.plugins[m.ID] = nil
	h.mu.Unlock()

	handle, err := h.activate(ctx, loader, m, dir)
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		delete(h.plugins, m.ID)
		return err
	}
	h.plugins[m.ID] = &loaded{manifest: m, handle: handle}
	h.recorder.PluginsLoaded(len(h.plugins))
	h.logger.Info("plugin loaded",
		zap.String("plugin", m.ID),
		zap.String("version", m.Version),
		zap.Strings("permissions", m.Permissions),
	)
	return nil
}

func (h *Host) activate(ctx context.Context, loader Loader, m *Manifest, dir string) (handle Handle, err error) {
	if err := h.caps.SetGrants(m.ID, m.Permissions); err != nil {
		return nil, fmt.Errorf("plugin %s: %w", m.ID, err)
	}
	handle, err = loader.Load(ctx, m, dir)
	if err != nil {
		h.caps.RemoveGrants(m.ID)
		return nil, fmt.Errorf("loading plugin %s: %w", m.ID, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during activation: %v", m.ID, r)
		}
		if err != nil {
			h.teardown(m.ID)
			handle = nil
		}
	}()

	if err := handle.Activate(newAPI(h, m.ID)); err != nil {
		return nil, fmt.Errorf("activating plugin %s: %w", m.ID, err)
	}
	if ap, ok := handle.(ActionProvider); ok {
		if err := h.Actions.Register(m.ID, ActionKind(m.ID), ap.HandleAction); err != nil {
			_ = handle.Deactivate()
			return nil, err
		}
	}
	return handle, nil
}

// Unload deactivates pluginID and removes, in order, its directive kinds,
// its event subscriptions, its UI contributions, and its commands. Unknown
// ids are ignored.
func (h *Host) Unload(pluginID string) {
	h.mu.Lock()
	lp := h.plugins[pluginID]
	if lp == nil {
		h.mu.Unlock()
		return
	}
	delete(h.plugins, pluginID)
	n := len(h.plugins)
	h.mu.Unlock()

	if err := safeDeactivate(lp.handle); err != nil {
		h.logger.Warn("plugin deactivate failed", zap.String("plugin", pluginID), zap.Error(err))
	}
	h.teardown(pluginID)
	h.recorder.PluginsLoaded(n)
	h.logger.Info("plugin unloaded", zap.String("plugin", pluginID))
}

func safeDeactivate(handle Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deactivate panicked: %v", r)
		}
	}()
	return handle.Deactivate()
}

func (h *Host) teardown(pluginID string) {
	h.Actions.RemovePlugin(pluginID)
	h.Bus.RemovePlugin(pluginID)
	h.UI.RemovePlugin(pluginID)
	h.Commands.RemoveOwner(pluginID)
	h.caps.RemoveGrants(pluginID)
}

// UnloadAll unloads every plugin in reverse id order.
func (h *Host) UnloadAll() {
	ids := h.Loaded()
	for i := len(ids) - 1; i >= 0; i-- {
		h.Unload(ids[i])
	}
}

// Loaded returns the ids of loaded plugins in sorted order.
func (h *Host) Loaded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.plugins))
	for id, lp := range h.plugins {
		if lp != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// LoadDir loads every plugin directory under root that contains a
// plugin.yaml. A plugin that fails to load is logged and skipped. A missing
// root loads nothing.
func (h *Host) LoadDir(ctx context.Context, loader Loader, root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading plugin dir %s: %w", root, err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			h.logger.Warn("reading plugin manifest", zap.String("dir", dir), zap.Error(err))
			continue
		}
		m, err := ParseManifest(data)
		if err != nil {
			h.logger.Warn("invalid plugin manifest", zap.String("dir", dir), zap.Error(err))
			continue
		}
		if err := h.Load(ctx, loader, m, dir); err != nil {
			h.logger.Warn("plugin load failed", zap.String("plugin", m.ID), zap.Error(err))
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}

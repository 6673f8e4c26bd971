package plugin

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/game/command"
)

// API is the capability-scoped handle a plugin receives on activation.
// Every method except Log checks the plugin's grants first and returns
// ErrPermissionDenied when the grant is missing.
type API struct {
	id     string
	host   *Host
	logger *zap.Logger
}

func newAPI(h *Host, id string) *API {
	return &API{id: id, host: h, logger: h.logger.With(zap.String("plugin", id))}
}

// PluginID returns the owning plugin's id.
func (a *API) PluginID() string { return a.id }

// Subscribe registers a synchronous event handler.
func (a *API) Subscribe(event string, priority int, fn HookFunc) error {
	if err := a.host.caps.require(a.id, CapEventsSubscribe); err != nil {
		return err
	}
	a.host.Bus.Subscribe(a.id, event, priority, fn)
	return nil
}

// SubscribeAsync registers an asynchronous event handler.
func (a *API) SubscribeAsync(event string, priority int, fn AsyncHookFunc) error {
	if err := a.host.caps.require(a.id, CapEventsSubscribe); err != nil {
		return err
	}
	a.host.Bus.SubscribeAsync(a.id, event, priority, fn)
	return nil
}

// Emit publishes an event synchronously and returns the final payload.
func (a *API) Emit(event string, payload any) (any, error) {
	if err := a.host.caps.require(a.id, CapEventsEmit); err != nil {
		return nil, err
	}
	return a.host.Bus.Emit(event, payload), nil
}

// RegisterCommand adds a chat command owned by the plugin.
func (a *API) RegisterCommand(name, help string, aliases []string, run command.Func) error {
	if err := a.host.caps.require(a.id, CapCommandsRegister); err != nil {
		return err
	}
	return a.host.Commands.Register(command.Command{
		Name:     name,
		Aliases:  aliases,
		Help:     help,
		Category: command.CategoryPlugin,
		Owner:    a.id,
		Run:      run,
	})
}

// StorageGet reads a key from the plugin's private store.
func (a *API) StorageGet(ctx context.Context, key string) (string, bool, error) {
	if err := a.host.caps.require(a.id, CapStorageRead); err != nil {
		return "", false, err
	}
	return a.host.storage.Get(ctx, a.id, key)
}

// StorageSet writes a key to the plugin's private store.
func (a *API) StorageSet(ctx context.Context, key, value string) error {
	if err := a.host.caps.require(a.id, CapStorageWrite); err != nil {
		return err
	}
	return a.host.storage.Set(ctx, a.id, key, value)
}

// StorageDelete removes a key from the plugin's private store.
func (a *API) StorageDelete(ctx context.Context, key string) error {
	if err := a.host.caps.require(a.id, CapStorageWrite); err != nil {
		return err
	}
	return a.host.storage.Delete(ctx, a.id, key)
}

// Notify shows a message to the table.
func (a *API) Notify(message string) error {
	if err := a.host.caps.require(a.id, CapUINotify); err != nil {
		return err
	}
	a.host.notifier.Notify(a.id, message)
	return nil
}

// Contribute adds or replaces a UI contribution in slot.
func (a *API) Contribute(slot, id, label, content string) error {
	if err := a.host.caps.require(a.id, CapUIContribute); err != nil {
		return err
	}
	if slot == "" || id == "" {
		return errors.New("ui contribution needs a slot and an id")
	}
	a.host.UI.Add(Contribution{PluginID: a.id, Slot: slot, ID: id, Label: label, Content: content})
	return nil
}

// PlaySound cues a sound for every peer.
func (a *API) PlaySound(sound string) error {
	if err := a.host.caps.require(a.id, CapSoundsPlay); err != nil {
		return err
	}
	a.host.notifier.PlaySound(a.id, sound)
	return nil
}

// RegisterAction binds a "plugin:" directive kind to handler.
//
// Postcondition: returns ErrNotNamespaced, without registering, when kind
// lacks the "plugin:" prefix.
func (a *API) RegisterAction(kind string, handler ActionHandler) error {
	if err := a.host.caps.require(a.id, CapActionsRegister); err != nil {
		return err
	}
	return a.host.Actions.Register(a.id, kind, handler)
}

// Log returns the plugin's logger. Logging needs no grant.
func (a *API) Log() *zap.Logger { return a.logger }

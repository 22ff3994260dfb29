// Package actuate implements director.SwitchActuator for the observer PC:
// pressing the slot's key through an external command, issuing spectator
// commands over the CS2 NetCon console, or only logging (dry run).
package actuate

import (
	"errors"
	"fmt"
	"time"

	"github.com/replay-director/replay-director/director"
)

var (
	// ErrUnmappedSlot is returned when a target's slot has no configured key.
	ErrUnmappedSlot = errors.New("slot not mapped to a key")
	// ErrNoAccountID is returned when a participant id is not a SteamID64.
	ErrNoAccountID = errors.New("participant id is not a steam64 id")
)

// Config selects and configures an actuator.
type Config struct {
	Kind    string         `yaml:"kind" env:"KIND"`
	Keys    map[int]string `yaml:"keys"`    // observer slot → key name
	Command []string       `yaml:"command"` // argv; "{key}" is replaced by the slot's key
	NetCon  NetConConfig   `yaml:"netcon" envPrefix:"NETCON_"`
}

// NetConConfig addresses the replay observer's NetCon console
// (the game's -netconport launch option).
type NetConConfig struct {
	Address        string        `yaml:"address" env:"ADDRESS"`
	Password       string        `yaml:"password" env:"PASSWORD"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	FollowCommands []string      `yaml:"follow_commands"` // sent after the spectate command
}

// DefaultKeys maps observer slots 0-11 to F1-F12.
func DefaultKeys() map[int]string {
	keys := make(map[int]string, 12)
	for slot := 0; slot < 12; slot++ {
		keys[slot] = fmt.Sprintf("f%d", slot+1)
	}
	return keys
}

// DefaultConfig presses F-keys through xdotool.
func DefaultConfig() Config {
	return Config{
		Kind:    "keystroke",
		Keys:    DefaultKeys(),
		Command: []string{"xdotool", "key", "{key}"},
		NetCon: NetConConfig{
			Address:        "127.0.0.1:2121",
			Timeout:        5 * time.Second,
			FollowCommands: []string{"spec_mode 1", "spec_lock_to_current_player 1"},
		},
	}
}

// ValidKinds is the set of recognized actuator kinds.
var ValidKinds = map[string]bool{"keystroke": true, "netcon": true, "log": true}

// Validate checks the settings the selected kind depends on.
func (c Config) Validate() error {
	if !ValidKinds[c.Kind] {
		return fmt.Errorf("unknown actuator kind %q", c.Kind)
	}
	switch c.Kind {
	case "keystroke":
		if len(c.Command) == 0 {
			return fmt.Errorf("keystroke actuator needs a command")
		}
		for slot, key := range c.Keys {
			if slot < 0 || key == "" {
				return fmt.Errorf("invalid key mapping %d=%q", slot, key)
			}
		}
	case "netcon":
		if c.NetCon.Address == "" {
			return fmt.Errorf("netcon actuator needs an address")
		}
		if c.NetCon.Timeout < 0 {
			return fmt.Errorf("netcon timeout must be non-negative, got %v", c.NetCon.Timeout)
		}
	}
	return nil
}

// New creates the actuator selected by cfg.Kind.
func New(cfg Config) (director.SwitchActuator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case "keystroke":
		return NewKeystroke(cfg.Keys, cfg.Command), nil
	case "netcon":
		return NewNetCon(cfg.NetCon), nil
	default:
		return &Log{}, nil
	}
}

// Package keymap provides key binding definitions and lookup for the TUI.
// Bindings are declared per input mode so the model's Update method only maps
// commands to actions.
package keymap

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the current input mode of the TUI.
// Different modes have different key bindings active.
type Mode string

const (
	ModeNormal Mode = "normal" // Browsing the queue
	ModeAdd    Mode = "add"    // Typing links into the prompt
	ModeHelp   Mode = "help"   // Full help overlay
)

// Command represents a named action that can be triggered by a key binding.
type Command string

// Normal mode commands
const (
	// Navigation
	CmdNext   Command = "next"
	CmdPrev   Command = "prev"
	CmdTop    Command = "top"
	CmdBottom Command = "bottom"

	// Queue control
	CmdAdd    Command = "add"
	CmdStart  Command = "start"
	CmdPause  Command = "pause"
	CmdCancel Command = "cancel_task"
	CmdRemove Command = "remove_task"
	CmdClear  Command = "clear_queue"

	// View toggles
	CmdToggleHelp Command = "toggle_help"

	// Exit
	CmdQuit Command = "quit"
)

// Add mode commands. Keys without a binding are handed to the text input.
const (
	CmdConfirm    Command = "confirm"
	CmdCancelEdit Command = "cancel_edit"
)

// Modifier represents keyboard modifiers.
type Modifier uint8

const (
	ModNone Modifier = 0
	ModAlt  Modifier = 1 << iota
)

// String returns a human-readable representation of modifiers.
func (m Modifier) String() string {
	if m&ModAlt != 0 {
		return "alt+"
	}
	return ""
}

// KeyBinding represents a single key binding configuration.
type KeyBinding struct {
	// KeyType is the key for this binding. For rune keys, use tea.KeyRunes
	// and set Rune.
	KeyType tea.KeyType

	// Rune is the character for rune-based keys (when KeyType is tea.KeyRunes).
	Rune rune

	// Modifiers contains the modifier keys that must be pressed.
	Modifiers Modifier

	// Command is the action to execute when this binding is triggered.
	Command Command

	// Description is a human-readable description for help display.
	Description string

	// Category groups related bindings together in help display.
	Category string

	// Short marks the binding for the one-line help bar.
	Short bool
}

// Matches checks if a tea.KeyMsg matches this binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	wantAlt := kb.Modifiers&ModAlt != 0
	if msg.Alt != wantAlt {
		return false
	}

	// For special keys (not runes), match the key type directly
	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// String returns a human-readable representation of the key binding.
func (kb KeyBinding) String() string {
	prefix := kb.Modifiers.String()

	if kb.KeyType != tea.KeyRunes {
		switch kb.KeyType {
		case tea.KeyUp:
			return prefix + "↑"
		case tea.KeyDown:
			return prefix + "↓"
		}
		return prefix + kb.KeyType.String()
	}

	switch kb.Rune {
	case ' ':
		return prefix + "space"
	default:
		return prefix + string(kb.Rune)
	}
}

// ModeBindings holds all key bindings for a specific mode.
type ModeBindings struct {
	Mode     Mode
	Bindings []KeyBinding
}

// GetBinding looks up a command for a key in this mode.
// Returns the command and true if found, or empty command and false if not.
func (mb *ModeBindings) GetBinding(msg tea.KeyMsg) (Command, bool) {
	for _, binding := range mb.Bindings {
		if binding.Matches(msg) {
			return binding.Command, true
		}
	}
	return "", false
}

// Keymap contains all key bindings organized by mode.
type Keymap struct {
	// Name identifies this keymap.
	Name string

	// Modes maps each mode to its bindings.
	Modes map[Mode]*ModeBindings
}

// GetBinding looks up a command for a key in a specific mode.
// Returns the command and true if found, or empty command and false if not.
func (km *Keymap) GetBinding(msg tea.KeyMsg, mode Mode) (Command, bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return "", false
	}
	return mb.GetBinding(msg)
}

// GetModeBindings returns all bindings for a specific mode.
func (km *Keymap) GetModeBindings(mode Mode) []KeyBinding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	return mb.Bindings
}

// GetBindingsForCommand returns all bindings that trigger a specific command.
func (km *Keymap) GetBindingsForCommand(cmd Command, mode Mode) []KeyBinding {
	var result []KeyBinding
	for _, binding := range km.GetModeBindings(mode) {
		if binding.Command == cmd {
			result = append(result, binding)
		}
	}
	return result
}

// GetCategories returns all unique categories in a mode's bindings, in
// declaration order.
func (km *Keymap) GetCategories(mode Mode) []string {
	seen := make(map[string]bool)
	var categories []string

	for _, binding := range km.GetModeBindings(mode) {
		if binding.Category != "" && !seen[binding.Category] {
			seen[binding.Category] = true
			categories = append(categories, binding.Category)
		}
	}
	return categories
}

// HelpEntry is one command's line in a help display.
type HelpEntry struct {
	Keys        string
	Description string
	Category    string
}

// Help returns one entry per command in a mode, joining every key bound to
// it. With short set only bindings marked Short are included.
func (km *Keymap) Help(mode Mode, short bool) []HelpEntry {
	var entries []HelpEntry
	index := make(map[Command]int)

	for _, binding := range km.GetModeBindings(mode) {
		if short && !binding.Short {
			continue
		}
		if i, ok := index[binding.Command]; ok {
			entries[i].Keys += "/" + binding.String()
			continue
		}
		index[binding.Command] = len(entries)
		entries = append(entries, HelpEntry{
			Keys:        binding.String(),
			Description: binding.Description,
			Category:    binding.Category,
		})
	}
	return entries
}

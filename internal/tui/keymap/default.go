package keymap

import tea "github.com/charmbracelet/bubbletea"

// DefaultKeymap returns the key bindings of the queue view.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name: "default",
		Modes: map[Mode]*ModeBindings{
			ModeNormal: defaultNormalBindings(),
			ModeAdd:    defaultAddBindings(),
			ModeHelp:   defaultHelpBindings(),
		},
	}
}

func defaultNormalBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeNormal,
		Bindings: []KeyBinding{
			// Queue control
			{KeyType: tea.KeyRunes, Rune: 'a', Command: CmdAdd, Description: "add links", Category: "Queue", Short: true},
			{KeyType: tea.KeyRunes, Rune: 's', Command: CmdStart, Description: "start/resume", Category: "Queue", Short: true},
			{KeyType: tea.KeyRunes, Rune: 'p', Command: CmdPause, Description: "pause", Category: "Queue", Short: true},
			{KeyType: tea.KeyRunes, Rune: 'c', Command: CmdCancel, Description: "cancel selected", Category: "Queue", Short: true},
			{KeyType: tea.KeyRunes, Rune: 'd', Command: CmdRemove, Description: "remove selected", Category: "Queue", Short: true},
			{KeyType: tea.KeyDelete, Command: CmdRemove, Description: "remove selected", Category: "Queue"},
			{KeyType: tea.KeyRunes, Rune: 'x', Command: CmdClear, Description: "clear queue", Category: "Queue", Short: true},

			// Navigation
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdNext, Description: "next task", Category: "Navigation"},
			{KeyType: tea.KeyDown, Command: CmdNext, Description: "next task", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdPrev, Description: "previous task", Category: "Navigation"},
			{KeyType: tea.KeyUp, Command: CmdPrev, Description: "previous task", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'g', Command: CmdTop, Description: "first task", Category: "Navigation"},
			{KeyType: tea.KeyHome, Command: CmdTop, Description: "first task", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'G', Command: CmdBottom, Description: "last task", Category: "Navigation"},
			{KeyType: tea.KeyEnd, Command: CmdBottom, Description: "last task", Category: "Navigation"},

			// General
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "help", Category: "General", Short: true},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "quit", Category: "General", Short: true},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "General"},
		},
	}
}

func defaultAddBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeAdd,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdConfirm, Description: "submit", Category: "Input", Short: true},
			{KeyType: tea.KeyEsc, Command: CmdCancelEdit, Description: "cancel", Category: "Input", Short: true},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "General"},
		},
	}
}

func defaultHelpBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeHelp,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "close help", Category: "General", Short: true},
			{KeyType: tea.KeyEsc, Command: CmdToggleHelp, Description: "close help", Category: "General"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "quit", Category: "General", Short: true},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "General"},
		},
	}
}

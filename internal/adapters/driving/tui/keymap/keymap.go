// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// SwitchStage toggles between the stump and limb views.
	SwitchStage key.Binding

	// Mapping toggles limb mapping for the selected point.
	Mapping key.Binding

	// Save commits the selected point.
	Save key.Binding

	// SaveAll commits every unsaved point.
	SaveAll key.Binding

	// Delete removes the selected point.
	Delete key.Binding

	// Describe edits the selected point's metadata.
	Describe key.Binding

	// Unmap clears the selected point's limb position.
	Unmap key.Binding

	// Next selects the following point.
	Next key.Binding

	// Prev selects the preceding point.
	Prev key.Binding

	// ZoomIn moves the camera closer.
	ZoomIn key.Binding

	// ZoomOut moves the camera away.
	ZoomOut key.Binding

	// Dismiss closes a modal or clears the selection.
	Dismiss key.Binding

	// Confirm accepts a modal.
	Confirm key.Binding

	// Deny declines a confirmation.
	Deny key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		SwitchStage: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "stump/limb"),
		),
		Mapping: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "map"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		SaveAll: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "save all"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Describe: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "describe"),
		),
		Unmap: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unmap"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "down", "j"),
			key.WithHelp("n", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "up", "k"),
			key.WithHelp("p", "prev"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchStage, k.Save, k.Help, k.Quit}
}

// SelectionHelp returns keybindings shown while a point is selected.
func (k *KeyMap) SelectionHelp() []key.Binding {
	return []key.Binding{k.Describe, k.Mapping, k.Save, k.Delete, k.Dismiss}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SwitchStage, k.Next, k.Prev, k.ZoomIn, k.ZoomOut},
		{k.Describe, k.Mapping, k.Unmap, k.Delete},
		{k.Save, k.SaveAll, k.Dismiss},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}

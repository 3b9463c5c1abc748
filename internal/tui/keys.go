package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Translate  key.Binding
	Cancel     key.Binding
	SourceNext key.Binding
	SourcePrev key.Binding
	TargetNext key.Binding
	TargetPrev key.Binding
	Model      key.Binding
	Credential key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Translate:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "translate")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		SourceNext: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s/r", "source lang")),
		SourcePrev: key.NewBinding(key.WithKeys("ctrl+r")),
		TargetNext: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o/p", "target lang")),
		TargetPrev: key.NewBinding(key.WithKeys("ctrl+p")),
		Model:      key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "model")),
		Credential: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "api key")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup/pgdn", "scroll output")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Translate, k.Cancel, k.SourceNext, k.TargetNext, k.Model, k.Credential, k.ScrollUp, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

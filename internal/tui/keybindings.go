package tui

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/config"
	"github.com/hay-kot/parcel/pkg/executil"
	"github.com/hay-kot/parcel/pkg/tmpl"
)

// ActionType identifies the kind of action a keybinding triggers.
type ActionType int

const (
	ActionTypeNone ActionType = iota
	ActionTypeWishlist
	ActionTypeShow
	ActionTypeShell
)

// Action represents a resolved keybinding action ready for execution.
type Action struct {
	Type      ActionType
	Key       string
	Help      string
	Confirm   string // Non-empty if confirmation required
	ShellCmd  string // For shell actions, the rendered command
	PackageID string
}

// NeedsConfirm returns true if the action requires user confirmation.
func (a Action) NeedsConfirm() bool {
	return a.Confirm != ""
}

// KeybindingHandler resolves keybindings to actions.
type KeybindingHandler struct {
	keybindings map[string]config.Keybinding
	exec        executil.Executor
}

// NewKeybindingHandler creates a new handler with the given config.
func NewKeybindingHandler(keybindings map[string]config.Keybinding, exec executil.Executor) *KeybindingHandler {
	return &KeybindingHandler{keybindings: keybindings, exec: exec}
}

// Resolve attempts to resolve a key press to an action for the given package.
func (h *KeybindingHandler) Resolve(key string, pkg catalog.Package) (Action, bool) {
	kb, exists := h.keybindings[key]
	if !exists {
		return Action{}, false
	}

	action := Action{
		Key:       key,
		Help:      kb.Help,
		Confirm:   kb.Confirm,
		PackageID: pkg.ID,
	}

	switch kb.Action {
	case config.ActionWishlist:
		action.Type = ActionTypeWishlist
		return action, true
	case config.ActionShow:
		action.Type = ActionTypeShow
		return action, true
	}

	if kb.Sh != "" {
		rendered, err := tmpl.Render(kb.Sh, pkg)
		action.Type = ActionTypeShell
		if err != nil {
			action.ShellCmd = fmt.Sprintf("echo %s", shellQuote("template error: "+err.Error()))
			return action, true
		}
		action.ShellCmd = rendered
		return action, true
	}

	return Action{}, false
}

// Execute runs a shell action. Built-in actions are handled by the model.
func (h *KeybindingHandler) Execute(ctx context.Context, action Action) error {
	if action.Type != ActionTypeShell {
		return fmt.Errorf("action type %d not supported by Execute", action.Type)
	}

	return executil.Shell(ctx, h.exec, action.ShellCmd)
}

// KeyBindings returns key.Binding objects for integration with bubbles help system.
func (h *KeybindingHandler) KeyBindings() []key.Binding {
	keys := slices.Sorted(maps.Keys(h.keybindings))
	bindings := make([]key.Binding, 0, len(keys))

	for _, k := range keys {
		bindings = append(bindings, key.NewBinding(
			key.WithKeys(k),
			key.WithHelp(k, helpText(h.keybindings[k])),
		))
	}

	return bindings
}

func helpText(kb config.Keybinding) string {
	switch {
	case kb.Help != "":
		return kb.Help
	case kb.Action != "":
		return kb.Action
	default:
		return "shell"
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

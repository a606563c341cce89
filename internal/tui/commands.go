package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/parcel/internal/core/search"
	"github.com/hay-kot/parcel/internal/parcel"
)

const prefsPollInterval = 2 * time.Second

// prefsLoadedMsg carries a fingerprint of the stored preferences.
type prefsLoadedMsg struct {
	fingerprint string
	err         error
}

// prefsTickMsg is sent to trigger the next preference poll.
type prefsTickMsg struct{}

// waitForState returns a command that delivers the next publish of one
// browser.
func waitForState(index int, updates <-chan search.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg{index: index, state: s}
	}
}

// loadBrowser returns a command that computes the initial list of b.
func (m Model) loadBrowser(b *browser) tea.Cmd {
	return func() tea.Msg {
		if b.view.Kind == parcel.ViewInstalled {
			if err := b.co.ReloadUpdates(m.ctx); err != nil {
				return actionCompleteMsg{err: fmt.Errorf("load updates: %w", err)}
			}
			return nil
		}
		b.co.Search("")
		return nil
	}
}

// loadPrefs returns a command that fingerprints the stored preferences.
// Changes made by other parcel processes are picked up this way.
func (m Model) loadPrefs() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()

		settings, err := m.service.Prefs.All(ctx)
		if err != nil {
			return prefsLoadedMsg{err: err}
		}

		parts := make([]string, 0, len(settings))
		for _, s := range settings {
			parts = append(parts, s.Key+"="+s.Value)
		}
		return prefsLoadedMsg{fingerprint: strings.Join(parts, ";")}
	}
}

// schedulePrefsTick returns a command that schedules the next preference poll.
func schedulePrefsTick() tea.Cmd {
	return tea.Tick(prefsPollInterval, func(time.Time) tea.Msg {
		return prefsTickMsg{}
	})
}

// submitSearch returns a command that records query and queries the
// provisional feed at once.
func (m Model) submitSearch(b *browser, query string) tea.Cmd {
	if query == "" {
		return nil
	}
	return func() tea.Msg {
		b.co.SubmitSearch(m.ctx, query)
		return nil
	}
}

// refreshCatalog returns a command that re-reads the catalog file.
func (m Model) refreshCatalog() tea.Cmd {
	return func() tea.Msg {
		if err := m.service.RefreshCatalog(m.ctx); err != nil {
			return actionCompleteMsg{err: err}
		}
		return actionCompleteMsg{status: "Catalog reloaded"}
	}
}

// setPref returns a command that stores a preference and reloads every
// list once it is written.
func (m Model) setPref(key, value, status string) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg {
			if err := m.service.Prefs.Set(m.ctx, key, value); err != nil {
				return actionCompleteMsg{err: err}
			}
			return actionCompleteMsg{status: status}
		},
		m.loadPrefs(),
	)
}

func (m Model) togglePref(key string, current bool, what string) tea.Cmd {
	return m.setPref(key, strconv.FormatBool(!current), toggleStatus(what, !current))
}

// executeAction returns a command that executes the given action.
func (m Model) executeAction(action Action) tea.Cmd {
	switch action.Type {
	case ActionTypeShow:
		return func() tea.Msg {
			d, err := m.service.Detail(m.ctx, action.PackageID)
			return detailLoadedMsg{detail: d, err: err}
		}
	case ActionTypeWishlist:
		return m.toggleWishlist(action.PackageID)
	default:
		return func() tea.Msg {
			if err := m.handler.Execute(m.ctx, action); err != nil {
				return actionCompleteMsg{err: fmt.Errorf("%s: %w", action.Key, err)}
			}
			return actionCompleteMsg{status: fmt.Sprintf("Ran %s on %s", helpOrKey(action), action.PackageID)}
		}
	}
}

func (m Model) toggleWishlist(id string) tea.Cmd {
	return func() tea.Msg {
		wl := m.service.Wishlist
		if wl.IsInWishlist(id) {
			if err := wl.Remove(m.ctx, id); err != nil {
				return actionCompleteMsg{err: err}
			}
			return actionCompleteMsg{status: "Removed " + id + " from the wishlist"}
		}

		if m.service.InstalledSet(m.ctx)[id] {
			return actionCompleteMsg{status: id + " is already installed"}
		}
		if _, err := wl.Add(m.ctx, id); err != nil {
			return actionCompleteMsg{err: err}
		}
		return actionCompleteMsg{status: "Added " + id + " to the wishlist"}
	}
}

func helpOrKey(a Action) string {
	if a.Help != "" {
		return a.Help
	}
	return a.Key
}

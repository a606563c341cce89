// Package annotate derives per-row decorations for package lists from the
// install queue, the installed set and the history ledger. It only reads
// from those sources.
package annotate

import (
	"strings"

	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/history"
)

// State is the badge drawn next to a package.
type State string

const (
	StateInstalled       State = "installed"
	StateInstallQueued   State = "install-queued"
	StateReinstallQueued State = "reinstall-queued"
	StateUpdateQueued    State = "update-queued"
	StateDeleteQueued    State = "delete-queued"
)

// Badge is a badge state and whether it is drawn at all.
type Badge struct {
	State  State
	Hidden bool
}

// PackageBadge maps a queue state to a badge. Packages that are neither
// queued nor installed get a hidden badge.
func PackageBadge(queue catalog.QueueState, installed bool) Badge {
	switch queue {
	case catalog.QueueInstallations:
		if installed {
			return Badge{State: StateReinstallQueued}
		}
		return Badge{State: StateInstallQueued}
	case catalog.QueueUpgrades:
		return Badge{State: StateUpdateQueued}
	case catalog.QueueUninstallations:
		return Badge{State: StateDeleteQueued}
	default:
		return Badge{State: StateInstalled, Hidden: !installed}
	}
}

// HistoryBadge maps the last recorded action to a badge.
func HistoryBadge(action history.Action) Badge {
	switch action {
	case history.ActionReinstall:
		return Badge{State: StateReinstallQueued}
	case history.ActionUninstall:
		return Badge{State: StateDeleteQueued}
	case history.ActionUpdate:
		return Badge{State: StateUpdateQueued}
	default:
		return Badge{State: StateInstalled}
	}
}

// ActionSource reports the last recorded action for a package.
// *history.Ledger satisfies it.
type ActionSource interface {
	ActionForPackage(id string) (history.Action, bool)
}

// Annotator decorates rows of one list.
type Annotator struct {
	Queue     catalog.QueueOracle
	Installed map[string]bool
	// Actions is consulted first when set, for history lists.
	Actions ActionSource
}

// Badge returns the badge for pkg.
func (a Annotator) Badge(pkg catalog.Package) Badge {
	if a.Actions != nil {
		if action, ok := a.Actions.ActionForPackage(pkg.ID); ok {
			return HistoryBadge(action)
		}
	}

	queue := catalog.QueueNone
	if a.Queue != nil {
		queue = a.Queue.Classify(pkg)
	}
	return PackageBadge(queue, a.Installed[pkg.ID] || pkg.Installed)
}

// Export renders pkgs one per line as "name:(id) version". Packages
// without a name are skipped.
func Export(pkgs []catalog.Package) string {
	var b strings.Builder
	for _, p := range pkgs {
		if p.Name == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Name)
		b.WriteString(":(")
		b.WriteString(p.ID)
		b.WriteString(") ")
		b.WriteString(p.Version)
	}
	return b.String()
}

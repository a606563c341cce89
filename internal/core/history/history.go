// Package history defines the package action ledger: entry types, the
// persistence interface, and the Ledger service built on top of them.
package history

import (
	"math"
	"time"
)

// Action is a package lifecycle action recorded in the ledger.
type Action string

const (
	ActionInstall   Action = "install"
	ActionReinstall Action = "reinstall"
	ActionUninstall Action = "uninstall"
	ActionUpdate    Action = "update"
)

// ParseAction returns the Action named by s.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionInstall, ActionReinstall, ActionUninstall, ActionUpdate:
		return a, true
	default:
		return "", false
	}
}

// Entry is a single recorded action. Entries are never modified after
// they are appended.
type Entry struct {
	ID              string  `json:"id"`
	Version         *string `json:"version,omitempty"`
	Timestamp       float64 `json:"date"`
	Action          Action  `json:"action,omitempty"`
	PreviousVersion *string `json:"previous_version,omitempty"`
}

// Time returns the entry timestamp as a time.Time.
func (e *Entry) Time() time.Time {
	sec, frac := math.Modf(e.Timestamp)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// VersionString returns the recorded version or "" when unknown.
func (e *Entry) VersionString() string {
	if e.Version == nil {
		return ""
	}
	return *e.Version
}

// PreviousVersionString returns the prior version or "" when absent.
func (e *Entry) PreviousVersionString() string {
	if e.PreviousVersion == nil {
		return ""
	}
	return *e.PreviousVersion
}

// Item describes one package in an Append call.
type Item struct {
	ID              string
	PreviousVersion *string
	NewVersion      *string
}

// TimelineGroup is a set of entries recorded within the same second.
type TimelineGroup struct {
	Second  int64   `json:"second"`
	Entries []Entry `json:"entries"`
}

// Time returns the start of the group's second.
func (g TimelineGroup) Time() time.Time {
	return time.Unix(g.Second, 0)
}

// timestamp converts t to fractional seconds since the epoch.
func timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

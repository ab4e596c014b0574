package models

import (
	"encoding/json"
	"fmt"
)

// StatusKind discriminates SyncStatus values.
type StatusKind int

const (
	StatusPending StatusKind = iota
	StatusChecking
	StatusCloning
	StatusStashing
	StatusFetching
	StatusSyncing
	StatusRestoring
	StatusArchiving
	StatusDeleting
	StatusSynced
	StatusSkipped
	StatusFailed
)

var kindNames = map[StatusKind]string{
	StatusPending:   "pending",
	StatusChecking:  "checking",
	StatusCloning:   "cloning",
	StatusStashing:  "stashing",
	StatusFetching:  "fetching",
	StatusSyncing:   "syncing",
	StatusRestoring: "restoring",
	StatusArchiving: "archiving",
	StatusDeleting:  "deleting",
	StatusSynced:    "synced",
	StatusSkipped:   "skipped",
	StatusFailed:    "failed",
}

func (k StatusKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StatusKind(%d)", int(k))
}

// SyncStatus is a per-fork state value. Only Synced carries a count and only
// Skipped and Failed carry a reason; use the constructors below.
type SyncStatus struct {
	Kind     StatusKind
	Count    int
	HasCount bool
	Reason   string
}

func Pending() SyncStatus   { return SyncStatus{Kind: StatusPending} }
func Checking() SyncStatus  { return SyncStatus{Kind: StatusChecking} }
func Cloning() SyncStatus   { return SyncStatus{Kind: StatusCloning} }
func Stashing() SyncStatus  { return SyncStatus{Kind: StatusStashing} }
func Fetching() SyncStatus  { return SyncStatus{Kind: StatusFetching} }
func Syncing() SyncStatus   { return SyncStatus{Kind: StatusSyncing} }
func Restoring() SyncStatus { return SyncStatus{Kind: StatusRestoring} }
func Archiving() SyncStatus { return SyncStatus{Kind: StatusArchiving} }
func Deleting() SyncStatus  { return SyncStatus{Kind: StatusDeleting} }

// Synced is a success without a known count.
func Synced() SyncStatus { return SyncStatus{Kind: StatusSynced} }

// SyncedCount is a success carrying the number of commits the fork was behind.
func SyncedCount(n int) SyncStatus {
	return SyncStatus{Kind: StatusSynced, Count: n, HasCount: true}
}

// SyncedWith builds Synced from an optional count.
func SyncedWith(n *int) SyncStatus {
	if n == nil {
		return Synced()
	}
	return SyncedCount(*n)
}

func Skipped(reason string) SyncStatus { return SyncStatus{Kind: StatusSkipped, Reason: reason} }
func Failed(reason string) SyncStatus  { return SyncStatus{Kind: StatusFailed, Reason: reason} }

// IsTerminal reports whether the status ends an operation attempt.
func (s SyncStatus) IsTerminal() bool {
	switch s.Kind {
	case StatusSynced, StatusSkipped, StatusFailed:
		return true
	}
	return false
}

// IsIdle reports whether a new operation may be dispatched for the fork.
func (s SyncStatus) IsIdle() bool {
	return s.Kind == StatusPending || s.IsTerminal()
}

// Display renders the status for a table cell.
func (s SyncStatus) Display() string {
	switch s.Kind {
	case StatusSynced:
		if s.HasCount && s.Count > 0 {
			return fmt.Sprintf("synced (+%d)", s.Count)
		}
		return "synced"
	case StatusSkipped:
		return "skipped: " + s.Reason
	case StatusFailed:
		return "failed: " + s.Reason
	}
	return s.Kind.String()
}

func (s SyncStatus) String() string {
	return s.Display()
}

// MarshalJSON encodes the status as {"kind": ..., "count"?: ..., "reason"?: ...}.
func (s SyncStatus) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind   string `json:"kind"`
		Count  *int   `json:"count,omitempty"`
		Reason string `json:"reason,omitempty"`
	}{Kind: s.Kind.String(), Reason: s.Reason}
	if s.HasCount {
		n := s.Count
		out.Count = &n
	}
	return json.Marshal(out)
}

package models

import (
	"os"
	"path/filepath"
	"time"
)

// Fork is one forked repository and its relationship to its parent.
type Fork struct {
	Owner         string     `json:"owner"`
	Name          string     `json:"name"`
	ParentOwner   string     `json:"parent_owner"`
	ParentName    string     `json:"parent_name"`
	DefaultBranch string     `json:"default_branch"`
	LocalPath     string     `json:"local_path"`
	IsCloned      bool       `json:"is_cloned"`
	Description   string     `json:"description,omitempty"`
	Language      string     `json:"language,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Key returns the owner/name identity of the fork.
func (f Fork) Key() string {
	return f.Owner + "/" + f.Name
}

// FullName is an alias for Key used in display code.
func (f Fork) FullName() string {
	return f.Key()
}

// ParentFullName returns parent_owner/parent_name.
func (f Fork) ParentFullName() string {
	return f.ParentOwner + "/" + f.ParentName
}

// SearchText is the string fuzzy search matches against.
func (f Fork) SearchText() string {
	return f.ParentOwner + "/" + f.Name
}

// LocalPathFor returns the clone location for owner/name under root.
func LocalPathFor(root, owner, name string) string {
	return filepath.Join(root, owner, name)
}

// RefreshCloned recomputes IsCloned from the filesystem and returns the fork.
func (f Fork) RefreshCloned() Fork {
	f.IsCloned = PathExists(f.LocalPath)
	return f
}

// PathExists reports whether path exists on disk.
func PathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// SyncJob is the unit of work handed to the reconciler: the caller's row
// index plus a snapshot of the fork taken at dispatch.
type SyncJob struct {
	Index int
	Fork  Fork
}

// NewSyncJob snapshots fork for dispatch.
func NewSyncJob(index int, fork Fork) SyncJob {
	return SyncJob{Index: index, Fork: fork}
}

// Key returns the snapshot fork's key.
func (j SyncJob) Key() string {
	return j.Fork.Key()
}

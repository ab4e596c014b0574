package models

// ProgressEvent is a message sent from a worker to the single consumer.
// The set of implementations is closed.
type ProgressEvent interface {
	progressEvent()
}

// StatusUpdate proposes a new status for the job at Index. Key identifies
// the fork in case the consumer's index space changed since dispatch.
type StatusUpdate struct {
	Index  int
	Key    string
	Status SyncStatus
}

// ForkCloned reports that the fork's local clone now exists.
type ForkCloned struct {
	Index int
	Key   string
}

// ForkArchived reports that the fork was archived remotely.
type ForkArchived struct {
	Index int
	Key   string
}

// ForkDeleted reports that the fork was deleted remotely.
type ForkDeleted struct {
	Index int
	Key   string
}

// ForksRefreshed replaces the whole fork list.
type ForksRefreshed struct {
	Forks []Fork
}

// RefreshFailed reports a background refresh failure.
type RefreshFailed struct {
	Reason string
}

// Action is a remediation the user can run.
type Action struct {
	Label   string
	Command string
}

// ErrorDetails is a user-fixable failure description.
type ErrorDetails struct {
	Title   string
	Message string
	Action  *Action
}

// ActionableError carries a failure with an optional remediation.
type ActionableError struct {
	Index   int
	Key     string
	Details ErrorDetails
}

func (StatusUpdate) progressEvent()    {}
func (ForkCloned) progressEvent()      {}
func (ForkArchived) progressEvent()    {}
func (ForkDeleted) progressEvent()     {}
func (ForksRefreshed) progressEvent()  {}
func (RefreshFailed) progressEvent()   {}
func (ActionableError) progressEvent() {}

// IsStructural reports whether ev changes the shape of the fork list.
func IsStructural(ev ProgressEvent) bool {
	switch ev.(type) {
	case ForkCloned, ForkArchived, ForkDeleted, ForksRefreshed:
		return true
	}
	return false
}

// Target returns the index and fork key a per-fork event refers to.
// ok is false for list-level events.
func Target(ev ProgressEvent) (index int, key string, ok bool) {
	switch e := ev.(type) {
	case StatusUpdate:
		return e.Index, e.Key, true
	case ForkCloned:
		return e.Index, e.Key, true
	case ForkArchived:
		return e.Index, e.Key, true
	case ForkDeleted:
		return e.Index, e.Key, true
	case ActionableError:
		return e.Index, e.Key, true
	}
	return 0, "", false
}

// ResolveIndex maps an event's index to the current position of the fork
// named by key. The index is trusted when it still points at key; otherwise
// the list is searched. An empty key trusts any in-range index.
func ResolveIndex(forks []Fork, index int, key string) (int, bool) {
	if index >= 0 && index < len(forks) && (key == "" || forks[index].Key() == key) {
		return index, true
	}
	if key == "" {
		return 0, false
	}
	for i, f := range forks {
		if f.Key() == key {
			return i, true
		}
	}
	return 0, false
}

package models

import (
	"sort"
	"time"
)

// CacheKind classifies how current the loaded fork list is.
type CacheKind int

const (
	CacheFresh CacheKind = iota
	CacheStale
	CacheOffline
)

func (k CacheKind) String() string {
	switch k {
	case CacheFresh:
		return "fresh"
	case CacheStale:
		return "stale"
	case CacheOffline:
		return "offline"
	}
	return "unknown"
}

// CacheStatus is shown in the header and decides background refresh.
type CacheStatus struct {
	Kind       CacheKind
	LastSync   *time.Time
	Refreshing bool
}

// Label renders the status for display.
func (c CacheStatus) Label() string {
	if c.Refreshing {
		return "refreshing..."
	}
	return c.Kind.String()
}

// LanguageCount is one row of the language breakdown.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// ForkStats summarizes a fork list and its statuses.
type ForkStats struct {
	Total     int             `json:"total"`
	Cloned    int             `json:"cloned"`
	Uncloned  int             `json:"uncloned"`
	Synced    int             `json:"synced"`
	Pending   int             `json:"pending"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Languages []LanguageCount `json:"languages"`
}

// MaxStatsLanguages bounds the language breakdown.
const MaxStatsLanguages = 8

// ComputeStats summarizes forks. statuses may be nil or shorter than forks;
// missing entries count as pending.
func ComputeStats(forks []Fork, statuses []SyncStatus) ForkStats {
	stats := ForkStats{Total: len(forks)}
	langs := make(map[string]int)

	for i, f := range forks {
		if f.IsCloned {
			stats.Cloned++
		} else {
			stats.Uncloned++
		}

		lang := f.Language
		if lang == "" {
			lang = "Unknown"
		}
		langs[lang]++

		status := Pending()
		if i < len(statuses) {
			status = statuses[i]
		}
		switch status.Kind {
		case StatusSynced:
			stats.Synced++
		case StatusFailed:
			stats.Failed++
		case StatusSkipped:
			stats.Skipped++
		case StatusPending:
			stats.Pending++
		}
	}

	for lang, n := range langs {
		stats.Languages = append(stats.Languages, LanguageCount{Language: lang, Count: n})
	}
	sort.Slice(stats.Languages, func(i, j int) bool {
		if stats.Languages[i].Count != stats.Languages[j].Count {
			return stats.Languages[i].Count > stats.Languages[j].Count
		}
		return stats.Languages[i].Language < stats.Languages[j].Language
	})
	if len(stats.Languages) > MaxStatsLanguages {
		stats.Languages = stats.Languages[:MaxStatsLanguages]
	}
	return stats
}

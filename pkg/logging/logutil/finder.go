// Package logutil locates forksync log files.
package logutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is the newest log of one component.
type File struct {
	Component string
	Path      string
}

// datedSuffix is the length of "-YYYY-MM-DD".
const datedSuffix = 11

// ComponentOf strips the extension and the date suffix from a log file
// name: "engine-2026-01-02.log" is "engine".
func ComponentOf(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if n := len(name); n > datedSuffix && name[n-datedSuffix] == '-' {
		return name[:n-datedSuffix]
	}
	return name
}

// FindComponentLogs returns the newest *.log file per component in dir,
// sorted by component. Non-empty files win over newer empty ones, since a
// logger creates its file before the first write. components narrows the
// result when non-empty.
func FindComponentLogs(dir string, components ...string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read log directory %s: %w", dir, err)
	}

	want := make(map[string]bool, len(components))
	for _, c := range components {
		want[c] = true
	}

	type candidate struct {
		path     string
		name     string
		nonEmpty bool
	}
	best := make(map[string]candidate)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		component := ComponentOf(entry.Name())
		if len(want) > 0 && !want[component] {
			continue
		}

		c := candidate{path: filepath.Join(dir, entry.Name()), name: entry.Name(), nonEmpty: info.Size() > 0}
		prev, ok := best[component]
		switch {
		case !ok:
		case c.nonEmpty != prev.nonEmpty:
			if !c.nonEmpty {
				continue
			}
		case c.name <= prev.name:
			// Dated names sort chronologically.
			continue
		}
		best[component] = c
	}

	files := make([]File, 0, len(best))
	for component, c := range best {
		files = append(files, File{Component: component, Path: c.path})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Component < files[j].Component })
	return files, nil
}

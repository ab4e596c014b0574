package git

import (
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
)

// HeadInfo describes the commit a clone has checked out.
type HeadInfo struct {
	Branch    string    `json:"branch"`
	Hash      string    `json:"hash"`
	Subject   string    `json:"subject"`
	Author    string    `json:"author"`
	When      time.Time `json:"when"`
	OriginURL string    `json:"origin_url,omitempty"`
	// OriginSlug is owner/name parsed from OriginURL.
	OriginSlug string `json:"origin_slug,omitempty"`
}

// ShortHash returns the abbreviated commit hash.
func (h HeadInfo) ShortHash() string {
	if len(h.Hash) > 7 {
		return h.Hash[:7]
	}
	return h.Hash
}

// Inspect reads HEAD of the clone at path without spawning git.
func Inspect(path string) (*HeadInfo, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", head.Hash(), err)
	}

	info := &HeadInfo{
		Hash:    head.Hash().String(),
		Subject: firstLine(commit.Message),
		Author:  commit.Author.Name,
		When:    commit.Author.When,
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.OriginURL = urls[0]
			info.OriginSlug = RepoSlugFromURL(urls[0])
		}
	}
	return info, nil
}

// RepoSlugFromURL extracts owner/name from an SSH or HTTPS remote URL.
// It returns "" when the URL has fewer than two path segments.
func RepoSlugFromURL(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), ".git")

	// git@github.com:user/repo
	if strings.HasPrefix(url, "git@") {
		if i := strings.Index(url, ":"); i >= 0 {
			url = url[i+1:]
		}
	}
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
		if j := strings.Index(url, "/"); j >= 0 {
			url = url[j+1:]
		}
	}

	parts := strings.Split(strings.Trim(url, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

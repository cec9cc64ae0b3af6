// Package github links documented source locations to their pages on a
// GitHub (or GitHub Enterprise) host.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phobologic/docjs/internal/model"
)

const gitTimeout = 10 * time.Second

var errNoRemote = errors.New("no remote origin")

// Repo is a git checkout with a GitHub-style remote.
type Repo struct {
	Root   string
	Commit string
	Host   string
	Owner  string
	Name   string
}

// Open inspects the git checkout containing dir.
func Open(ctx context.Context, dir string) (*Repo, error) {
	root, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("locating git root for %s: %w", dir, err)
	}
	commit, err := git(ctx, root, "rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("reading HEAD in %s: %w", root, err)
	}
	remote, err := git(ctx, root, "config", "--get", "remote.origin.url")
	if err != nil || remote == "" {
		return nil, fmt.Errorf("%s: %w", root, errNoRemote)
	}
	host, owner, name, err := ParseRemote(remote)
	if err != nil {
		return nil, err
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}
	return &Repo{Root: root, Commit: commit, Host: host, Owner: owner, Name: name}, nil
}

// ParseRemote splits a git remote URL into host, owner and repository
// name. It accepts scp-style (git@host:owner/repo.git), ssh:// and
// http(s):// remotes.
func ParseRemote(remote string) (host, owner, name string, err error) {
	remote = strings.TrimSpace(remote)

	var path string
	if strings.Contains(remote, "://") {
		u, perr := url.Parse(remote)
		if perr != nil {
			return "", "", "", fmt.Errorf("parsing remote %q: %w", remote, perr)
		}
		host, path = u.Hostname(), u.Path
	} else {
		at := strings.LastIndexByte(remote, '@')
		hostPath := remote[at+1:]
		var ok bool
		host, path, ok = strings.Cut(hostPath, ":")
		if !ok {
			return "", "", "", fmt.Errorf("unrecognized remote %q", remote)
		}
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	i := strings.LastIndexByte(path, '/')
	if host == "" || i <= 0 || i == len(path)-1 {
		return "", "", "", fmt.Errorf("unrecognized remote %q", remote)
	}
	return host, path[:i], path[i+1:], nil
}

// URL returns the blob URL of the lines in loc of the file at path.
func (r *Repo) URL(path string, loc model.Loc) (string, bool) {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	u := fmt.Sprintf("https://%s/%s/%s/blob/%s/%s#L%d",
		r.Host, r.Owner, r.Name, r.Commit, filepath.ToSlash(rel), loc.Start.Line)
	if loc.End.Line > loc.Start.Line {
		u += fmt.Sprintf("-L%d", loc.End.Line)
	}
	return u, true
}

// Linker resolves source links for files across any number of checkouts.
// It is safe for concurrent use.
type Linker struct {
	logger *slog.Logger

	mu    sync.Mutex
	repos map[string]*Repo // by directory; nil when not a usable checkout
}

// NewLinker creates a Linker.
func NewLinker(logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{logger: logger, repos: make(map[string]*Repo)}
}

// Link returns the source link for loc in file, or nil if file is not
// inside a checkout with a usable remote.
func (l *Linker) Link(ctx context.Context, file string, loc model.Loc) *model.GitHubLink {
	repo := l.repo(ctx, filepath.Dir(file))
	if repo == nil {
		return nil
	}
	u, ok := repo.URL(file, loc)
	if !ok {
		return nil
	}
	rel, _ := filepath.Rel(repo.Root, file)
	return &model.GitHubLink{Path: filepath.ToSlash(rel), URL: u}
}

func (l *Linker) repo(ctx context.Context, dir string) *Repo {
	l.mu.Lock()
	defer l.mu.Unlock()

	if repo, ok := l.repos[dir]; ok {
		return repo
	}
	repo, err := Open(ctx, dir)
	if err != nil {
		l.logger.Debug("source links unavailable",
			slog.String("dir", dir),
			slog.Any("err", err),
		)
		repo = nil
	}
	l.repos[dir] = repo
	return repo
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

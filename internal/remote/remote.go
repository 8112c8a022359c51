// Package remote resolves repository references on the command line and
// clones them into temporary directories for analysis. A path that exists
// locally always wins over any remote interpretation.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source is a remote repository reference.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory once cloned
}

// knownHosts are forges recognized without an explicit scheme.
var knownHosts = []string{
	"github.com/",
	"gitlab.com/",
	"bitbucket.org/",
	"codeberg.org/",
}

// Parse interprets arg as a remote reference. It returns nil when arg is a
// local path or does not look like a repository. Supported forms:
//
//	owner/repo             GitHub shorthand
//	owner/repo@ref         shorthand pinned to a branch, tag, or SHA
//	github.com/owner/repo  forge host without scheme
//	https://host/path      any URL, passed through
//	git@host:path          scp-style SSH, passed through
func Parse(arg string) *Source {
	if _, err := os.Stat(arg); err == nil {
		return nil
	}

	if strings.HasPrefix(arg, "git@") {
		return &Source{URL: arg}
	}

	path, ref := arg, ""
	if idx := strings.LastIndex(path, "@"); idx != -1 {
		ref = path[idx+1:]
		path = path[:idx]
	}

	switch {
	case strings.HasPrefix(path, "https://"),
		strings.HasPrefix(path, "http://"),
		strings.HasPrefix(path, "ssh://"):
		return &Source{URL: path, Ref: ref}
	case hasKnownHost(path):
		return &Source{URL: "https://" + path, Ref: ref}
	case isShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}
	}

	return nil
}

func hasKnownHost(path string) bool {
	for _, host := range knownHosts {
		if strings.HasPrefix(path, host) {
			return true
		}
	}
	return false
}

// isShorthand matches owner/repo: exactly one slash, non-empty parts, and
// no dots before the slash (those indicate a host).
func isShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx <= 0 || slashIdx == len(path)-1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	return !strings.Contains(path[:slashIdx], ".")
}

// Clone fetches the repository into a fresh temp directory and records it
// in CloneDir. Progress output from the transport goes to progress; pass
// io.Discard to silence it.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	dir, err := os.MkdirTemp("", "caliper-clone-*")
	if err != nil {
		return err
	}

	if err := s.cloneInto(ctx, dir, progress, shallow); err != nil {
		os.RemoveAll(dir)
		return err
	}

	s.CloneDir = dir
	return nil
}

// cloneInto tries the cheapest clone that can satisfy the ref: a pinned
// ref is attempted as a branch, then a tag, then a full clone with a
// detached checkout so SHAs and abbreviated revisions resolve too.
func (s *Source) cloneInto(ctx context.Context, dir string, progress io.Writer, shallow bool) error {
	base := git.CloneOptions{URL: s.URL, Progress: progress}
	if shallow {
		base.Depth = 1
		base.SingleBranch = true
	}

	if s.Ref == "" {
		_, err := git.PlainCloneContext(ctx, dir, false, &base)
		return err
	}

	for _, refName := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(s.Ref),
		plumbing.NewTagReferenceName(s.Ref),
	} {
		opts := base
		opts.ReferenceName = refName
		opts.SingleBranch = true
		if _, err := git.PlainCloneContext(ctx, dir, false, &opts); err == nil {
			return nil
		}
		if err := resetDir(dir); err != nil {
			return err
		}
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: s.URL, Progress: progress})
	if err != nil {
		return err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(s.Ref))
	if err != nil {
		return fmt.Errorf("resolve ref %q: %w", s.Ref, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash})
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Cleanup removes the clone directory, if any.
func (s *Source) Cleanup() error {
	if s.CloneDir == "" {
		return nil
	}
	dir := s.CloneDir
	s.CloneDir = ""
	return os.RemoveAll(dir)
}

// Package scanner builds source trees from directories on disk. It applies
// config and .gitignore exclusions while walking, so the engine only ever
// sees the files a run should analyze.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/caliper-sh/caliper/pkg/config"
	"github.com/caliper-sh/caliper/pkg/source"
)

// maxFileBytes is the hard per-file ceiling. Files larger than this are
// left out of the tree entirely; they are almost always build artifacts or
// data dumps, and admitting them would dominate every aggregate.
const maxFileBytes = 10 << 20 // 10 MiB

// maxTreeFiles caps how many files a single scan will admit.
const maxTreeFiles = 100_000

// Scanner finds and reads source files in a directory.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a scanner. A nil config means defaults.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot walks up from start looking for a .git directory. Returns
// empty string when not inside a repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines config exclude patterns with .gitignore
// files found in the tree. Config patterns use gitignore syntax.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fsys := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks a relative path against the gitignore matchers.
func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	parts := strings.Split(relPath, "/")
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// Scan walks root and returns a tree of the files that survive exclusion.
// Paths in the tree are slash-separated and relative to root. Unreadable
// files are skipped; an unreadable root is an error.
func (s *Scanner) Scan(root string) (*source.Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	s.loadExcludePatterns(absRoot)

	var files []source.File
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		// Symlinks that escape the root are skipped so a crafted tree
		// cannot pull outside content into the analysis.
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, symErr := filepath.EvalSymlinks(path)
			if symErr != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.config.ShouldExclude(rel+"/") || s.isExcluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.config.ShouldExclude(rel) || s.isExcluded(rel, false) {
			return nil
		}

		if info, infoErr := d.Info(); infoErr == nil && info.Size() > maxFileBytes {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			// Keep the entry so the engine can account for it as an
			// unreadable file rather than pretending it does not exist.
			files = append(files, source.File{Path: rel})
			return nil
		}

		files = append(files, source.File{Path: rel, Content: content})
		if len(files) >= maxTreeFiles {
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", root, walkErr)
	}

	return source.NewTree(files), nil
}

// isWithinRoot reports whether path is inside root after normalization.
func isWithinRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

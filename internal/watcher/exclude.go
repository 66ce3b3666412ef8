package watcher

import (
	"path/filepath"
	"strings"
)

// GitIgnoreMatcher matches paths under a root directory against
// gitignore-style exclude patterns.
type GitIgnoreMatcher struct {
	root  string
	rules []excludeRule
}

type excludeRule struct {
	parts    []string
	negation bool
	dirOnly  bool
	anchored bool
}

// NewGitIgnoreMatcher compiles patterns relative to root. Blank lines and
// lines starting with # are ignored.
func NewGitIgnoreMatcher(root string, patterns []string) *GitIgnoreMatcher {
	m := &GitIgnoreMatcher{root: root}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		m.rules = append(m.rules, parsePattern(p))
	}
	return m
}

// Empty reports whether the matcher has no rules.
func (m *GitIgnoreMatcher) Empty() bool {
	return m == nil || len(m.rules) == 0
}

// Match reports whether path is excluded. isDir tells whether path itself is
// a directory; directory-only patterns still exclude files beneath a
// matching directory. The last matching rule wins.
func (m *GitIgnoreMatcher) Match(path string, isDir bool) bool {
	if m.Empty() {
		return false
	}
	rel := path
	if m.root != "" {
		r, err := filepath.Rel(m.root, path)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return false
		}
		rel = r
	}
	parts := splitPath(rel)
	if len(parts) == 0 {
		return false
	}

	matched := false
	for _, rule := range m.rules {
		if matchRule(rule, parts, isDir) {
			matched = !rule.negation
		}
	}
	return matched
}

func parsePattern(pattern string) excludeRule {
	var rule excludeRule

	if strings.HasPrefix(pattern, "!") {
		rule.negation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		rule.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		rule.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	if strings.Contains(pattern, "/") {
		rule.anchored = true
	}

	rule.parts = splitPath(pattern)
	return rule
}

// matchRule checks every leading prefix of parts. A proper prefix names a
// directory, so dirOnly rules may match it even when the full path is a file.
func matchRule(rule excludeRule, parts []string, isDir bool) bool {
	if len(rule.parts) == 0 {
		return false
	}
	for n := 1; n <= len(parts); n++ {
		prefixIsDir := n < len(parts) || isDir
		if rule.dirOnly && !prefixIsDir {
			continue
		}
		if rule.anchored {
			if matchParts(rule.parts, parts[:n]) {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(rule.parts[0], parts[n-1]); ok {
			return true
		}
	}
	return false
}

func matchParts(patternParts, pathParts []string) bool {
	if len(patternParts) == 0 {
		return len(pathParts) == 0
	}

	if patternParts[0] == "**" {
		rest := patternParts[1:]
		for i := 0; i <= len(pathParts); i++ {
			if matchParts(rest, pathParts[i:]) {
				return true
			}
		}
		return false
	}

	if len(pathParts) == 0 {
		return false
	}

	if ok, _ := filepath.Match(patternParts[0], pathParts[0]); !ok {
		return false
	}
	return matchParts(patternParts[1:], pathParts[1:])
}

func splitPath(path string) []string {
	var out []string
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		if p != "" && p != "." {
			out = append(out, p)
		}
	}
	return out
}

package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ignoredEntries = []string{
	".git",
	".hg",
	".svn",
	".idea",
	".vscode",
	"vendor",
	"node_modules",
	"dist",
	"build",
	"out",
	"__pycache__",
	"*.min.js",
	"*.min.css",
}

func ignored(name string) bool {
	for _, pattern := range ignoredEntries {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// ProjectStructure renders an indented listing of the workspace root, at most
// treeDepth levels deep and treeEntries lines long. Without a root, or when
// the root cannot be read, it returns ProjectStructurePlaceholder.
func (a *Analyzer) ProjectStructure() string {
	if a.workspaceRoot == "" {
		return ProjectStructurePlaceholder
	}
	info, err := os.Stat(a.workspaceRoot)
	if err != nil || !info.IsDir() {
		return ProjectStructurePlaceholder
	}

	var b strings.Builder
	b.WriteString(filepath.Base(filepath.Clean(a.workspaceRoot)))
	b.WriteString("/\n")

	entries := 0
	truncated := false
	err = filepath.WalkDir(a.workspaceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == a.workspaceRoot {
			return nil
		}
		if ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(a.workspaceRoot, path)
		if err != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if depth > a.treeDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entries >= a.treeEntries {
			truncated = true
			return fs.SkipAll
		}
		entries++

		name := d.Name()
		if d.IsDir() {
			name += "/"
		}
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth), name)
		return nil
	})
	if err != nil {
		return ProjectStructurePlaceholder
	}
	if truncated {
		fmt.Fprintf(&b, "  ... (truncated after %d entries)\n", a.treeEntries)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

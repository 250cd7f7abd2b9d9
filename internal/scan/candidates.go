package scan

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const day = 24 * time.Hour

// DownloadsCandidates returns top-level Downloads entries older than the
// configured age. Hidden entries are never offered.
func (s *Scanner) DownloadsCandidates() []Candidate {
	dir := s.env.DownloadsDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.addWarning("cannot read " + dir + ": " + err.Error())
		}
		return nil
	}

	cutoff := s.now().Add(-time.Duration(s.settings.DownloadsDaysOld) * day)
	var out []Candidate
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p := filepath.Join(dir, e.Name())
		info, err := os.Lstat(p)
		if err != nil {
			s.addWarning("cannot stat " + p + ": " + err.Error())
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		size := info.Size()
		if info.IsDir() {
			n, err := s.DirSize(p)
			if err != nil {
				s.addWarning("cannot size " + p + ": " + err.Error())
			}
			size = n
		}
		out = append(out, Candidate{Path: p, Size: size})
	}
	return out
}

// NodeModulesCandidates finds node_modules directories under the project
// roots that are orphaned (no package.json beside them) or whose project
// directory has not been modified recently. Search depth is bounded and
// node_modules trees are never descended into.
func (s *Scanner) NodeModulesCandidates() []Candidate {
	cutoff := s.now().Add(-time.Duration(s.nodeModulesDaysOld) * day)
	seen := make(map[string]bool)
	var out []Candidate

	var visit func(dir string, depth int)
	visit = func(dir string, depth int) {
		if depth > s.nodeModulesMaxDepth {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.addWarning("cannot read " + dir + ": " + err.Error())
			return
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			p := filepath.Join(dir, name)
			info, err := os.Lstat(p)
			if err != nil || !info.IsDir() {
				continue
			}

			if name != "node_modules" {
				visit(p, depth+1)
				continue
			}

			abs, err := filepath.Abs(p)
			if err != nil {
				abs = p
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true

			if !s.staleNodeModules(dir, cutoff) {
				continue
			}
			size, err := s.DirSize(p)
			if err != nil {
				// Still offered for deletion, just unsized.
				s.addWarning("cannot size " + p + ": " + err.Error())
			}
			out = append(out, Candidate{Path: abs, Size: size})
		}
	}

	for _, root := range s.env.NodeModulesRoots {
		info, err := os.Lstat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		visit(root, 0)
	}
	return out
}

// staleNodeModules reports whether the project owning a node_modules
// directory is orphaned or untouched since cutoff. An unreadable project
// directory counts as untouched.
func (s *Scanner) staleNodeModules(project string, cutoff time.Time) bool {
	// A symlinked manifest still counts.
	pkg, err := os.Stat(filepath.Join(project, "package.json"))
	if err != nil || !pkg.Mode().IsRegular() {
		return true
	}
	info, err := os.Stat(project)
	if err != nil {
		return true
	}
	return info.ModTime().Before(cutoff)
}

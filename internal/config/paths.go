package config

import (
	"os"
	"path/filepath"
)

// Env holds every host-dependent path the scanner and the dispatcher touch.
// It is computed once at startup by DetectEnv and passed down explicitly, so
// tests can point it at a temporary tree.
type Env struct {
	// Home is the user's home directory.
	Home string

	// DownloadsDir is scanned for stale top-level entries.
	DownloadsDir string

	// MailDownloads holds Mail.app attachment copies.
	MailDownloads string

	// NodeModulesRoots are the project directories searched for node_modules.
	NodeModulesRoots []string

	// BrewPaths are candidate Homebrew binaries, first executable wins.
	BrewPaths []string

	// BrewCachePrefixes bound where `brew --cache` may point.
	BrewCachePrefixes []string

	// DockerPaths are candidate docker CLI binaries.
	DockerPaths []string

	// TmutilPath is the Time Machine utility.
	TmutilPath string

	// ProtectedPaths must never be removed wholesale.
	ProtectedPaths []string
}

// homeDir returns the user's home directory.
// Falls back to $HOME only if the user database lookup fails.
func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return os.Getenv("HOME")
}

// DetectEnv resolves the environment for the current user.
func DetectEnv() Env {
	return NewEnv(homeDir())
}

// NewEnv builds the environment rooted at the given home directory.
func NewEnv(home string) Env {
	env := Env{
		Home:          home,
		DownloadsDir:  filepath.Join(home, "Downloads"),
		MailDownloads: filepath.Join(home, "Library", "Containers", "com.apple.mail", "Data", "Library", "Mail Downloads"),
		NodeModulesRoots: []string{
			filepath.Join(home, "Projects"),
			filepath.Join(home, "Developer"),
			filepath.Join(home, "Code"),
			filepath.Join(home, "dev"),
			filepath.Join(home, "workspace"),
			filepath.Join(home, "repos"),
		},
		BrewPaths: []string{
			"/opt/homebrew/bin/brew",
			"/usr/local/bin/brew",
		},
		BrewCachePrefixes: []string{
			filepath.Join(home, "Library", "Caches", "Homebrew"),
			"/opt/homebrew/Caches",
			"/usr/local/Caches",
		},
		DockerPaths: []string{
			"/usr/local/bin/docker",
			"/opt/homebrew/bin/docker",
			"/Applications/Docker.app/Contents/Resources/bin/docker",
		},
		TmutilPath: "/usr/bin/tmutil",
	}
	env.ProtectedPaths = ProtectedPaths(home)
	return env
}

// ProtectedPaths returns paths that must NEVER be deleted wholesale, no
// matter what a target descriptor says. Children of these paths may still be
// removed through deletion globs.
func ProtectedPaths(home string) []string {
	paths := []string{
		"/",
		"/System",
		"/Library",
		"/Applications",
		"/Users",
		"/Volumes",
		"/private",
		"/private/var",
		"/private/tmp",
		"/private/etc",
		"/usr",
		"/bin",
		"/sbin",
		"/etc",
		"/var",
		"/opt",
	}
	if home != "" {
		paths = append(paths,
			home,
			filepath.Join(home, "Library"),
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Downloads"),
		)
	}
	return paths
}

// IsProtected reports whether path is one of the protected roots.
func (e Env) IsProtected(path string) bool {
	clean := filepath.Clean(path)
	for _, p := range e.ProtectedPaths {
		if clean == filepath.Clean(p) {
			return true
		}
	}
	return false
}

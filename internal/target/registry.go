// Package target holds the static table of cleanup targets.
package target

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/lakshaymaurya-felt/macsysclean/internal/config"
)

// ErrUnknownTarget is returned by Lookup for keys not in the registry.
var ErrUnknownTarget = errors.New("unknown target")

// Kind separates generic path targets from bespoke handlers.
type Kind int

const (
	KindPaths Kind = iota
	KindSpecial
)

func (k Kind) String() string {
	switch k {
	case KindPaths:
		return "paths"
	case KindSpecial:
		return "special"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Special identifies the handler of a KindSpecial target.
type Special int

const (
	SpecialNone Special = iota
	SpecialSnapshots
	SpecialHomebrew
	SpecialDockerPrune
	SpecialDownloads
	SpecialNodeModules
)

// Target keys.
const (
	KeyTimeMachineSnapshots = "time_machine_snapshots"
	KeyIOSBackups           = "ios_backups"
	KeyXcodeDerived         = "xcode_derived"
	KeyXcodeArchives        = "xcode_archives"
	KeySystemCaches         = "system_caches"
	KeyUserCaches           = "user_caches"
	KeyBrowserCache         = "browser_cache"
	KeyHomebrew             = "homebrew"
	KeySystemLogs           = "system_logs"
	KeyUserLogs             = "user_logs"
	KeyPrivateTmp           = "private_tmp"
	KeyOllamaModels         = "ollama_models"
	KeyDockerData           = "docker_data"
	KeyDockerPrune          = "docker_prune"
	KeyTrash                = "trash"
	KeyDownloads            = "downloads"
	KeyMailAttachments      = "mail_attachments"
	KeyNodeModules          = "node_modules"
)

// Descriptor describes one independently selectable cleanup target.
type Descriptor struct {
	// Key is the unique identifier used on the command line.
	Key string

	Kind    Kind
	Special Special

	// Description is the human-readable label.
	Description string

	// Paths are candidate locations; any of them may be missing.
	Paths []string

	// RequiresElevation marks targets whose deletion usually needs sudo.
	RequiresElevation bool

	// DeletionGlobs are patterns matched under each path. Empty means the
	// path itself is deleted.
	DeletionGlobs []string

	// Risky targets are hidden unless --risky is given.
	Risky bool

	// Dangerous targets also require --force.
	Dangerous bool

	// Warning is printed before the target is processed.
	Warning string
}

// WholePath reports whether the descriptor deletes its paths wholesale.
func (d Descriptor) WholePath() bool {
	return d.Kind == KindPaths && len(d.DeletionGlobs) == 0
}

func (d Descriptor) clone() Descriptor {
	d.Paths = append([]string(nil), d.Paths...)
	d.DeletionGlobs = append([]string(nil), d.DeletionGlobs...)
	return d
}

// Registry is the read-only, ordered set of target descriptors.
type Registry struct {
	order []string
	byKey map[string]Descriptor
}

// New builds a registry from descriptors, keeping their order.
// Duplicate keys are a programming error.
func New(descs []Descriptor) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if d.Key == "" {
			return nil, errors.New("target descriptor without key")
		}
		if _, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("duplicate target key %q", d.Key)
		}
		if d.Kind == KindSpecial && d.Special == SpecialNone {
			return nil, fmt.Errorf("special target %q has no handler", d.Key)
		}
		r.order = append(r.order, d.Key)
		r.byKey[d.Key] = d.clone()
	}
	return r, nil
}

// Lookup returns the descriptor for key.
func (r *Registry) Lookup(key string) (Descriptor, error) {
	d, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownTarget, key)
	}
	return d.clone(), nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// Keys returns all keys in registry order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Risky reports whether key is hidden without --risky.
func (r *Registry) Risky(key string) bool {
	return r.byKey[key].Risky
}

// Dangerous reports whether key requires --force.
func (r *Registry) Dangerous(key string) bool {
	return r.byKey[key].Dangerous
}

// RiskyKeys returns the risky keys in registry order.
func (r *Registry) RiskyKeys() []string {
	var out []string
	for _, k := range r.order {
		if r.byKey[k].Risky {
			out = append(out, k)
		}
	}
	return out
}

// Default builds the registry of macOS targets for env.
func Default(env config.Env) *Registry {
	r, err := New(Descriptors(env))
	if err != nil {
		panic(err)
	}
	return r
}

// Descriptors returns the macOS target table.
func Descriptors(env config.Env) []Descriptor {
	home := env.Home
	library := filepath.Join(home, "Library")
	caches := filepath.Join(library, "Caches")
	all := []string{"*"}

	return []Descriptor{
		// ── Time Machine ────────────────────────────────────────
		{
			Key:         KeyTimeMachineSnapshots,
			Kind:        KindSpecial,
			Special:     SpecialSnapshots,
			Description: "Local Time Machine snapshots",
		},

		// ── Devices & Xcode ─────────────────────────────────────
		{
			Key:           KeyIOSBackups,
			Kind:          KindPaths,
			Description:   "iOS/iPadOS device backups",
			Paths:         []string{filepath.Join(library, "Application Support", "MobileSync", "Backup")},
			DeletionGlobs: all,
			Risky:         true,
		},
		{
			Key:           KeyXcodeDerived,
			Kind:          KindPaths,
			Description:   "Xcode DerivedData",
			Paths:         []string{filepath.Join(library, "Developer", "Xcode", "DerivedData")},
			DeletionGlobs: all,
		},
		{
			Key:           KeyXcodeArchives,
			Kind:          KindPaths,
			Description:   "Xcode Archives",
			Paths:         []string{filepath.Join(library, "Developer", "Xcode", "Archives")},
			DeletionGlobs: all,
		},

		// ── Caches ──────────────────────────────────────────────
		{
			Key:               KeySystemCaches,
			Kind:              KindPaths,
			Description:       "System caches (/Library/Caches)",
			Paths:             []string{"/Library/Caches"},
			RequiresElevation: true,
			DeletionGlobs:     all,
			Risky:             true,
			Dangerous:         true,
		},
		{
			Key:           KeyUserCaches,
			Kind:          KindPaths,
			Description:   "User caches (~/Library/Caches)",
			Paths:         []string{caches},
			DeletionGlobs: all,
		},
		{
			Key:         KeyBrowserCache,
			Kind:        KindPaths,
			Description: "Browser cache (Chrome, Safari, Firefox, Arc)",
			Paths: []string{
				filepath.Join(caches, "Google", "Chrome"),
				filepath.Join(caches, "com.apple.Safari"),
				filepath.Join(caches, "Firefox"),
				filepath.Join(caches, "company.thebrowser.Browser"),
			},
			DeletionGlobs: all,
		},
		{
			Key:         KeyHomebrew,
			Kind:        KindSpecial,
			Special:     SpecialHomebrew,
			Description: "Homebrew cache (brew cleanup --prune=all)",
		},

		// ── Logs & temp ─────────────────────────────────────────
		{
			Key:               KeySystemLogs,
			Kind:              KindPaths,
			Description:       "System logs (/private/var/log)",
			Paths:             []string{"/private/var/log"},
			RequiresElevation: true,
			DeletionGlobs:     all,
		},
		{
			Key:           KeyUserLogs,
			Kind:          KindPaths,
			Description:   "User logs (~/Library/Logs)",
			Paths:         []string{filepath.Join(library, "Logs")},
			DeletionGlobs: all,
		},
		{
			Key:               KeyPrivateTmp,
			Kind:              KindPaths,
			Description:       "System temp (/private/tmp and /private/var/tmp)",
			Paths:             []string{"/private/tmp", "/private/var/tmp"},
			RequiresElevation: true,
			DeletionGlobs:     all,
			Risky:             true,
			Dangerous:         true,
		},

		// ── Large app data ──────────────────────────────────────
		{
			Key:         KeyOllamaModels,
			Kind:        KindPaths,
			Description: "Ollama models (~/.ollama/models)",
			Paths:       []string{filepath.Join(home, ".ollama", "models")},
			// Keep the folder structure, delete contents.
			DeletionGlobs: []string{"blobs/*", "manifests/*"},
		},
		{
			Key:         KeyDockerData,
			Kind:        KindPaths,
			Description: "Docker data (~/Library/Containers/com.docker.docker / ~/Docker.raw)",
			Paths: []string{
				filepath.Join(library, "Containers", "com.docker.docker"),
				filepath.Join(library, "Group Containers", "group.com.docker"),
				filepath.Join(home, "Docker.raw"),
			},
			Risky:     true,
			Dangerous: true,
			Warning:   "Docker data can be very large and deleting it will remove images/volumes.",
		},
		{
			Key:         KeyDockerPrune,
			Kind:        KindSpecial,
			Special:     SpecialDockerPrune,
			Description: "Docker reclaimable (docker system prune -af, no volumes)",
		},

		// ── User clutter ────────────────────────────────────────
		{
			Key:           KeyTrash,
			Kind:          KindPaths,
			Description:   "User Trash (~/.Trash)",
			Paths:         []string{filepath.Join(home, ".Trash")},
			DeletionGlobs: all,
		},
		{
			Key:         KeyDownloads,
			Kind:        KindSpecial,
			Special:     SpecialDownloads,
			Description: "Old Downloads (~/Downloads, older than N days)",
		},
		{
			Key:           KeyMailAttachments,
			Kind:          KindPaths,
			Description:   "Mail.app attachments (Mail Downloads)",
			Paths:         []string{env.MailDownloads},
			DeletionGlobs: all,
		},
		{
			Key:         KeyNodeModules,
			Kind:        KindSpecial,
			Special:     SpecialNodeModules,
			Description: "Orphan/old node_modules (Projects, Developer, etc.)",
		},
	}
}

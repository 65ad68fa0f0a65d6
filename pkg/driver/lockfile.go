package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LockfileVersion is bumped when the lockfile layout changes.
const LockfileVersion = 1

// Lockfile pins every installed dependency to an exact source and checksum.
type Lockfile struct {
	Version  int              `yaml:"version"`
	Packages []*LockedPackage `yaml:"packages"`
}

// LockedPackage records one resolved dependency.
type LockedPackage struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum,omitempty"`
}

// LockfilePath returns the lock path next to a manifest.
func LockfilePath(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), "script.lock.yml")
}

// LoadLockfile reads a lockfile; a missing file yields an empty lock.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Lockfile{Version: LockfileVersion}, nil
		}
		return nil, fmt.Errorf("lockfile: read %s: %w", path, err)
	}
	var lock Lockfile
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}
	if lock.Version == 0 {
		lock.Version = LockfileVersion
	}
	if lock.Version > LockfileVersion {
		return nil, fmt.Errorf("lockfile: %s requires a newer tinyjs (version %d)", path, lock.Version)
	}
	return &lock, nil
}

// Save writes the lockfile with packages in name order so rewrites diff
// cleanly.
func (l *Lockfile) Save(path string) error {
	packages := make([]*LockedPackage, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg != nil {
			packages = append(packages, pkg)
		}
	}
	sort.Slice(packages, func(a, b int) bool {
		return packages[a].Name < packages[b].Name
	})
	out := Lockfile{Version: l.Version, Packages: packages}
	if out.Version == 0 {
		out.Version = LockfileVersion
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", path, err)
	}
	return nil
}

// Find returns the locked entry for a dependency name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	for _, pkg := range l.Packages {
		if pkg != nil && pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// Upsert replaces or appends a locked package.
func (l *Lockfile) Upsert(pkg *LockedPackage) {
	if pkg == nil {
		return
	}
	for idx, existing := range l.Packages {
		if existing != nil && existing.Name == pkg.Name {
			l.Packages[idx] = pkg
			return
		}
	}
	l.Packages = append(l.Packages, pkg)
}

// SanitizeSegment makes a dependency name or version safe as a directory
// segment in the package cache.
func SanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('-')
	}
	return b.String()
}

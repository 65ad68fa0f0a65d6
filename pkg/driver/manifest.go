// Package driver loads project manifests and lockfiles for the tinyjs CLI:
// which script to run, and which git or path dependencies to install next to
// it.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest represents the parsed contents of script.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Main         string
	Scripts      map[string]string
	ScriptOrder  []string
	Dependencies map[string]*DependencySpec
}

// DependencySpec describes one dependency descriptor in the manifest. A
// dependency comes either from a git repository pinned to a revision, tag,
// or branch, or from a local path.
type DependencySpec struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

type manifestFile struct {
	Name         string                     `yaml:"name"`
	Version      string                     `yaml:"version"`
	Main         string                     `yaml:"main"`
	Scripts      yaml.Node                  `yaml:"scripts"`
	Dependencies map[string]*DependencySpec `yaml:"dependencies"`
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses script.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	return decodeManifest(file, absPath)
}

func decodeManifest(r io.Reader, absPath string) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest, err := raw.toManifest(absPath)
	if err != nil {
		return nil, err
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (f *manifestFile) toManifest(absPath string) (*Manifest, error) {
	m := &Manifest{
		Path:         absPath,
		Name:         strings.TrimSpace(f.Name),
		Version:      strings.TrimSpace(f.Version),
		Main:         strings.TrimSpace(f.Main),
		Scripts:      make(map[string]string),
		Dependencies: f.Dependencies,
	}
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]*DependencySpec)
	}

	// decode scripts through the node API to keep declaration order
	if f.Scripts.Kind != 0 {
		if f.Scripts.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("manifest: scripts must be a mapping")
		}
		for idx := 0; idx+1 < len(f.Scripts.Content); idx += 2 {
			key := strings.TrimSpace(f.Scripts.Content[idx].Value)
			value := strings.TrimSpace(f.Scripts.Content[idx+1].Value)
			m.Scripts[key] = value
			m.ScriptOrder = append(m.ScriptOrder, key)
		}
	}
	return m, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Main == "" && len(m.Scripts) == 0 {
		errs.Issues = append(errs.Issues, "main or scripts must be provided")
	}
	for _, name := range m.ScriptOrder {
		if name == "" {
			errs.Issues = append(errs.Issues, "scripts must not use empty keys")
			continue
		}
		if m.Scripts[name] == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("script %q missing an entry file", name))
		}
	}
	for name, dep := range m.Dependencies {
		if dep == nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: descriptor must not be empty", name))
			continue
		}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var issues []string
	hasGit := strings.TrimSpace(d.Git) != ""
	hasPath := strings.TrimSpace(d.Path) != ""
	switch {
	case hasGit && hasPath:
		issues = append(issues, "git and path are mutually exclusive")
	case !hasGit && !hasPath:
		issues = append(issues, "one of git or path is required")
	}
	if hasGit {
		pins := 0
		for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
			if strings.TrimSpace(pin) != "" {
				pins++
			}
		}
		if pins == 0 {
			issues = append(issues, "git dependencies require rev, tag, or branch")
		}
		if pins > 1 {
			issues = append(issues, "rev, tag, and branch are mutually exclusive")
		}
	}
	if hasPath && (d.Rev != "" || d.Tag != "" || d.Branch != "") {
		issues = append(issues, "path dependencies must not pin a revision")
	}
	return issues
}

// ErrNoEntryScript is returned when neither main nor a usable script exists.
var ErrNoEntryScript = errors.New("manifest: no entry script defined")

// EntryScript resolves the file to run: a named script, or the manifest's
// main, or the start script when no name is given.
func (m *Manifest) EntryScript(name string) (string, error) {
	if m == nil {
		return "", ErrNoEntryScript
	}
	name = strings.TrimSpace(name)
	if name != "" {
		if file, ok := m.Scripts[name]; ok && file != "" {
			return m.resolvePath(file), nil
		}
		return "", fmt.Errorf("manifest: unknown script %q", name)
	}
	if m.Main != "" {
		return m.resolvePath(m.Main), nil
	}
	if file, ok := m.Scripts["start"]; ok && file != "" {
		return m.resolvePath(file), nil
	}
	return "", ErrNoEntryScript
}

func (m *Manifest) resolvePath(file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(filepath.Dir(m.Path), filepath.FromSlash(file))
}

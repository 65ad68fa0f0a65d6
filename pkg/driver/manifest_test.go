package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: demo
version: 1.2.3
main: index.js
scripts:
  start: index.js
  bench: bench/run.js
dependencies:
  utils:
    git: https://example.com/utils.git
    tag: v1.0.0
  local-lib:
    path: ../lib
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if m.Name != "demo" || m.Version != "1.2.3" || m.Main != "index.js" {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if len(m.Scripts) != 2 || m.Scripts["bench"] != "bench/run.js" {
		t.Fatalf("scripts = %+v", m.Scripts)
	}
	if len(m.ScriptOrder) != 2 || m.ScriptOrder[0] != "start" || m.ScriptOrder[1] != "bench" {
		t.Fatalf("script order = %v", m.ScriptOrder)
	}
	if dep := m.Dependencies["utils"]; dep == nil || dep.Tag != "v1.0.0" {
		t.Fatalf("dependencies = %+v", m.Dependencies)
	}
}

func TestLoadManifestRequiresNameAndEntry(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "version: 1.0.0\n"))
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	msg := verr.Error()
	if !strings.Contains(msg, "name must be provided") {
		t.Fatalf("missing name issue: %v", msg)
	}
	if !strings.Contains(msg, "main or scripts") {
		t.Fatalf("missing entry issue: %v", msg)
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "name: x\nmain: x.js\nbogus: true\n"))
	if err == nil {
		t.Fatalf("unknown fields should be rejected")
	}
}

func TestLoadManifestRejectsEmptyFile(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, ""))
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDependencyValidation(t *testing.T) {
	cases := []struct {
		yaml string
		want string
	}{
		{"dependencies:\n  a:\n    git: u\n    path: p\n", "mutually exclusive"},
		{"dependencies:\n  a: {}\n", "one of git or path is required"},
		{"dependencies:\n  a:\n    git: u\n", "require rev, tag, or branch"},
		{"dependencies:\n  a:\n    git: u\n    tag: t\n    branch: b\n", "rev, tag, and branch are mutually exclusive"},
		{"dependencies:\n  a:\n    path: p\n    rev: abc\n", "must not pin"},
	}
	for _, tc := range cases {
		_, err := LoadManifest(writeManifest(t, "name: x\nmain: x.js\n"+tc.yaml))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("yaml %q: want issue %q, got %v", tc.yaml, tc.want, err)
		}
	}
}

func TestEntryScriptResolution(t *testing.T) {
	path := writeManifest(t, `
name: demo
main: app.js
scripts:
  start: boot.js
  test: spec.js
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	dir := filepath.Dir(path)

	file, err := m.EntryScript("")
	if err != nil || file != filepath.Join(dir, "app.js") {
		t.Fatalf("default entry = %q, %v", file, err)
	}
	file, err = m.EntryScript("test")
	if err != nil || file != filepath.Join(dir, "spec.js") {
		t.Fatalf("named entry = %q, %v", file, err)
	}
	if _, err := m.EntryScript("nope"); err == nil {
		t.Fatalf("unknown script should fail")
	}
}

func TestEntryScriptFallsBackToStart(t *testing.T) {
	path := writeManifest(t, "name: demo\nscripts:\n  start: boot.js\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	file, err := m.EntryScript("")
	if err != nil || filepath.Base(file) != "boot.js" {
		t.Fatalf("start fallback = %q, %v", file, err)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tinyjs/interpreter-go/pkg/driver"
	"tinyjs/interpreter-go/pkg/interpreter"
	"tinyjs/interpreter-go/pkg/parser"
)

const cliToolVersion = "tinyjs 0.1.0-dev"

var errManifestNotFound = errors.New("script.yml not found")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runREPL()
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "repl":
		return runREPL()
	case "run":
		return runEntry(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		return runEntry(args)
	}
}

// runEntry executes either an explicit .js file or a manifest script.
func runEntry(args []string) int {
	if len(args) > 0 && looksLikePathCandidate(args[0]) {
		return executeFile(args[0])
	}

	manifest, err := loadManifestFrom(".")
	if err != nil {
		if errors.Is(err, errManifestNotFound) {
			fmt.Fprintln(os.Stderr, "tinyjs run requires a source file or a script.yml nearby")
		} else {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		}
		return 1
	}

	scriptName := ""
	if len(args) > 0 {
		scriptName = args[0]
	}
	entry, err := manifest.EntryScript(scriptName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
		return 1
	}
	return executeFile(entry)
}

func executeFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", path, err)
		return 1
	}

	program, err := parser.ParseProgram(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	interp := interpreter.New()
	if _, _, err := interp.EvaluateProgram(program); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	// drain timers and microtasks queued during evaluation
	interp.Loop().Run()
	return 0
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if filepath.Ext(arg) == ".js" {
		return true
	}
	if _, err := os.Stat(arg); err == nil {
		return true
	}
	return false
}

// loadManifestFrom walks up from start looking for script.yml.
func loadManifestFrom(start string) (*driver.Manifest, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(dir, "script.yml")
		if _, err := os.Stat(candidate); err == nil {
			return driver.LoadManifest(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errManifestNotFound
		}
		dir = parent
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: tinyjs [command] [arguments]

Commands:
  run <file.js>      execute a JavaScript file
  run [script]       execute a script from script.yml (default: main)
  repl               start an interactive session (default with no args)
  deps install       fetch dependencies from script.yml into the cache
  deps update [name] refresh locked dependencies
  version            print the tool version`)
}

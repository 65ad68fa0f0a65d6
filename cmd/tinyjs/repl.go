package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"tinyjs/interpreter-go/pkg/interpreter"
	"tinyjs/interpreter-go/pkg/parser"
	"tinyjs/interpreter-go/pkg/runtime"
)

const (
	promptMain  = "> "
	promptCont  = "... "
	historyFile = ".tinyjs_history"
)

func runREPL() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	p, err := parser.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer p.Close()

	interp := interpreter.New()
	fmt.Println(cliToolVersion)

	for {
		code, ok := readStatement(ln, p)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		if strings.TrimSpace(code) == ".exit" {
			break
		}

		program, err := p.ParseProgram([]byte(code))
		if err != nil {
			fmt.Println(err)
			continue
		}
		val, _, err := interp.EvaluateProgram(program)
		if err != nil {
			// uncaught errors end the statement, not the session
			fmt.Println(err)
		} else {
			fmt.Println(formatREPLValue(val))
		}
		interp.Loop().Run()

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// readStatement accumulates lines until the buffer parses, so block
// statements can span multiple prompts.
func readStatement(ln *liner.State, p *parser.Parser) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C abandons the current input
			return "", true
		}

		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
			// dot commands never parse as JavaScript
			return line, true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := p.ParseProgram([]byte(src)); perr == nil {
			return src, true
		}
		if strings.TrimSpace(line) == "" {
			// a blank line forces evaluation so real syntax errors surface
			return src, true
		}
	}
}

func formatREPLValue(val runtime.Value) string {
	if val == nil {
		return "undefined"
	}
	if s, ok := val.(runtime.StringValue); ok {
		return "'" + s.Val + "'"
	}
	return runtime.ToString(val)
}

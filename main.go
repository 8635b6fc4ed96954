// SPDX-License-Identifier: Apache-2.0
package main

import (
	goerrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"sigil/internal/compiler"
	"sigil/internal/data"
	"sigil/internal/errors"
	"sigil/internal/manifest"
	"sigil/internal/parser"
	"sigil/internal/space"
	"sigil/internal/system"
	"sigil/repl"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: sigil <manifest.yaml | file.sgl | repl>")
		os.Exit(1)
	}

	arg := os.Args[1]
	switch {
	case arg == "repl":
		repl.Start(os.Stdin, os.Stdout)
	case strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml"):
		runManifest(arg)
	default:
		checkFile(arg)
	}
}

// checkFile parses a rule file and reports what it found.
func checkFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read file: %s", err)
		os.Exit(1)
	}

	rules, err := parser.ParseSource(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	for _, rule := range rules {
		fmt.Printf("rule %s:%s (%d select, %d apply)\n",
			rule.SystemName, rule.Name, len(rule.Select), len(rule.Apply))
	}
	color.Green("✅ Parsed %d rules from %s", len(rules), path)
}

// runManifest creates the declared systems, loads their rule files, and runs
// the selected strategy against a fresh space with one root per input.
func runManifest(path string) {
	m, err := manifest.Load(path)
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	systems := make(map[string]*system.System, len(m.Systems))
	ordered := make([]*system.System, 0, len(m.Systems))
	for _, spec := range m.Systems {
		sys, err := system.New(spec.Name, spec.Inputs...)
		if err != nil {
			color.Red("%s", err)
			os.Exit(1)
		}
		systems[spec.Name] = sys
		ordered = append(ordered, sys)
	}

	loader := system.NewLoader(ordered...)
	for _, spec := range m.Systems {
		for _, file := range spec.Files {
			count, err := loader.LoadFile(file)
			if err != nil {
				reportLoadError(file, err)
				os.Exit(1)
			}
			fmt.Printf("loaded %d rules from %s\n", count, file)
		}
	}

	sys := systems[m.Run.System]
	sp := space.New()
	inputs := make([]data.Id, len(sys.InputVariables()))
	for i := range inputs {
		inputs[i] = sp.CreateRootId()
	}

	var controls []system.ControlFunc
	if m.Run.LimitTotal > 0 {
		controls = append(controls, system.LimitTotal(m.Run.LimitTotal))
	}
	if m.Run.LimitPerRule > 0 {
		controls = append(controls, system.LimitPerRule(m.Run.LimitPerRule))
	}
	var control system.ControlFunc
	if len(controls) > 0 {
		control = system.ControlAll(controls...)
	}

	switch m.Run.Strategy {
	case manifest.StrategyFirst:
		name, fired, err := sys.RunToFirst(sp, inputs...)
		if err != nil {
			color.Red("%s", err)
			os.Exit(1)
		}
		if fired {
			color.Green("✅ Fired rule %s", name)
		} else {
			color.Yellow("No rule fired")
		}
	case manifest.StrategyRuleSaturation:
		reportCount(sys.RunRuleSaturationWithControl(sp, inputs, control))
	case manifest.StrategySaturation:
		reportCount(sys.RunSaturationWithControl(sp, inputs, control))
	}
}

func reportCount(count uint64, err error) {
	if err != nil {
		color.Yellow("⚠ %s", err)
		return
	}
	color.Green("✅ %d rule firings", count)
}

// reportLoadError renders compile errors with the source-anchored reporter
// and falls back to plain output for everything else.
func reportLoadError(path string, err error) {
	var compileErr *compiler.CompileError
	if goerrors.As(err, &compileErr) {
		source, readErr := os.ReadFile(path)
		if readErr == nil {
			reporter := errors.NewReporter(path, string(source))
			fmt.Print(reporter.Format(compileErr.Code(), compileErr.Line, 1, compileErr.Error()))
			return
		}
	}
	color.Red("%s", err)
}

// reportParseError prints a friendly caret-style parse error message.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("❌ Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", pe.Message())
}

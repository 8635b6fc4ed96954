// SPDX-License-Identifier: Apache-2.0
// Package repl provides an interactive session: type rules, load files, and
// run them against an in-memory space with a single ROOT input.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"sigil/internal/data"
	"sigil/internal/space"
	"sigil/internal/system"
)

const prompt = ">> "

// Start runs the interactive loop until EOF or :quit. Rule text accumulates
// across lines and loads on a blank line; lines starting with ':' are
// commands.
func Start(in io.Reader, out io.Writer) {
	interactive := false
	if file, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	}

	sys, err := system.New("repl", "ROOT")
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	loader := system.NewLoader(sys)
	sp := space.New()
	root := sp.CreateRootId()

	var pending strings.Builder
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			if !runCommand(out, line, loader, sys, sp, root) {
				return
			}
		case strings.TrimSpace(line) == "":
			if pending.Len() == 0 {
				continue
			}
			source := pending.String()
			pending.Reset()
			count, err := loader.LoadString(source)
			if err != nil {
				color.New(color.FgRed).Fprintln(out, err)
				continue
			}
			fmt.Fprintf(out, "loaded %d rules (%d total)\n", count, sys.Count())
		default:
			pending.WriteString(line)
			pending.WriteString("\n")
		}
	}
}

// runCommand handles a ':' command; returns false to end the session.
func runCommand(out io.Writer, line string, loader *system.Loader, sys *system.System, sp *space.Space, root data.Id) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return false
	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: :load <file>")
			return true
		}
		count, err := loader.LoadFile(fields[1])
		if err != nil {
			color.New(color.FgRed).Fprintln(out, err)
			return true
		}
		fmt.Fprintf(out, "loaded %d rules (%d total)\n", count, sys.Count())
	case ":first":
		name, fired, err := sys.RunToFirst(sp, root)
		if err != nil {
			color.New(color.FgRed).Fprintln(out, err)
		} else if fired {
			fmt.Fprintf(out, "fired %s\n", name)
		} else {
			fmt.Fprintln(out, "no rule fired")
		}
	case ":run":
		count, err := sys.RunSaturationWithControl(sp, []data.Id{root}, system.LimitTotal(10_000))
		if err != nil {
			color.New(color.FgYellow).Fprintln(out, err)
		} else {
			fmt.Fprintf(out, "%d rule firings\n", count)
		}
	case ":root":
		iter := sp.Attributes(root).Iter()
		for {
			name, value, ok := iter.Next()
			if !ok {
				break
			}
			fmt.Fprintf(out, "  %s: %s\n", name, value)
		}
	case ":gc":
		fmt.Fprintf(out, "collected %d objects\n", sp.CollectGarbage())
	default:
		fmt.Fprintln(out, "commands: :load <file>  :first  :run  :root  :gc  :quit")
	}
	return true
}

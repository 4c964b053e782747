package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

var parser = participle.MustBuild[Document](
	participle.Lexer(PipelineLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// Load reads and parses a pipeline configuration file into a Config.
// Syntax errors are reported with the caret-style formatting used
// elsewhere in this codebase's diagnostics and also returned as a plain
// Go error so callers can decide whether to print or just propagate.
func Load(path string) (*Config, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(path, string(source))
}

// Parse parses config source text already read into memory, useful for
// tests that don't want to touch the filesystem.
func Parse(path, source string) (*Config, error) {
	doc, err := parser.ParseString(path, source)
	if err != nil {
		reportParseError(path, source, err)
		return nil, err
	}
	if doc.Pipeline == nil {
		return nil, fmt.Errorf("%s: missing pipeline block", path)
	}
	return fromDocument(doc)
}

func reportParseError(path, src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error parsing %s: %s", path, err)
		return
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error in %s at unknown location: %s", path, err)
		return
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(0, pos.Column-1)) + "^"
	color.Red("config error in %s at line %d, column %d:", path, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}

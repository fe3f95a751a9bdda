// Package config holds the configuration of the sgparse tool, which may be
// read from a TOML file and then overridden by flags.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// LexerPLSQL is the name of the built-in PL/SQL lexer. Any other lexer is
// given as the path to a pattern lexer definition file.
const LexerPLSQL = "plsql"

// Output is the form that parse results are printed in.
type Output string

const (
	OutputTree   Output = "tree"
	OutputJSON   Output = "json"
	OutputDOM    Output = "dom"
	OutputTable  Output = "table"
	OutputBinary Output = "binary"
)

// NeedsPLSQL returns whether the output mode can only be produced from trees
// of the built-in PL/SQL grammar.
func (o Output) NeedsPLSQL() bool {
	return o == OutputDOM || o == OutputTable
}

// ParseOutput parses the name of an output mode.
func ParseOutput(s string) (Output, error) {
	switch Output(strings.ToLower(s)) {
	case OutputTree:
		return OutputTree, nil
	case OutputJSON:
		return OutputJSON, nil
	case OutputDOM:
		return OutputDOM, nil
	case OutputTable:
		return OutputTable, nil
	case OutputBinary:
		return OutputBinary, nil
	default:
		return "", fmt.Errorf("must be one of 'tree', 'json', 'dom', 'table', or 'binary'")
	}
}

// Config is the configuration for a parsing session.
type Config struct {
	// Grammar is the path to a grammar file. If empty, the built-in PL/SQL
	// package grammar is used.
	Grammar string `toml:"grammar"`

	// Lexer is either LexerPLSQL or the path to a pattern lexer definition.
	Lexer string `toml:"lexer"`

	// Root overrides the rule that parsing starts from.
	Root string `toml:"root"`

	// Output is how parse results are shown.
	Output Output `toml:"output"`

	// Trace enables parse tracing.
	Trace bool `toml:"trace"`

	// MaxLookahead limits lookahead during parsing. Zero is unlimited.
	MaxLookahead int `toml:"max_lookahead"`

	// Width is the width of console output in characters.
	Width int `toml:"width"`
}

// Load reads a Config from the TOML file at the given path. Keys that are not
// part of Config are an error.
func Load(path string) (Config, error) {
	var cfg Config

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%q: unknown key %q", path, undecoded[0].String())
	}

	if cfg.Output != "" {
		cfg.Output, err = ParseOutput(string(cfg.Output))
		if err != nil {
			return Config{}, fmt.Errorf("%q: output: %w", path, err)
		}
	}

	return cfg, nil
}

// FillDefaults returns a new Config identitical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.Lexer == "" {
		newCFG.Lexer = LexerPLSQL
	}
	if newCFG.Output == "" {
		newCFG.Output = OutputTree
	}
	if newCFG.Width == 0 {
		newCFG.Width = 80
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	if cfg.Lexer == "" {
		return fmt.Errorf("lexer: not set")
	}
	if _, err := ParseOutput(string(cfg.Output)); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if cfg.Output.NeedsPLSQL() && (cfg.Grammar != "" || cfg.Lexer != LexerPLSQL) {
		return fmt.Errorf("output: %q requires the built-in PL/SQL grammar and lexer", cfg.Output)
	}
	if cfg.Width < 20 {
		return fmt.Errorf("width: must be at least 20, but is %d", cfg.Width)
	}
	if cfg.MaxLookahead < 0 {
		return fmt.Errorf("max_lookahead: must not be negative")
	}

	return nil
}

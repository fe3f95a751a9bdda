package patlex

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Definition is the TOML form of a Lexer. Its top-level table must set format
// to "SGLEX" and type to "LEXER"; tokens are listed as [[token]] tables in
// priority order.
type Definition struct {
	Format string     `toml:"format"`
	Type   string     `toml:"type"`
	Ignore []string   `toml:"ignore"`
	Tokens []TokenDef `toml:"token"`
}

// TokenDef is a single [[token]] entry of a Definition.
type TokenDef struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
}

// Lexer creates a Lexer from the definition.
func (def Definition) Lexer() (*Lexer, error) {
	if strings.ToUpper(def.Format) != "SGLEX" {
		return nil, fmt.Errorf("file does not have a 'format = \"SGLEX\"' entry")
	}
	if strings.ToUpper(def.Type) != "LEXER" {
		return nil, fmt.Errorf("file does not have a 'type = \"LEXER\"' entry")
	}
	if len(def.Tokens) == 0 {
		return nil, fmt.Errorf("no [[token]] entries defined")
	}

	lx := New()
	for i, td := range def.Tokens {
		if err := lx.AddPattern(td.Name, td.Pattern); err != nil {
			return nil, fmt.Errorf("token #%d: %w", i+1, err)
		}
	}
	lx.Ignore(def.Ignore...)

	return lx, nil
}

// Parse reads a Lexer from TOML-formatted data.
func Parse(data []byte) (*Lexer, error) {
	var def Definition
	if _, err := toml.Decode(string(data), &def); err != nil {
		return nil, err
	}

	return def.Lexer()
}

// LoadFile reads a Lexer from the TOML file at the given path.
func LoadFile(path string) (*Lexer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%q: reading from disk: %w", path, err)
	}

	lx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}

	return lx, nil
}

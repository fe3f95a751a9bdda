/*
Sgparse parses source text with a grammar and prints the resulting syntax
tree.

By default it uses the built-in grammar and lexer for PL/SQL package
specifications. Any other grammar can be given as a grammar file along with a
pattern lexer definition that produces the tokens the grammar expects.

Usage:

	sgparse [flags] [FILE ...]

Each FILE is read and parsed as a single input. If no files are given, all of
stdin is read and parsed. With --interactive, an interactive session is started
instead: source text is read a statement at a time and each statement is parsed
as soon as it is ended by a blank line or a line with only "/".

The flags are:

	-v, --version
		Give the current version of sgparse and then exit.

	-c, --config FILE
		Read settings from the given TOML file. Flags given on the command line
		override settings in the file.

	-g, --grammar FILE
		Use the grammar in the given file. If not given, will default to the
		value of environment variable SGPARSE_GRAMMAR, and if that is not given,
		the built-in PL/SQL package grammar is used.

	-l, --lexer plsql|FILE
		Use the given lexer. This is either "plsql" for the built-in PL/SQL
		lexer or the path to a TOML pattern lexer definition. If not given, will
		default to the value of environment variable SGPARSE_LEXER, and if that
		is not given, "plsql" is used.

	-r, --root RULE
		Start parsing from RULE instead of the root rule of the grammar.

	-o, --output tree|json|dom|table|binary
		Print results in the given form. "dom" and "table" build the PL/SQL
		package model and so can only be used with the built-in grammar and
		lexer. Defaults to "tree".

	-t, --trace
		Print each step of the parse as it is taken.

	--max-lookahead N
		Fail a parse that needs to look more than N tokens ahead to choose an
		option. 0 means no limit.

	--width N
		Wrap console output to N characters. Defaults to 80.

	--check
		Only load and validate the grammar and lexer, then exit.

	-i, --interactive
		Start an interactive session.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines in an interactive session even if launched in a
		tty with stdin and stdout.

The exit code is 0 if everything parsed, 1 if any input could not be parsed,
and 2 if sgparse could not start.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/simplegrammar"
	"github.com/dekarrin/simplegrammar/grammar"
	"github.com/dekarrin/simplegrammar/internal/config"
	"github.com/dekarrin/simplegrammar/internal/version"
	"github.com/spf13/pflag"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitParseError indicates that at least one input could not be parsed.
	ExitParseError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// loading the grammar, lexer, or settings.
	ExitInitError
)

const (
	EnvGrammar = "SGPARSE_GRAMMAR"
	EnvLexer   = "SGPARSE_LEXER"
)

var (
	returnCode = ExitSuccess

	flagVersion      = pflag.BoolP("version", "v", false, "Give the current version of sgparse and then exit.")
	flagConfig       = pflag.StringP("config", "c", "", "Read settings from the given TOML file.")
	flagGrammar      = pflag.StringP("grammar", "g", "", "Use the grammar in the given file instead of the PL/SQL grammar.")
	flagLexer        = pflag.StringP("lexer", "l", "", "Use the given lexer; 'plsql' or the path to a pattern lexer definition.")
	flagRoot         = pflag.StringP("root", "r", "", "Start parsing from the given rule.")
	flagOutput       = pflag.StringP("output", "o", "", "Print results as tree, json, dom, table, or binary.")
	flagTrace        = pflag.BoolP("trace", "t", false, "Print each step of the parse.")
	flagMaxLookahead = pflag.Int("max-lookahead", 0, "Limit lookahead to the given number of tokens. 0 is no limit.")
	flagWidth        = pflag.Int("width", 0, "Wrap console output to the given width.")
	flagCheck        = pflag.Bool("check", false, "Only load and validate the grammar and lexer.")
	flagInteractive  = pflag.BoolP("interactive", "i", false, "Start an interactive session.")
	flagDirect       = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\nDo -h for help.\n", err.Error())
		returnCode = ExitInitError
		return
	}

	fe, err := simplegrammar.LoadFrontend(cfg.Grammar, cfg.Lexer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	if cfg.Root != "" && !fe.Grammar.HasRule(cfg.Root) {
		fmt.Fprintf(os.Stderr, "ERROR: grammar has no rule named %q\n", cfg.Root)
		returnCode = ExitInitError
		return
	}

	if *flagCheck {
		fmt.Printf("Grammar OK: %d rules, root rule is %s\n", len(fe.Grammar.RuleNames()), fe.Grammar.Root())
		return
	}

	if *flagInteractive {
		returnCode = runInteractive(fe, cfg)
		return
	}

	opts := grammar.ParseOptions{
		Root:         cfg.Root,
		Trace:        cfg.Trace,
		TraceOutput:  os.Stdout,
		MaxLookahead: cfg.MaxLookahead,
	}

	files := pflag.Args()
	if len(files) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading stdin: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		if !parseAndPrint(fe, string(data), "", opts, cfg) {
			returnCode = ExitParseError
		}
		return
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitParseError
			continue
		}

		label := ""
		if len(files) > 1 {
			label = f
		}
		if !parseAndPrint(fe, string(data), label, opts, cfg) {
			returnCode = ExitParseError
		}
	}
}

// loadConfig assembles the settings from the config file, the environment, and
// the flags, in increasing order of precedence.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error

	if *flagConfig != "" {
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			return cfg, err
		}
	}

	if env := os.Getenv(EnvGrammar); env != "" {
		cfg.Grammar = env
	}
	if env := os.Getenv(EnvLexer); env != "" {
		cfg.Lexer = env
	}

	if pflag.Lookup("grammar").Changed {
		cfg.Grammar = *flagGrammar
	}
	if pflag.Lookup("lexer").Changed {
		cfg.Lexer = *flagLexer
	}
	if pflag.Lookup("root").Changed {
		cfg.Root = *flagRoot
	}
	if pflag.Lookup("output").Changed {
		cfg.Output, err = config.ParseOutput(*flagOutput)
		if err != nil {
			return cfg, fmt.Errorf("--output: %w", err)
		}
	}
	if pflag.Lookup("trace").Changed {
		cfg.Trace = *flagTrace
	}
	if pflag.Lookup("max-lookahead").Changed {
		cfg.MaxLookahead = *flagMaxLookahead
	}
	if pflag.Lookup("width").Changed {
		cfg.Width = *flagWidth
	}

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func runInteractive(fe simplegrammar.Frontend, cfg config.Config) int {
	eng, err := simplegrammar.New(os.Stdin, os.Stdout, fe, simplegrammar.EngineOptions{
		Root:         cfg.Root,
		Trace:        cfg.Trace,
		MaxLookahead: cfg.MaxLookahead,
		Output:       cfg.Output,
		Width:        cfg.Width,
		ForceDirect:  *flagDirect,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInitError
	}
	defer eng.Close()

	if err := eng.RunUntilQuit(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitParseError
	}
	return ExitSuccess
}

// parseAndPrint parses src and prints the result to stdout, or the error to
// stderr. It returns whether the parse succeeded.
func parseAndPrint(fe simplegrammar.Frontend, src, label string, opts grammar.ParseOptions, cfg config.Config) bool {
	if label != "" {
		fmt.Printf("==> %s <==\n", label)
	}

	root, err := fe.Parse(src, opts)
	if err != nil {
		var synErr grammar.SyntaxError
		if errors.As(err, &synErr) {
			fmt.Fprintf(os.Stderr, "%s\n", synErr.FullMessage(src))
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		}
		return false
	}

	output, err := simplegrammar.Render(root, cfg.Output, cfg.Width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return false
	}

	fmt.Println(output)
	return true
}

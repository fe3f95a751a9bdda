// Package simplegrammar contains a CLI-driven engine that reads source text
// from the user, parses it with a grammar, and prints the results until the
// user quits.
//
// The parsing machinery itself lives in the grammar package; the lexers that
// feed it are in the plsql and patlex packages.
package simplegrammar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/simplegrammar/grammar"
	"github.com/dekarrin/simplegrammar/internal/config"
	"github.com/dekarrin/simplegrammar/internal/input"
	"github.com/dekarrin/simplegrammar/internal/sgerrors"
)

const (
	promptStart    = "> "
	promptContinue = ". "
)

// EngineOptions is the settings of an Engine that may be changed while it
// runs.
type EngineOptions struct {
	Root         string
	Trace        bool
	MaxLookahead int
	Output       config.Output
	Width        int

	// ForceDirect disables readline even when attached to a terminal.
	ForceDirect bool
}

// Engine contains the things needed to run an interactive parsing session
// attached to an input stream and an output stream.
type Engine struct {
	fe          Frontend
	opts        EngineOptions
	in          input.Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool
}

var commandHelp = [][2]string{
	{":help", "Show this help."},
	{":quit, :q", "Exit the session."},
	{":grammar", "Show the rules of the grammar in use."},
	{":trace [on|off]", "Show or set whether each step of a parse is printed."},
	{":mode [MODE]", "Show or set how results are printed. MODE is one of tree, json, dom, table, or binary."},
	{":root [RULE]", "Show or set the rule that parsing starts from. Give no RULE after a set to go back to the root rule."},
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and a
// buffered writer on the output stream.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin. If
// nil is given for the output stream, a bufio.Writer is opened on stdout.
func New(inputStream io.Reader, outputStream io.Writer, fe Frontend, opts EngineOptions) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}
	if fe.Grammar == nil || fe.Lex == nil {
		return nil, fmt.Errorf("frontend must have both a grammar and a lexer")
	}
	if opts.Output == "" {
		opts.Output = config.OutputTree
	}
	if opts.Width == 0 {
		opts.Width = 80
	}
	if opts.Output.NeedsPLSQL() && !fe.PLSQL {
		return nil, fmt.Errorf("output mode %q requires the PL/SQL frontend", opts.Output)
	}
	if opts.Root != "" && !fe.Grammar.HasRule(opts.Root) {
		return nil, fmt.Errorf("grammar has no rule named %q", opts.Root)
	}

	eng := &Engine{
		fe:          fe,
		opts:        opts,
		out:         bufio.NewWriter(outputStream),
		forceDirect: opts.ForceDirect,
	}

	useReadline := !opts.ForceDirect && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		var err error
		eng.in, err = input.NewInteractiveReader(promptStart)
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	// blank lines end a statement, so the engine must see them
	eng.in.AllowBlank(true)

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close input reader: %w", err)
	}

	return nil
}

// RunUntilQuit reads statements from the input and parses each one until the
// quit command is received or input ends. A statement is ended by a line that
// is blank or that contains only "/". Lines starting with ':' outside of a
// statement are commands. Problems with a statement are printed and do not end
// the session.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "simplegrammar interactive parser\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "================================\n"
	introMsg += "Enter source text, then a blank line or a line with only \"/\" to parse it.\n"
	introMsg += "Type :help for commands.\n\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	var stmt []string
	for eng.running {
		if len(stmt) == 0 {
			eng.in.SetPrompt(promptStart)
		} else {
			eng.in.SetPrompt(promptContinue)
		}

		line, err := eng.in.ReadLine()
		if err == io.EOF {
			if len(stmt) > 0 {
				if err := eng.parse(strings.Join(stmt, "\n")); err != nil {
					return err
				}
			}
			break
		} else if err != nil {
			return fmt.Errorf("get user input: %w", err)
		}

		if len(stmt) == 0 && strings.HasPrefix(line, ":") {
			if cmdErr := eng.command(line); cmdErr != nil {
				if err := eng.showError(cmdErr, ""); err != nil {
					return err
				}
			}
			continue
		}

		if line == "" || line == "/" {
			if len(stmt) > 0 {
				src := strings.Join(stmt, "\n")
				stmt = nil
				if err := eng.parse(src); err != nil {
					return err
				}
			}
			continue
		}

		stmt = append(stmt, line)
	}

	return eng.write("Goodbye\n")
}

// parse parses one statement and shows the result. The returned error is only
// non-nil if output could not be written.
func (eng *Engine) parse(src string) error {
	opts := grammar.ParseOptions{
		Root:         eng.opts.Root,
		Trace:        eng.opts.Trace,
		TraceOutput:  eng.out,
		MaxLookahead: eng.opts.MaxLookahead,
	}

	root, err := eng.fe.Parse(src, opts)
	if err != nil {
		return eng.showError(err, src)
	}

	output, err := Render(root, eng.opts.Output, eng.opts.Width)
	if err != nil {
		return eng.showError(sgerrors.WrapConsolef(err, "Parsed, but could not show the result: %s", err.Error()), src)
	}

	return eng.write(output + "\n\n")
}

func (eng *Engine) command(line string) error {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	var output string

	switch cmd {
	case ":quit", ":q":
		eng.running = false
		return nil
	case ":help":
		output = rosed.
			Edit("").
			WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
			InsertDefinitionsTable(0, commandHelp, eng.opts.Width).
			Insert(0, "Enter source text to parse it. Commands:\n").
			String()
	case ":grammar":
		output = eng.fe.Grammar.Table(eng.opts.Width)
	case ":trace":
		if len(args) > 0 {
			switch strings.ToLower(args[0]) {
			case "on":
				eng.opts.Trace = true
			case "off":
				eng.opts.Trace = false
			default:
				return sgerrors.Consolef("Tracing can only be turned 'on' or 'off', not %q.", args[0])
			}
		}
		state := "off"
		if eng.opts.Trace {
			state = "on"
		}
		output = "Tracing is " + state + "."
	case ":mode":
		if len(args) > 0 {
			mode, err := config.ParseOutput(args[0])
			if err != nil {
				return sgerrors.WrapConsolef(err, "Unknown output mode %q; it %s.", args[0], err.Error())
			}
			if mode.NeedsPLSQL() && !eng.fe.PLSQL {
				return sgerrors.Consolef("Output mode %q can only be used with the PL/SQL grammar.", mode)
			}
			eng.opts.Output = mode
		}
		output = "Output mode is " + string(eng.opts.Output) + "."
	case ":root":
		if len(args) > 0 {
			if !eng.fe.Grammar.HasRule(args[0]) {
				return sgerrors.Consolef("The grammar has no rule named %q.", args[0])
			}
			eng.opts.Root = args[0]
		}
		root := eng.opts.Root
		if root == "" {
			root = eng.fe.Grammar.Root()
		}
		output = "Parsing starts from " + root + "."
	default:
		return sgerrors.Consolef("I don't know the command %q. Type :help for a list of commands.", cmd)
	}

	return eng.write(output + "\n\n")
}

// showError writes a description of err. If err is a syntax error, the
// offending line of src is shown with it.
func (eng *Engine) showError(err error, src string) error {
	var msg string

	var synErr grammar.SyntaxError
	if errors.As(err, &synErr) {
		msg = synErr.FullMessage(src)
	} else {
		msg = rosed.Edit(sgerrors.ConsoleMessage(err)).Wrap(eng.opts.Width).String()
	}

	return eng.write(msg + "\n\n")
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}

package simplegrammar

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/dekarrin/simplegrammar/grammar"
	"github.com/dekarrin/simplegrammar/internal/config"
	"github.com/dekarrin/simplegrammar/patlex"
	"github.com/dekarrin/simplegrammar/tree"
	"github.com/stretchr/testify/assert"
)

const sumGrammar = `
SUM: {INT+, +} MORE;
MORE: {PLUS} {INT+, +} MORE | ^;
`

func sumFrontend(t *testing.T) Frontend {
	g, err := grammar.LoadString(sumGrammar)
	if err != nil {
		t.Fatalf("loading grammar: %v", err)
	}

	lx := patlex.New()
	for _, p := range [][2]string{{"WS", `\s+`}, {"INT", `([0-9]+)`}, {"PLUS", `\+`}} {
		if err := lx.AddPattern(p[0], p[1]); err != nil {
			t.Fatalf("adding pattern: %v", err)
		}
	}
	lx.Ignore("WS")

	return Frontend{Grammar: g, Lex: lx.Lex}
}

func sumTree(values ...string) *tree.Node {
	root := tree.New("SUM")
	for _, v := range values {
		root.AddChild("INT").AddChild(v)
	}
	return root
}

func runEngine(t *testing.T, fe Frontend, opts EngineOptions, input string) string {
	var out bytes.Buffer
	opts.ForceDirect = true

	eng, err := New(strings.NewReader(input), &out, fe, opts)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	if err := eng.RunUntilQuit(); err != nil {
		t.Fatalf("running engine: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("closing engine: %v", err)
	}

	return out.String()
}

func Test_Engine_RunUntilQuit(t *testing.T) {
	testCases := []struct {
		name      string
		opts      EngineOptions
		input     string
		expect    []string
		notExpect []string
	}{
		{
			name:   "blank line ends statement",
			input:  "1 + 2\n\n:quit\n",
			expect: []string{sumTree("1", "2").String(), "Goodbye"},
		},
		{
			name:   "slash ends statement",
			input:  "1 +\n2\n/\n",
			expect: []string{sumTree("1", "2").String()},
		},
		{
			name:   "pending statement parsed at end of input",
			input:  "7",
			expect: []string{sumTree("7").String(), "Goodbye"},
		},
		{
			name:      "nothing after quit is read",
			input:     ":q\n1 + 2\n\n",
			notExpect: []string{sumTree("1", "2").String()},
		},
		{
			name:   "syntax error shows cursor",
			input:  "1 2\n\n",
			expect: []string{"1 2\n  ^\nsyntax error: around line 1, char 3"},
		},
		{
			name:   "lex error",
			input:  "1 $\n\n",
			expect: []string{"unexpected character '$'"},
		},
		{
			name:   "session continues after an error",
			input:  "1 2\n\n3\n\n",
			expect: []string{"syntax error", sumTree("3").String()},
		},
		{
			name:   "json mode",
			opts:   EngineOptions{Output: config.OutputJSON},
			input:  "5\n\n",
			expect: []string{`"label": "SUM"`, `"label": "INT"`, `"label": "5"`},
		},
		{
			name:   "unknown command",
			input:  ":frobnicate\n",
			expect: []string{`I don't know the command ":frobnicate"`},
		},
		{
			name:   "help",
			input:  ":help\n",
			expect: []string{":quit", ":grammar", ":root"},
		},
		{
			name:   "grammar",
			input:  ":grammar\n",
			expect: []string{"SUM (root)", "MORE"},
		},
		{
			name:   "trace toggled on",
			input:  ":trace on\n:trace\n",
			expect: []string{"Tracing is on."},
		},
		{
			name:   "trace bad argument",
			input:  ":trace maybe\n",
			expect: []string{"Tracing can only be turned 'on' or 'off'"},
		},
		{
			name:   "mode change to json",
			input:  ":mode JSON\n5\n\n",
			expect: []string{"Output mode is json.", `"label": "SUM"`},
		},
		{
			name:   "mode unknown",
			input:  ":mode xml\n",
			expect: []string{`Unknown output mode "xml"`},
		},
		{
			name:   "mode needing plsql",
			input:  ":mode dom\n",
			expect: []string{"can only be used with the PL/SQL grammar"},
		},
		{
			name:   "root shown",
			input:  ":root\n",
			expect: []string{"Parsing starts from SUM."},
		},
		{
			name:   "root unknown",
			input:  ":root NOPE\n",
			expect: []string{`The grammar has no rule named "NOPE".`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := runEngine(t, sumFrontend(t), tc.opts, tc.input)

			assert.Contains(actual, "(direct input mode)")
			for _, e := range tc.expect {
				assert.Contains(actual, e)
			}
			for _, e := range tc.notExpect {
				assert.NotContains(actual, e)
			}
		})
	}
}

func Test_Engine_Trace(t *testing.T) {
	assert := assert.New(t)

	plain := runEngine(t, sumFrontend(t), EngineOptions{}, "1 + 2\n\n")
	traced := runEngine(t, sumFrontend(t), EngineOptions{Trace: true}, "1 + 2\n\n")

	assert.Greater(len(traced), len(plain))
	assert.Contains(traced, sumTree("1", "2").String())
}

func Test_New(t *testing.T) {
	testCases := []struct {
		name      string
		fe        func(t *testing.T) Frontend
		opts      EngineOptions
		expectErr bool
	}{
		{
			name: "defaults",
			fe:   sumFrontend,
		},
		{
			name:      "missing lexer",
			fe:        func(t *testing.T) Frontend { fe := sumFrontend(t); fe.Lex = nil; return fe },
			expectErr: true,
		},
		{
			name:      "dom without plsql",
			fe:        sumFrontend,
			opts:      EngineOptions{Output: config.OutputDOM},
			expectErr: true,
		},
		{
			name:      "unknown root",
			fe:        sumFrontend,
			opts:      EngineOptions{Root: "NOPE"},
			expectErr: true,
		},
		{
			name: "known root",
			fe:   sumFrontend,
			opts: EngineOptions{Root: "MORE"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			opts := tc.opts
			opts.ForceDirect = true
			eng, err := New(strings.NewReader(""), &bytes.Buffer{}, tc.fe(t), opts)

			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.NoError(eng.Close())
		})
	}
}

func Test_Render(t *testing.T) {
	n := sumTree("1", "2")

	testCases := []struct {
		name      string
		mode      config.Output
		expectErr bool
		check     func(assert *assert.Assertions, actual string)
	}{
		{
			name: "tree",
			mode: config.OutputTree,
			check: func(assert *assert.Assertions, actual string) {
				assert.Equal(n.String(), actual)
			},
		},
		{
			name: "json",
			mode: config.OutputJSON,
			check: func(assert *assert.Assertions, actual string) {
				assert.True(strings.HasPrefix(actual, "{\n  \"label\": \"SUM\""), actual)
			},
		},
		{
			name: "binary",
			mode: config.OutputBinary,
			check: func(assert *assert.Assertions, actual string) {
				data, err := base64.StdEncoding.DecodeString(actual)
				if !assert.NoError(err) {
					return
				}
				var decoded tree.Node
				if !assert.NoError(decoded.UnmarshalBinary(data)) {
					return
				}
				assert.True(n.Equal(&decoded))
			},
		},
		{
			name:      "dom of non-plsql tree",
			mode:      config.OutputDOM,
			expectErr: true,
		},
		{
			name:      "unknown mode",
			mode:      config.Output("xml"),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Render(n, tc.mode, 80)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			tc.check(assert, actual)
		})
	}
}

func Test_PLSQLFrontend(t *testing.T) {
	assert := assert.New(t)

	fe, err := PLSQLFrontend()
	if !assert.NoError(err) {
		return
	}

	root, err := fe.Parse("PACKAGE p IS\n  x NUMBER;\nEND;", grammar.ParseOptions{})
	if !assert.NoError(err) {
		return
	}

	for _, mode := range []config.Output{config.OutputDOM, config.OutputTable} {
		out, err := Render(root, mode, 80)
		assert.NoError(err, "mode %s", mode)
		assert.NotEmpty(out, "mode %s", mode)
	}
}

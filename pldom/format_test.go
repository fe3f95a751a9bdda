package pldom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Summary(t *testing.T) {
	testCases := []struct {
		name   string
		input  Declaration
		expect string
	}{
		{
			name: "procedure",
			input: Procedure{
				Header:     Header{Name: "P"},
				Parameters: []Parameter{{Header: Header{Name: "A"}, In: true, Type: Number{}}},
			},
			expect: "(A NUMBER)",
		},
		{
			name: "function",
			input: Function{
				Header: Header{Name: "F"},
				Parameters: []Parameter{
					{Header: Header{Name: "A"}, In: true, Out: true, NoCopy: true, Type: ReferenceType{Reference: []string{"EMP", "ID"}, Modifier: "TYPE"}},
					{Header: Header{Name: "B"}, In: true, Type: IntervalDS{DayPrecision: intp(2)}, Default: "1"},
				},
				Return:     SimpleType{Name: "BOOLEAN"},
				Directives: Directives{Deterministic: true, ResultCache: true},
			},
			expect: "(A IN OUT NOCOPY EMP.ID%TYPE, B INTERVAL DAY(2) TO SECOND := 1) RETURN BOOLEAN DETERMINISTIC RESULT_CACHE",
		},
		{
			name:   "function without parameters",
			input:  Function{Header: Header{Name: "F"}, Return: Float{Precision: intp(10)}},
			expect: "RETURN FLOAT(10)",
		},
		{
			name: "variable",
			input: Variable{
				Header:  Header{Name: "V"},
				Type:    CharacterType{Name: "VARCHAR2", Size: intp(100), Semantics: "BYTE"},
				NotNull: true,
				Value:   "'x'",
			},
			expect: "VARCHAR2(100 BYTE) NOT NULL := 'x'",
		},
		{
			name:   "constant",
			input:  Constant{Header: Header{Name: "C"}, Type: Number{Precision: intp(5), Scale: intp(2)}, Value: "1.5"},
			expect: "CONSTANT NUMBER(5,2) := 1.5",
		},
		{
			name: "associative array",
			input: AssociativeArrayType{
				Header:  Header{Name: "T"},
				Element: ReferenceType{Reference: []string{"T_REC"}},
				Index:   SimpleType{Name: "PLS_INTEGER"},
			},
			expect: "TABLE OF T_REC INDEX BY PLS_INTEGER",
		},
		{
			name:   "varray",
			input:  VArrayType{Header: Header{Name: "T"}, Size: 3, Element: Timestamp{WithTimeZone: true}},
			expect: "VARRAY(3) OF TIMESTAMP WITH TIME ZONE",
		},
		{
			name:   "weak ref cursor",
			input:  RefCursorType{Header: Header{Name: "T"}},
			expect: "REF CURSOR",
		},
		{
			name:   "exception init",
			input:  ExceptionInit{Header: Header{Name: "EXCEPTION_INIT"}, Exception: "E_BAD", Code: -20001},
			expect: "(E_BAD, -20001)",
		},
		{
			name:   "pragma without arguments",
			input:  GenericPragma{Header: Header{Name: "SERIALLY_REUSABLE"}},
			expect: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Summary(tc.input)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Package_Table(t *testing.T) {
	assert := assert.New(t)

	pkg := Package{
		Name:   "EMP_API",
		Schema: "HR",
		Authid: Definer,
		Declarations: []Declaration{
			Exception{Header: Header{Name: "E_BAD"}},
		},
	}

	actual := pkg.Table(80)

	assert.Contains(actual, "Package HR.EMP_API (AUTHID DEFINER)\n")
	assert.Contains(actual, "E_BAD")
	assert.Contains(actual, "EXCEPTION")
}

func Test_MarshalJSON(t *testing.T) {
	testCases := []struct {
		name   string
		input  any
		expect string
	}{
		{
			name:   "declaration has kind",
			input:  Exception{Header: Header{Name: "E"}},
			expect: `{"kind":"EXCEPTION","name":"E"}`,
		},
		{
			name:   "data type has kind",
			input:  Variable{Header: Header{Name: "V"}, Type: Number{Precision: intp(3)}},
			expect: `{"kind":"VARIABLE","name":"V","type":{"kind":"NUMBER","precision":3}}`,
		},
		{
			name:   "empty data type",
			input:  SimpleType{},
			expect: `{"kind":"SIMPLE","name":""}`,
		},
		{
			name: "package",
			input: Package{
				Name:         "P",
				Authid:       Definer,
				Declarations: []Declaration{GenericPragma{Header: Header{Name: "SERIALLY_REUSABLE"}}},
			},
			expect: `{"name":"P","authid":"DEFINER","declarations":[{"kind":"PRAGMA","name":"SERIALLY_REUSABLE"}]}`,
		},
		{
			name: "annotations",
			input: Annotation{
				Name:       "API",
				Parameters: map[string]any{"V": json.Number("2")},
			},
			expect: `{"name":"API","parameters":{"V":2}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := json.Marshal(tc.input)
			if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.expect, string(actual))
		})
	}
}

package pldom

import (
	"encoding/json"
	"testing"

	"github.com/dekarrin/simplegrammar/plsql"
	"github.com/dekarrin/simplegrammar/tree"
	"github.com/stretchr/testify/assert"
)

const empAPI = `CREATE OR REPLACE PACKAGE hr.emp_api AUTHID CURRENT_USER AS
  /** Default page size. */
  c_page CONSTANT PLS_INTEGER := 20;
  g_name VARCHAR2(100 BYTE) NOT NULL := 'it''s';
  g_when TIMESTAMP(6) WITH LOCAL TIME ZONE;
  TYPE t_ids IS VARRAY(10) OF NUMBER(5,2);
  TYPE t_cur IS REF CURSOR RETURN emp%ROWTYPE;
  CURSOR c_emp(p_dept NUMBER) IS SELECT * FROM emp WHERE dept = p_dept;
  e_bad EXCEPTION;
  PRAGMA EXCEPTION_INIT(e_bad, -20001);
  -- @Api(version = 2, tags = {"x"})
  FUNCTION find(p_id IN OUT NOCOPY emp.id%TYPE, p_when INTERVAL DAY(2) TO SECOND(3) := SYSDATE + 1) RETURN BOOLEAN PIPELINED;
END emp_api;
/
`

func intp(i int) *int {
	return &i
}

func Test_BuildPackage(t *testing.T) {
	assert := assert.New(t)

	root, err := plsql.ParsePackageString(empAPI)
	if !assert.NoError(err) {
		return
	}

	expect := Package{
		Name:   "EMP_API",
		Schema: "HR",
		Authid: CurrentUser,
		Declarations: []Declaration{
			Constant{
				Header: Header{Name: "C_PAGE", Documentation: []string{"Default page size."}},
				Type:   SimpleType{Name: "PLS_INTEGER"},
				Value:  "20",
			},
			Variable{
				Header:  Header{Name: "G_NAME"},
				Type:    CharacterType{Name: "VARCHAR2", Size: intp(100), Semantics: "BYTE"},
				NotNull: true,
				Value:   "'it''s'",
			},
			Variable{
				Header: Header{Name: "G_WHEN"},
				Type:   Timestamp{Precision: intp(6), WithTimeZone: true, Local: true},
			},
			VArrayType{
				Header:  Header{Name: "T_IDS"},
				Size:    10,
				Element: Number{Precision: intp(5), Scale: intp(2)},
			},
			RefCursorType{
				Header: Header{Name: "T_CUR"},
				Return: ReferenceType{Reference: []string{"EMP"}, Modifier: "ROWTYPE"},
			},
			Cursor{
				Header: Header{Name: "C_EMP"},
				Parameters: []Parameter{
					{Header: Header{Name: "P_DEPT"}, In: true, Type: Number{}},
				},
				Query: "SELECT * FROM EMP WHERE DEPT = P_DEPT",
			},
			Exception{Header: Header{Name: "E_BAD"}},
			ExceptionInit{
				Header:    Header{Name: "EXCEPTION_INIT"},
				Exception: "E_BAD",
				Code:      -20001,
			},
			Function{
				Header: Header{
					Name: "FIND",
					Annotations: []Annotation{
						{
							Name: "API",
							Parameters: map[string]any{
								"VERSION": json.Number("2"),
								"TAGS":    []any{"x"},
							},
						},
					},
				},
				Parameters: []Parameter{
					{
						Header: Header{Name: "P_ID"},
						In:     true,
						Out:    true,
						NoCopy: true,
						Type:   ReferenceType{Reference: []string{"EMP", "ID"}, Modifier: "TYPE"},
					},
					{
						Header:  Header{Name: "P_WHEN"},
						In:      true,
						Type:    IntervalDS{DayPrecision: intp(2), SecondPrecision: intp(3)},
						Default: "SYSDATE + 1",
					},
				},
				Return:     SimpleType{Name: "BOOLEAN"},
				Directives: Directives{Pipelined: true},
			},
		},
	}

	actual, err := BuildPackage(root)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(expect, actual)
}

func Test_BuildPackage_types(t *testing.T) {
	src := `PACKAGE p IS
  TYPE t_rec IS RECORD (id NUMBER NOT NULL := 1, name emp.name%TYPE);
  TYPE t_tab IS TABLE OF t_rec INDEX BY PLS_INTEGER;
  TYPE t_list IS TABLE OF VARCHAR2(30);
  SUBTYPE t_code IS CHAR(3 CHAR) NOT NULL;
  PRAGMA RESTRICT_REFERENCES(DEFAULT, WNDS);
END;`

	assert := assert.New(t)

	root, err := plsql.ParsePackageString(src)
	if !assert.NoError(err) {
		return
	}

	expect := []Declaration{
		RecordType{
			Header: Header{Name: "T_REC"},
			Fields: []Field{
				{Header: Header{Name: "ID"}, Type: Number{}, NotNull: true, Default: "1"},
				{Header: Header{Name: "NAME"}, Type: ReferenceType{Reference: []string{"EMP", "NAME"}, Modifier: "TYPE"}},
			},
		},
		AssociativeArrayType{
			Header:  Header{Name: "T_TAB"},
			Element: ReferenceType{Reference: []string{"T_REC"}},
			Index:   SimpleType{Name: "PLS_INTEGER"},
		},
		NestedTableType{
			Header:  Header{Name: "T_LIST"},
			Element: CharacterType{Name: "VARCHAR2", Size: intp(30)},
		},
		Subtype{
			Header:  Header{Name: "T_CODE"},
			Base:    CharacterType{Name: "CHAR", Size: intp(3), Semantics: "CHAR"},
			NotNull: true,
		},
		GenericPragma{
			Header:    Header{Name: "RESTRICT_REFERENCES"},
			Arguments: "DEFAULT,WNDS",
		},
	}

	actual, err := BuildPackage(root)
	if !assert.NoError(err) {
		return
	}

	assert.Equal("P", actual.Name)
	assert.Equal("", actual.Schema)
	assert.Equal(Definer, actual.Authid)
	assert.Equal(expect, actual.Declarations)
}

func Test_BuildPackage_errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  *tree.Node
		expect string
	}{
		{
			name:   "nil tree",
			input:  nil,
			expect: "malformed PACKAGE node: tree is empty",
		},
		{
			name:   "no name",
			input:  node("PACKAGE", node("DECLARATIONS")),
			expect: "malformed PACKAGE node: no PACKAGE_NAME child",
		},
		{
			name: "no declarations",
			input: node("PACKAGE",
				node("PACKAGE_NAME", node("PART2", node("P"))),
			),
			expect: "malformed PACKAGE node: no DECLARATIONS child",
		},
		{
			name: "unknown declaration",
			input: node("PACKAGE",
				node("PACKAGE_NAME", node("PART2", node("P"))),
				node("DECLARATIONS", node("WIDGET")),
			),
			expect: "malformed WIDGET node: not a declaration",
		},
		{
			name: "variable without a type",
			input: node("PACKAGE",
				node("PACKAGE_NAME", node("PART2", node("P"))),
				node("DECLARATIONS",
					node("VARIABLE", node("VARIABLE_NAME", node("X"))),
				),
			),
			expect: "malformed VARIABLE node: no VARIABLE_TYPE child",
		},
		{
			name: "bad varray size",
			input: node("PACKAGE",
				node("PACKAGE_NAME", node("PART2", node("P"))),
				node("DECLARATIONS",
					node("TYPE",
						node("TYPE_NAME", node("T")),
						node("TYPE_DECLARATION",
							node("VARRAY_TYPE", node("ten")),
						),
					),
				),
			),
			expect: `malformed VARRAY_TYPE node: "ten" is not an integer`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := BuildPackage(tc.input)

			var buildErr *BuildError
			assert.ErrorAs(err, &buildErr)
			assert.EqualError(err, tc.expect)
		})
	}
}

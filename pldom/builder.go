package pldom

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/simplegrammar/tree"
)

// BuildError is returned when a syntax tree does not have the shape produced
// by the plsql grammar.
type BuildError struct {
	// Node is the label of the node being built.
	Node string

	// Missing is the label of the child that Node was expected to have. It is
	// empty if the problem is something else.
	Missing string

	Detail string
}

func (e *BuildError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("malformed %s node: no %s child", e.Node, e.Missing)
	}
	return fmt.Sprintf("malformed %s node: %s", e.Node, e.Detail)
}

func missing(n *tree.Node, label string) error {
	return &BuildError{Node: n.Label, Missing: label}
}

func malformed(n *tree.Node, format string, a ...interface{}) error {
	return &BuildError{Node: n.Label, Detail: fmt.Sprintf(format, a...)}
}

func child(n *tree.Node, label string) (*tree.Node, error) {
	c := n.ChildLabelled(label)
	if c == nil {
		return nil, missing(n, label)
	}
	return c, nil
}

// childValue returns the label of the first child of n's child with the given
// label, which is how names are held in the tree.
func childValue(n *tree.Node, label string) (string, error) {
	c, err := child(n, label)
	if err != nil {
		return "", err
	}
	if c.Len() < 1 {
		return "", malformed(c, "no value")
	}
	return c.ChildValue(0), nil
}

func atoi(n *tree.Node, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, malformed(n, "%q is not an integer", s)
	}
	return v, nil
}

// optionalInt returns the integer held in the i-th child of n, or nil if n
// does not have that many children.
func optionalInt(n *tree.Node, i int) (*int, error) {
	if n == nil || n.Len() <= i {
		return nil, nil
	}
	v, err := atoi(n, n.ChildValue(i))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// BuildPackage builds the Package described by a syntax tree produced by the
// plsql package grammar.
func BuildPackage(root *tree.Node) (Package, error) {
	var pkg Package
	if root == nil {
		return pkg, &BuildError{Node: "PACKAGE", Detail: "tree is empty"}
	}

	nameNode, err := child(root, "PACKAGE_NAME")
	if err != nil {
		return pkg, err
	}
	if pkg.Name, err = childValue(nameNode, "PART2"); err != nil {
		return pkg, err
	}
	if nameNode.ChildLabelled("PART1") != nil {
		if pkg.Schema, err = childValue(nameNode, "PART1"); err != nil {
			return pkg, err
		}
	}

	pkg.Authid = Definer
	if authid := root.ChildLabelled("AUTHID"); authid != nil {
		pkg.Authid = Authid(authid.ChildValue(0))
	}

	decls, err := child(root, "DECLARATIONS")
	if err != nil {
		return pkg, err
	}
	for _, declNode := range decls.Children {
		decl, err := buildDeclaration(declNode)
		if err != nil {
			return pkg, err
		}
		pkg.Declarations = append(pkg.Declarations, decl)
	}

	return pkg, nil
}

func buildDeclaration(n *tree.Node) (Declaration, error) {
	switch n.Label {
	case "PROCEDURE":
		return buildProcedure(n)
	case "FUNCTION":
		return buildFunction(n)
	case "VARIABLE":
		return buildVariable(n)
	case "CONSTANT":
		return buildConstant(n)
	case "TYPE":
		return buildType(n)
	case "SUBTYPE":
		return buildSubtype(n)
	case "CURSOR":
		return buildCursor(n)
	case "EXCEPTION":
		return buildException(n)
	case "PACKAGE_PRAGMA":
		return buildPragma(n)
	default:
		return nil, malformed(n, "not a declaration")
	}
}

// buildHeader reads the name held under nameLabel along with the
// documentation and annotations of n.
func buildHeader(n *tree.Node, nameLabel string) (Header, error) {
	var h Header
	var err error

	if nameLabel != "" {
		if h.Name, err = childValue(n, nameLabel); err != nil {
			return h, err
		}
	}

	h.Documentation, h.Annotations, err = buildPrelude(n.ChildLabelled("ANNOTATIONS"))
	return h, err
}

func buildPrelude(n *tree.Node) ([]string, []Annotation, error) {
	var docs []string
	var annotations []Annotation

	for _, c := range n.ChildrenLabelled("DOCUMENTATION", "ANNOTATION") {
		if c.Label == "DOCUMENTATION" {
			docs = append(docs, strings.TrimSpace(c.ChildValue(0)))
			continue
		}

		a, err := buildAnnotation(c)
		if err != nil {
			return nil, nil, err
		}
		annotations = append(annotations, a)
	}

	return docs, annotations, nil
}

func buildAnnotation(n *tree.Node) (Annotation, error) {
	var a Annotation
	var err error

	if a.Name, err = childValue(n, "ANNOTATION_NAME"); err != nil {
		return a, err
	}

	params, err := child(n, "ANNOTATION_PARAMETERS")
	if err != nil {
		return a, err
	}
	for _, p := range params.Children {
		if nested := p.ChildLabelled("ANNOTATION"); nested != nil {
			na, err := buildAnnotation(nested)
			if err != nil {
				return a, err
			}
			a.Annotations = append(a.Annotations, na)
			continue
		}

		name, err := childValue(p, "ANNOTATION_PARAMETER_NAME")
		if err != nil {
			return a, err
		}
		valueNode, err := child(p, "ANNOTATION_PARAMETER_VALUE")
		if err != nil {
			return a, err
		}
		kindNode := valueNode.Child(0)
		if kindNode == nil {
			return a, malformed(valueNode, "no value")
		}

		var value any
		switch kindNode.Label {
		case "ANNOTATION_SIMPLE_VALUE":
			value, err = buildAnnotationLiteral(kindNode.Child(0))
		case "ANNOTATION_ARRAY_VALUE":
			elements := []any{}
			for _, e := range kindNode.Children {
				var ev any
				if ev, err = buildAnnotationLiteral(e); err != nil {
					break
				}
				elements = append(elements, ev)
			}
			value = elements
		default:
			err = malformed(kindNode, "not an annotation value")
		}
		if err != nil {
			return a, err
		}

		if a.Parameters == nil {
			a.Parameters = map[string]any{}
		}
		a.Parameters[name] = value
	}

	return a, nil
}

func buildAnnotationLiteral(n *tree.Node) (any, error) {
	if n == nil {
		return nil, &BuildError{Node: "ANNOTATION_SIMPLE_VALUE", Detail: "no value"}
	}

	v := n.ChildValue(0)
	switch n.Label {
	case "ANNOTATION_STRING_LITERAL":
		return v, nil
	case "ANNOTATION_BOOLEAN_LITERAL":
		return v == "TRUE", nil
	case "ANNOTATION_NUMBER_LITERAL":
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return nil, malformed(n, "%q is not a number", v)
		}
		return json.Number(v), nil
	default:
		return nil, malformed(n, "not an annotation literal")
	}
}

// buildDataType builds the data type held in n, which is one of the nodes
// that wrap a type: PARAMETER_TYPE, VARIABLE_TYPE, INDEX_BY, or a return
// clause.
func buildDataType(n *tree.Node) (DataType, error) {
	typeNode := n.Child(0)
	if typeNode == nil {
		return nil, malformed(n, "no type")
	}

	switch typeNode.Label {
	case "SIMPLE_PARAMETER_TYPE", "SIMPLE_VARIABLE_TYPE", "INDEX_BY_TYPE":
		return buildSimpleType(typeNode.Child(0))
	case "REFERENCE_TYPE":
		return buildReferenceType(typeNode)
	default:
		return nil, malformed(typeNode, "not a data type")
	}
}

func buildSimpleType(n *tree.Node) (DataType, error) {
	if n == nil {
		return nil, &BuildError{Node: "SIMPLE_TYPE", Detail: "no type"}
	}

	// types without arguments are held as bare values
	if n.IsLeaf() {
		switch n.Label {
		case "VARCHAR2", "NVARCHAR2", "VARCHAR", "CHAR", "NCHAR":
			return CharacterType{Name: n.Label}, nil
		case "NUMBER":
			return Number{}, nil
		case "FLOAT":
			return Float{}, nil
		case "RAW":
			return Raw{}, nil
		case "UROWID":
			return URowID{}, nil
		case "TIMESTAMP":
			return Timestamp{}, nil
		case "INTERVAL_YM":
			return IntervalYM{}, nil
		case "INTERVAL_DS":
			return IntervalDS{}, nil
		}
		return SimpleType{Name: n.Label}, nil
	}

	var err error
	switch n.Label {
	case "VARCHAR2", "NVARCHAR2", "VARCHAR", "CHAR", "NCHAR":
		t := CharacterType{Name: n.Label}
		size := n.ChildLabelled("CHARACTER_TYPE_SIZE")
		if t.Size, err = optionalInt(size, 0); err != nil {
			return nil, err
		}
		if size.Len() > 1 {
			t.Semantics = size.ChildValue(1)
		}
		return t, nil
	case "NUMBER":
		var t Number
		if t.Precision, err = optionalInt(n, 0); err != nil {
			return nil, err
		}
		if t.Scale, err = optionalInt(n, 1); err != nil {
			return nil, err
		}
		return t, nil
	case "FLOAT":
		var t Float
		t.Precision, err = optionalInt(n, 0)
		return t, err
	case "RAW":
		var t Raw
		t.Size, err = optionalInt(n, 0)
		return t, err
	case "UROWID":
		var t URowID
		t.Size, err = optionalInt(n, 0)
		return t, err
	case "TIMESTAMP":
		var t Timestamp
		if t.Precision, err = optionalInt(n.ChildLabelled("TIMESTAMP_PRECISION"), 0); err != nil {
			return nil, err
		}
		if tz := n.ChildLabelled("TZ"); tz != nil {
			t.WithTimeZone = true
			t.Local = tz.ChildLabelled("LTZ") != nil
		}
		return t, nil
	case "INTERVAL_YM":
		var t IntervalYM
		t.YearPrecision, err = optionalInt(n.ChildLabelled("YEAR_PRECISION"), 0)
		return t, err
	case "INTERVAL_DS":
		var t IntervalDS
		if t.DayPrecision, err = optionalInt(n.ChildLabelled("DAY_PRECISION"), 0); err != nil {
			return nil, err
		}
		t.SecondPrecision, err = optionalInt(n.ChildLabelled("SECOND_PRECISION"), 0)
		return t, err
	default:
		return nil, malformed(n, "not a data type")
	}
}

func buildReferenceType(n *tree.Node) (DataType, error) {
	ref, err := child(n, "REFERENCE")
	if err != nil {
		return nil, err
	}

	t := ReferenceType{Reference: ref.ChildValues()}
	if mod := n.ChildLabelled("TYPE_MODIFIER"); mod != nil {
		t.Modifier = mod.ChildValue(0)
	}
	return t, nil
}

func buildParameters(n *tree.Node) ([]Parameter, error) {
	var params []Parameter

	for _, pn := range n.ChildrenLabelled("PARAMETER") {
		var p Parameter
		var err error

		if p.Header, err = buildHeader(pn, "PARAMETER_NAME"); err != nil {
			return nil, err
		}

		if dir := pn.ChildLabelled("PARAMETER_DIRECTION"); dir != nil {
			for _, v := range dir.ChildValues() {
				switch v {
				case "IN":
					p.In = true
				case "OUT":
					p.Out = true
				case "NOCOPY":
					p.NoCopy = true
				}
			}
		} else {
			p.In = true
		}

		typeNode, err := child(pn, "PARAMETER_TYPE")
		if err != nil {
			return nil, err
		}
		if p.Type, err = buildDataType(typeNode); err != nil {
			return nil, err
		}

		if def := pn.ChildLabelled("PARAMETER_DEFAULT"); def != nil {
			p.Default = SerializeTokens(def)
		}

		params = append(params, p)
	}

	return params, nil
}

func buildProcedure(n *tree.Node) (Declaration, error) {
	var d Procedure
	var err error

	if d.Header, err = buildHeader(n, "SUBPROGRAM_NAME"); err != nil {
		return nil, err
	}
	if d.Parameters, err = buildParameters(n.ChildLabelled("PARAMETERS")); err != nil {
		return nil, err
	}
	return d, nil
}

func buildFunction(n *tree.Node) (Declaration, error) {
	var d Function
	var err error

	if d.Header, err = buildHeader(n, "SUBPROGRAM_NAME"); err != nil {
		return nil, err
	}
	if d.Parameters, err = buildParameters(n.ChildLabelled("PARAMETERS")); err != nil {
		return nil, err
	}

	ret, err := child(n, "FUNCTION_RETURN")
	if err != nil {
		return nil, err
	}
	retType, err := child(ret, "PARAMETER_TYPE")
	if err != nil {
		return nil, err
	}
	if d.Return, err = buildDataType(retType); err != nil {
		return nil, err
	}
	if _, d.ReturnAnnotations, err = buildPrelude(ret.ChildLabelled("ANNOTATIONS")); err != nil {
		return nil, err
	}

	for _, v := range n.ChildLabelled("DIRECTIVES").ChildValues() {
		switch v {
		case "PIPELINED":
			d.Directives.Pipelined = true
		case "DETERMINISTIC":
			d.Directives.Deterministic = true
		case "PARALLEL_ENABLE":
			d.Directives.ParallelEnable = true
		case "RESULT_CACHE":
			d.Directives.ResultCache = true
		}
	}

	return d, nil
}

func buildVariable(n *tree.Node) (Declaration, error) {
	var d Variable
	var err error

	if d.Header, err = buildHeader(n, "VARIABLE_NAME"); err != nil {
		return nil, err
	}
	typeNode, err := child(n, "VARIABLE_TYPE")
	if err != nil {
		return nil, err
	}
	if d.Type, err = buildDataType(typeNode); err != nil {
		return nil, err
	}
	d.NotNull = n.ChildLabelled("NOT_NULL") != nil

	if value := n.ChildLabelled("VARIABLE_VALUE"); value != nil {
		expr, err := child(value, "EXPRESSION")
		if err != nil {
			return nil, err
		}
		d.Value = SerializeTokens(expr)
	}

	return d, nil
}

func buildConstant(n *tree.Node) (Declaration, error) {
	var d Constant
	var err error

	if d.Header, err = buildHeader(n, "VARIABLE_NAME"); err != nil {
		return nil, err
	}
	typeNode, err := child(n, "VARIABLE_TYPE")
	if err != nil {
		return nil, err
	}
	if d.Type, err = buildDataType(typeNode); err != nil {
		return nil, err
	}
	d.NotNull = n.ChildLabelled("NOT_NULL") != nil

	expr, err := child(n, "EXPRESSION")
	if err != nil {
		return nil, err
	}
	d.Value = SerializeTokens(expr)

	return d, nil
}

// buildElement reads the element type and NOT NULL constraint of a
// collection type.
func buildElement(n *tree.Node) (DataType, bool, error) {
	typeNode, err := child(n, "VARIABLE_TYPE")
	if err != nil {
		return nil, false, err
	}
	dt, err := buildDataType(typeNode)
	if err != nil {
		return nil, false, err
	}
	return dt, n.ChildLabelled("NOT_NULL") != nil, nil
}

func buildType(n *tree.Node) (Declaration, error) {
	h, err := buildHeader(n, "TYPE_NAME")
	if err != nil {
		return nil, err
	}

	declNode, err := child(n, "TYPE_DECLARATION")
	if err != nil {
		return nil, err
	}
	tn := declNode.Child(0)
	if tn == nil {
		return nil, malformed(declNode, "no type")
	}

	switch tn.Label {
	case "RECORD_TYPE":
		d := RecordType{Header: h}
		for _, fn := range tn.ChildrenLabelled("RECORD_FIELD") {
			var f Field
			if f.Header, err = buildHeader(fn, "FIELD_NAME"); err != nil {
				return nil, err
			}
			if f.Type, f.NotNull, err = buildElement(fn); err != nil {
				return nil, err
			}
			if def := fn.ChildLabelled("FIELD_DEFAULT"); def != nil {
				f.Default = SerializeTokens(def)
			}
			d.Fields = append(d.Fields, f)
		}
		return d, nil
	case "NESTED_TABLE_TYPE":
		d := NestedTableType{Header: h}
		if d.Element, d.NotNull, err = buildElement(tn); err != nil {
			return nil, err
		}
		return d, nil
	case "ASSOCIATIVE_ARRAY_TYPE":
		d := AssociativeArrayType{Header: h}
		if d.Element, d.NotNull, err = buildElement(tn); err != nil {
			return nil, err
		}
		index, err := child(tn, "INDEX_BY")
		if err != nil {
			return nil, err
		}
		if d.Index, err = buildDataType(index); err != nil {
			return nil, err
		}
		return d, nil
	case "VARRAY_TYPE":
		d := VArrayType{Header: h}
		if d.Size, err = atoi(tn, tn.ChildValue(0)); err != nil {
			return nil, err
		}
		if d.Element, d.NotNull, err = buildElement(tn); err != nil {
			return nil, err
		}
		return d, nil
	case "REF_CURSOR_TYPE":
		d := RefCursorType{Header: h}
		if ret := tn.ChildLabelled("REF_CURSOR_RETURN"); ret != nil {
			if d.Return, err = buildDataType(ret); err != nil {
				return nil, err
			}
		}
		return d, nil
	default:
		return nil, malformed(tn, "not a type declaration")
	}
}

func buildSubtype(n *tree.Node) (Declaration, error) {
	var d Subtype
	var err error

	if d.Header, err = buildHeader(n, "TYPE_NAME"); err != nil {
		return nil, err
	}
	if d.Base, d.NotNull, err = buildElement(n); err != nil {
		return nil, err
	}
	return d, nil
}

func buildCursor(n *tree.Node) (Declaration, error) {
	var d Cursor
	var err error

	if d.Header, err = buildHeader(n, "CURSOR_NAME"); err != nil {
		return nil, err
	}
	if d.Parameters, err = buildParameters(n.ChildLabelled("PARAMETERS")); err != nil {
		return nil, err
	}
	if ret := n.ChildLabelled("CURSOR_RETURN"); ret != nil {
		if d.Return, err = buildDataType(ret); err != nil {
			return nil, err
		}
	}
	if query := n.ChildLabelled("CURSOR_QUERY"); query != nil {
		d.Query = SerializeTokens(query)
	}
	return d, nil
}

func buildException(n *tree.Node) (Declaration, error) {
	var d Exception
	var err error

	if d.Header, err = buildHeader(n, "EXCEPTION_NAME"); err != nil {
		return nil, err
	}
	return d, nil
}

func buildPragma(n *tree.Node) (Declaration, error) {
	h, err := buildHeader(n, "")
	if err != nil {
		return nil, err
	}

	var pn *tree.Node
	for _, c := range n.Children {
		if c.Label != "ANNOTATIONS" {
			pn = c
			break
		}
	}
	if pn == nil {
		return nil, malformed(n, "no pragma")
	}

	switch pn.Label {
	case "EXCEPTION_INIT":
		d := ExceptionInit{Header: h}
		d.Name = "EXCEPTION_INIT"
		if d.Exception, err = childValue(pn, "EXCEPTION_INIT_EXCEPTION"); err != nil {
			return nil, err
		}
		code, err := child(pn, "EXCEPTION_INIT_CODE")
		if err != nil {
			return nil, err
		}
		if d.Code, err = atoi(code, strings.Join(code.ChildValues(), "")); err != nil {
			return nil, err
		}
		return d, nil
	case "GENERIC_PRAGMA":
		d := GenericPragma{Header: h}
		d.Name = pn.ChildValue(0)
		if args := pn.ChildLabelled("PRAGMA_ARGUMENTS"); args != nil {
			d.Arguments = SerializeTokens(args)
		}
		return d, nil
	default:
		return nil, malformed(pn, "not a pragma")
	}
}

// Package pldom builds a document object model of a PL/SQL package
// specification from the syntax tree produced by the plsql grammar.
package pldom

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Authid is the rights model a package's subprograms run with.
type Authid string

const (
	Definer     Authid = "DEFINER"
	CurrentUser Authid = "CURRENT_USER"
)

// Package is a PL/SQL package specification.
type Package struct {
	Name         string        `json:"name"`
	Schema       string        `json:"schema,omitempty"`
	Authid       Authid        `json:"authid"`
	Declarations []Declaration `json:"declarations"`
}

// Declaration is one of the items declared in a package. It is implemented
// only by the declaration types of this package.
type Declaration interface {
	Kind() DeclarationKind
	Head() Header
}

// DeclarationKind identifies the type of a Declaration.
type DeclarationKind string

const (
	KindProcedure            DeclarationKind = "PROCEDURE"
	KindFunction             DeclarationKind = "FUNCTION"
	KindVariable             DeclarationKind = "VARIABLE"
	KindConstant             DeclarationKind = "CONSTANT"
	KindRecordType           DeclarationKind = "RECORD_TYPE"
	KindNestedTableType      DeclarationKind = "NESTED_TABLE_TYPE"
	KindAssociativeArrayType DeclarationKind = "ASSOCIATIVE_ARRAY_TYPE"
	KindVArrayType           DeclarationKind = "VARRAY_TYPE"
	KindRefCursorType        DeclarationKind = "REF_CURSOR_TYPE"
	KindSubtype              DeclarationKind = "SUBTYPE"
	KindCursor               DeclarationKind = "CURSOR"
	KindException            DeclarationKind = "EXCEPTION"
	KindExceptionInit        DeclarationKind = "EXCEPTION_INIT"
	KindPragma               DeclarationKind = "PRAGMA"
)

// Header holds what every declaration has: a name and the documentation
// comments and annotations written before it.
type Header struct {
	Name          string       `json:"name"`
	Documentation []string     `json:"documentation,omitempty"`
	Annotations   []Annotation `json:"annotations,omitempty"`
}

// Head returns h. It is promoted to every type that embeds a Header.
func (h Header) Head() Header {
	return h
}

// Annotation is an annotation such as @Name(key = "value") written in a
// comment. Parameter values are string, bool, json.Number, or []any holding
// those.
type Annotation struct {
	Name        string         `json:"name"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Annotations []Annotation   `json:"annotations,omitempty"`
}

// Parameter is a parameter of a procedure, function, or cursor.
type Parameter struct {
	Header
	In      bool     `json:"in"`
	Out     bool     `json:"out"`
	NoCopy  bool     `json:"nocopy"`
	Type    DataType `json:"type"`
	Default string   `json:"default,omitempty"`
}

func (p Parameter) String() string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	if p.Out {
		if p.In {
			sb.WriteString(" IN")
		}
		sb.WriteString(" OUT")
		if p.NoCopy {
			sb.WriteString(" NOCOPY")
		}
	}
	sb.WriteString(" ")
	sb.WriteString(p.Type.String())
	if p.Default != "" {
		sb.WriteString(" := ")
		sb.WriteString(p.Default)
	}
	return sb.String()
}

// Directives are the optional clauses after a function's return type.
type Directives struct {
	Pipelined      bool `json:"pipelined,omitempty"`
	Deterministic  bool `json:"deterministic,omitempty"`
	ParallelEnable bool `json:"parallel_enable,omitempty"`
	ResultCache    bool `json:"result_cache,omitempty"`
}

type Procedure struct {
	Header
	Parameters []Parameter `json:"parameters,omitempty"`
}

type Function struct {
	Header
	Parameters        []Parameter  `json:"parameters,omitempty"`
	Return            DataType     `json:"return"`
	ReturnAnnotations []Annotation `json:"return_annotations,omitempty"`
	Directives        Directives   `json:"directives"`
}

type Variable struct {
	Header
	Type    DataType `json:"type"`
	NotNull bool     `json:"not_null,omitempty"`
	Value   string   `json:"value,omitempty"`
}

type Constant struct {
	Header
	Type    DataType `json:"type"`
	NotNull bool     `json:"not_null,omitempty"`
	Value   string   `json:"value"`
}

// Field is a field of a record type.
type Field struct {
	Header
	Type    DataType `json:"type"`
	NotNull bool     `json:"not_null,omitempty"`
	Default string   `json:"default,omitempty"`
}

type RecordType struct {
	Header
	Fields []Field `json:"fields"`
}

type NestedTableType struct {
	Header
	Element DataType `json:"element"`
	NotNull bool     `json:"not_null,omitempty"`
}

type AssociativeArrayType struct {
	Header
	Element DataType `json:"element"`
	NotNull bool     `json:"not_null,omitempty"`
	Index   DataType `json:"index"`
}

type VArrayType struct {
	Header
	Size    int      `json:"size"`
	Element DataType `json:"element"`
	NotNull bool     `json:"not_null,omitempty"`
}

// RefCursorType is a REF CURSOR type. Return is nil for a weak ref cursor.
type RefCursorType struct {
	Header
	Return DataType `json:"return,omitempty"`
}

type Subtype struct {
	Header
	Base    DataType `json:"base"`
	NotNull bool     `json:"not_null,omitempty"`
}

type Cursor struct {
	Header
	Parameters []Parameter `json:"parameters,omitempty"`
	Return     DataType    `json:"return,omitempty"`
	Query      string      `json:"query,omitempty"`
}

type Exception struct {
	Header
}

// ExceptionInit is PRAGMA EXCEPTION_INIT associating an exception with an
// error code. Its Name is always EXCEPTION_INIT.
type ExceptionInit struct {
	Header
	Exception string `json:"exception"`
	Code      int    `json:"code"`
}

// GenericPragma is any pragma other than EXCEPTION_INIT. Arguments holds the
// text of its argument list, if it has one.
type GenericPragma struct {
	Header
	Arguments string `json:"arguments,omitempty"`
}

func (Procedure) Kind() DeclarationKind            { return KindProcedure }
func (Function) Kind() DeclarationKind             { return KindFunction }
func (Variable) Kind() DeclarationKind             { return KindVariable }
func (Constant) Kind() DeclarationKind             { return KindConstant }
func (RecordType) Kind() DeclarationKind           { return KindRecordType }
func (NestedTableType) Kind() DeclarationKind      { return KindNestedTableType }
func (AssociativeArrayType) Kind() DeclarationKind { return KindAssociativeArrayType }
func (VArrayType) Kind() DeclarationKind           { return KindVArrayType }
func (RefCursorType) Kind() DeclarationKind        { return KindRefCursorType }
func (Subtype) Kind() DeclarationKind              { return KindSubtype }
func (Cursor) Kind() DeclarationKind               { return KindCursor }
func (Exception) Kind() DeclarationKind            { return KindException }
func (ExceptionInit) Kind() DeclarationKind        { return KindExceptionInit }
func (GenericPragma) Kind() DeclarationKind        { return KindPragma }

// withKind marshals v with an added "kind" member. v must be a struct whose
// type has no MarshalJSON method.
func withKind(kind string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	kindData, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}

	out := []byte(`{"kind":`)
	out = append(out, kindData...)
	if len(data) > 2 {
		out = append(out, ',')
	}
	return append(out, data[1:]...), nil
}

func (d Procedure) MarshalJSON() ([]byte, error) {
	type plain Procedure
	return withKind(string(KindProcedure), plain(d))
}

func (d Function) MarshalJSON() ([]byte, error) {
	type plain Function
	return withKind(string(KindFunction), plain(d))
}

func (d Variable) MarshalJSON() ([]byte, error) {
	type plain Variable
	return withKind(string(KindVariable), plain(d))
}

func (d Constant) MarshalJSON() ([]byte, error) {
	type plain Constant
	return withKind(string(KindConstant), plain(d))
}

func (d RecordType) MarshalJSON() ([]byte, error) {
	type plain RecordType
	return withKind(string(KindRecordType), plain(d))
}

func (d NestedTableType) MarshalJSON() ([]byte, error) {
	type plain NestedTableType
	return withKind(string(KindNestedTableType), plain(d))
}

func (d AssociativeArrayType) MarshalJSON() ([]byte, error) {
	type plain AssociativeArrayType
	return withKind(string(KindAssociativeArrayType), plain(d))
}

func (d VArrayType) MarshalJSON() ([]byte, error) {
	type plain VArrayType
	return withKind(string(KindVArrayType), plain(d))
}

func (d RefCursorType) MarshalJSON() ([]byte, error) {
	type plain RefCursorType
	return withKind(string(KindRefCursorType), plain(d))
}

func (d Subtype) MarshalJSON() ([]byte, error) {
	type plain Subtype
	return withKind(string(KindSubtype), plain(d))
}

func (d Cursor) MarshalJSON() ([]byte, error) {
	type plain Cursor
	return withKind(string(KindCursor), plain(d))
}

func (d Exception) MarshalJSON() ([]byte, error) {
	type plain Exception
	return withKind(string(KindException), plain(d))
}

func (d ExceptionInit) MarshalJSON() ([]byte, error) {
	type plain ExceptionInit
	return withKind(string(KindExceptionInit), plain(d))
}

func (d GenericPragma) MarshalJSON() ([]byte, error) {
	type plain GenericPragma
	return withKind(string(KindPragma), plain(d))
}

// DataType is the type of a parameter, variable, field, or function return.
// It is implemented only by the data types of this package; String gives the
// type as it would be written in PL/SQL.
type DataType interface {
	fmt.Stringer
	dataType()
}

// CharacterType is VARCHAR2, NVARCHAR2, VARCHAR, CHAR, or NCHAR. Semantics
// is BYTE, CHAR, or empty when not given.
type CharacterType struct {
	Name      string `json:"name"`
	Size      *int   `json:"size,omitempty"`
	Semantics string `json:"semantics,omitempty"`
}

type Number struct {
	Precision *int `json:"precision,omitempty"`
	Scale     *int `json:"scale,omitempty"`
}

type Float struct {
	Precision *int `json:"precision,omitempty"`
}

// Timestamp is TIMESTAMP, optionally WITH [LOCAL] TIME ZONE.
type Timestamp struct {
	Precision    *int `json:"precision,omitempty"`
	WithTimeZone bool `json:"with_time_zone,omitempty"`
	Local        bool `json:"local,omitempty"`
}

// IntervalYM is INTERVAL YEAR TO MONTH.
type IntervalYM struct {
	YearPrecision *int `json:"year_precision,omitempty"`
}

// IntervalDS is INTERVAL DAY TO SECOND.
type IntervalDS struct {
	DayPrecision    *int `json:"day_precision,omitempty"`
	SecondPrecision *int `json:"second_precision,omitempty"`
}

type Raw struct {
	Size *int `json:"size,omitempty"`
}

type URowID struct {
	Size *int `json:"size,omitempty"`
}

// SimpleType is a built-in type that takes no arguments, such as DATE or
// PLS_INTEGER.
type SimpleType struct {
	Name string `json:"name"`
}

// ReferenceType names another type, optionally through %TYPE or %ROWTYPE.
// Modifier is TYPE, ROWTYPE, or empty.
type ReferenceType struct {
	Reference []string `json:"reference"`
	Modifier  string   `json:"modifier,omitempty"`
}

func (CharacterType) dataType() {}
func (Number) dataType()        {}
func (Float) dataType()         {}
func (Timestamp) dataType()     {}
func (IntervalYM) dataType()    {}
func (IntervalDS) dataType()    {}
func (Raw) dataType()           {}
func (URowID) dataType()        {}
func (SimpleType) dataType()    {}
func (ReferenceType) dataType() {}

func sized(name string, size *int) string {
	if size == nil {
		return name
	}
	return fmt.Sprintf("%s(%d)", name, *size)
}

func (t CharacterType) String() string {
	if t.Size == nil {
		return t.Name
	}
	if t.Semantics != "" {
		return fmt.Sprintf("%s(%d %s)", t.Name, *t.Size, t.Semantics)
	}
	return sized(t.Name, t.Size)
}

func (t Number) String() string {
	if t.Precision != nil && t.Scale != nil {
		return fmt.Sprintf("NUMBER(%d,%d)", *t.Precision, *t.Scale)
	}
	return sized("NUMBER", t.Precision)
}

func (t Float) String() string {
	return sized("FLOAT", t.Precision)
}

func (t Timestamp) String() string {
	s := sized("TIMESTAMP", t.Precision)
	if t.WithTimeZone {
		if t.Local {
			return s + " WITH LOCAL TIME ZONE"
		}
		return s + " WITH TIME ZONE"
	}
	return s
}

func (t IntervalYM) String() string {
	return sized("INTERVAL YEAR", t.YearPrecision) + " TO MONTH"
}

func (t IntervalDS) String() string {
	return sized("INTERVAL DAY", t.DayPrecision) + " TO " + sized("SECOND", t.SecondPrecision)
}

func (t Raw) String() string {
	return sized("RAW", t.Size)
}

func (t URowID) String() string {
	return sized("UROWID", t.Size)
}

func (t SimpleType) String() string {
	return t.Name
}

func (t ReferenceType) String() string {
	s := strings.Join(t.Reference, ".")
	if t.Modifier != "" {
		s += "%" + t.Modifier
	}
	return s
}

func (t CharacterType) MarshalJSON() ([]byte, error) {
	type plain CharacterType
	return withKind("CHARACTER", plain(t))
}

func (t Number) MarshalJSON() ([]byte, error) {
	type plain Number
	return withKind("NUMBER", plain(t))
}

func (t Float) MarshalJSON() ([]byte, error) {
	type plain Float
	return withKind("FLOAT", plain(t))
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	type plain Timestamp
	return withKind("TIMESTAMP", plain(t))
}

func (t IntervalYM) MarshalJSON() ([]byte, error) {
	type plain IntervalYM
	return withKind("INTERVAL_YM", plain(t))
}

func (t IntervalDS) MarshalJSON() ([]byte, error) {
	type plain IntervalDS
	return withKind("INTERVAL_DS", plain(t))
}

func (t Raw) MarshalJSON() ([]byte, error) {
	type plain Raw
	return withKind("RAW", plain(t))
}

func (t URowID) MarshalJSON() ([]byte, error) {
	type plain URowID
	return withKind("UROWID", plain(t))
}

func (t SimpleType) MarshalJSON() ([]byte, error) {
	type plain SimpleType
	return withKind("SIMPLE", plain(t))
}

func (t ReferenceType) MarshalJSON() ([]byte, error) {
	type plain ReferenceType
	return withKind("REFERENCE", plain(t))
}

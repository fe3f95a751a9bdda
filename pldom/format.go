package pldom

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

func parameterList(params []Parameter) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i := range params {
		parts[i] = params[i].String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func notNull(nn bool) string {
	if nn {
		return " NOT NULL"
	}
	return ""
}

// Summary gives a one-line description of what d declares, without its
// name, in roughly the form it is written in PL/SQL.
func Summary(d Declaration) string {
	switch d := d.(type) {
	case Procedure:
		return parameterList(d.Parameters)
	case Function:
		s := parameterList(d.Parameters) + " RETURN " + d.Return.String()
		if d.Directives.Pipelined {
			s += " PIPELINED"
		}
		if d.Directives.Deterministic {
			s += " DETERMINISTIC"
		}
		if d.Directives.ParallelEnable {
			s += " PARALLEL_ENABLE"
		}
		if d.Directives.ResultCache {
			s += " RESULT_CACHE"
		}
		return strings.TrimSpace(s)
	case Variable:
		s := d.Type.String() + notNull(d.NotNull)
		if d.Value != "" {
			s += " := " + d.Value
		}
		return s
	case Constant:
		return "CONSTANT " + d.Type.String() + notNull(d.NotNull) + " := " + d.Value
	case RecordType:
		fields := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = f.Name + " " + f.Type.String() + notNull(f.NotNull)
		}
		return "RECORD (" + strings.Join(fields, ", ") + ")"
	case NestedTableType:
		return "TABLE OF " + d.Element.String() + notNull(d.NotNull)
	case AssociativeArrayType:
		return "TABLE OF " + d.Element.String() + notNull(d.NotNull) + " INDEX BY " + d.Index.String()
	case VArrayType:
		return fmt.Sprintf("VARRAY(%d) OF %s%s", d.Size, d.Element.String(), notNull(d.NotNull))
	case RefCursorType:
		if d.Return == nil {
			return "REF CURSOR"
		}
		return "REF CURSOR RETURN " + d.Return.String()
	case Subtype:
		return d.Base.String() + notNull(d.NotNull)
	case Cursor:
		s := parameterList(d.Parameters)
		if d.Return != nil {
			s += " RETURN " + d.Return.String()
		}
		return strings.TrimSpace(s)
	case Exception:
		return "EXCEPTION"
	case ExceptionInit:
		return fmt.Sprintf("(%s, %d)", d.Exception, d.Code)
	case GenericPragma:
		if d.Arguments == "" {
			return ""
		}
		return "(" + d.Arguments + ")"
	default:
		return ""
	}
}

// Table returns a text table of the declarations in the package, fit to the
// given width.
func (pkg Package) Table(width int) string {
	data := [][]string{{"Kind", "Name", "Declaration"}}

	for _, d := range pkg.Declarations {
		name := d.Head().Name
		if len(d.Head().Annotations) > 0 {
			anns := make([]string, len(d.Head().Annotations))
			for i, a := range d.Head().Annotations {
				anns[i] = "@" + a.Name
			}
			name += " " + strings.Join(anns, " ")
		}
		data = append(data, []string{string(d.Kind()), name, Summary(d)})
	}

	title := pkg.Name
	if pkg.Schema != "" {
		title = pkg.Schema + "." + title
	}
	title = fmt.Sprintf("Package %s (AUTHID %s)\n", title, pkg.Authid)

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	table := rosed.Edit("").
		InsertTableOpts(0, data, width, tableOpts).
		String()

	return title + table
}

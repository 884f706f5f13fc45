// Package query composes feed queries as typed predicate lists and compiles
// them to SQL. Nothing in this package touches a database.
package query

// Predicate is one boolean condition of a feed query. The concrete variants
// below are the only implementations.
type Predicate interface {
	isPredicate()
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "<>"
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Compare is `column op value`.
type Compare struct {
	Column string
	Op     Op
	Value  any
}

// ColumnCompare is `left op right` between two columns.
type ColumnCompare struct {
	Left  string
	Op    Op
	Right string
}

// IsNull is `column IS NULL`, or IS NOT NULL when Not is set.
type IsNull struct {
	Column string
	Not    bool
}

// In is `column IN (values)`. An empty value list never matches (or always
// matches when Not is set); it is never dropped.
type In struct {
	Column string
	Values []any
	Not    bool
}

// Exists is a correlated `EXISTS (SELECT 1 FROM ... WHERE ...)`.
type Exists struct {
	From  string
	Joins []Join
	Where []Predicate
	Not   bool
}

// PrefixMatch is a case-insensitive `column LIKE 'prefix%'`.
type PrefixMatch struct {
	Column string
	Prefix string
}

// And is a conjunction; empty is true.
type And []Predicate

// Or is a disjunction; empty is false.
type Or []Predicate

// False never matches.
type False struct{}

func (Compare) isPredicate()       {}
func (ColumnCompare) isPredicate() {}
func (IsNull) isPredicate()        {}
func (In) isPredicate()            {}
func (Exists) isPredicate()        {}
func (PrefixMatch) isPredicate()   {}
func (And) isPredicate()           {}
func (Or) isPredicate()            {}
func (False) isPredicate()         {}

// Eq is shorthand for Compare{column, OpEq, value}.
func Eq(column string, value any) Compare {
	return Compare{Column: column, Op: OpEq, Value: value}
}

// InInt64 builds an In predicate over ids.
func InInt64(column string, ids []int64) In {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return In{Column: column, Values: values}
}

// NotInInt64 builds a negated In predicate over ids.
func NotInInt64(column string, ids []int64) In {
	in := InInt64(column, ids)
	in.Not = true
	return in
}

// InStrings builds an In predicate over strings.
func InStrings(column string, values []string) In {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return In{Column: column, Values: vs}
}

// JoinKind selects INNER or LEFT joins.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

// Join attaches a table to the query. Table includes its alias.
type Join struct {
	Kind  JoinKind
	Table string
	On    []Predicate
}

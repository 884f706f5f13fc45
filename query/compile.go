package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// CursorKeyColumn is the alias of the ordering key appended to every select.
const CursorKeyColumn = "cursor_key"

// Compile lowers a plan to a SQL statement and its arguments.
func Compile(p *Plan, dialect Dialect) (string, []any, error) {
	if p.Empty {
		return "", nil, fmt.Errorf("compile: plan is empty and must not be executed")
	}

	c := &compiler{dialect: dialect}
	d := p.Descriptor

	if p.Header != "" {
		c.sql.WriteString("-- ")
		c.sql.WriteString(strings.ReplaceAll(p.Header, "\n", " "))
		c.sql.WriteString("\n")
	}

	key := p.Order.Key
	if key == "" {
		key = "NULL"
	}
	c.sql.WriteString("SELECT ")
	c.sql.WriteString(strings.Join(d.Select, ", "))
	c.sql.WriteString(", ")
	c.sql.WriteString(key)
	c.sql.WriteString(" AS " + CursorKeyColumn)
	c.sql.WriteString("\nFROM ")
	c.sql.WriteString(d.Table)

	for _, j := range p.Joins {
		c.sql.WriteString("\n")
		if err := c.join(j); err != nil {
			return "", nil, err
		}
	}

	c.sql.WriteString("\nWHERE 1=1")
	for _, w := range p.Where {
		c.sql.WriteString("\n  AND ")
		if err := c.predicate(w); err != nil {
			return "", nil, err
		}
	}

	if len(p.Order.Terms) > 0 {
		c.sql.WriteString("\nORDER BY ")
		for i, t := range p.Order.Terms {
			if i > 0 {
				c.sql.WriteString(", ")
			}
			c.orderTerm(t)
		}
	}

	c.sql.WriteString("\nLIMIT ")
	c.arg(p.Limit)
	if p.Offset > 0 {
		c.sql.WriteString(" OFFSET ")
		c.arg(p.Offset)
	}
	return c.sql.String(), c.args, nil
}

// CompilePredicate lowers a single predicate; used by tests and debugging.
func CompilePredicate(pred Predicate, dialect Dialect) (string, []any, error) {
	c := &compiler{dialect: dialect}
	if err := c.predicate(pred); err != nil {
		return "", nil, err
	}
	return c.sql.String(), c.args, nil
}

type compiler struct {
	dialect Dialect
	sql     strings.Builder
	args    []any
}

func (c *compiler) arg(v any) {
	c.args = append(c.args, v)
	if c.dialect == Postgres {
		c.sql.WriteString("$" + strconv.Itoa(len(c.args)))
		return
	}
	c.sql.WriteString("?")
}

func (c *compiler) join(j Join) error {
	if j.Kind == LeftJoin {
		c.sql.WriteString("LEFT JOIN ")
	} else {
		c.sql.WriteString("JOIN ")
	}
	c.sql.WriteString(j.Table)
	c.sql.WriteString(" ON ")
	return c.conjunction(j.On)
}

func (c *compiler) conjunction(preds []Predicate) error {
	if len(preds) == 0 {
		c.sql.WriteString("1 = 1")
		return nil
	}
	for i, p := range preds {
		if i > 0 {
			c.sql.WriteString(" AND ")
		}
		if err := c.predicate(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) orderTerm(t OrderTerm) {
	c.sql.WriteString(t.Expr)
	if t.Desc {
		c.sql.WriteString(" DESC")
	} else {
		c.sql.WriteString(" ASC")
	}
	if t.NullsLast {
		c.sql.WriteString(" NULLS LAST")
	}
}

func (c *compiler) predicate(p Predicate) error {
	switch p := p.(type) {
	case Compare:
		c.sql.WriteString(p.Column + " " + string(p.Op) + " ")
		c.arg(p.Value)

	case ColumnCompare:
		c.sql.WriteString(p.Left + " " + string(p.Op) + " " + p.Right)

	case IsNull:
		c.sql.WriteString(p.Column)
		if p.Not {
			c.sql.WriteString(" IS NOT NULL")
		} else {
			c.sql.WriteString(" IS NULL")
		}

	case In:
		if len(p.Values) == 0 {
			if p.Not {
				c.sql.WriteString("1 = 1")
			} else {
				c.sql.WriteString("1 = 0")
			}
			return nil
		}
		c.sql.WriteString(p.Column)
		if p.Not {
			c.sql.WriteString(" NOT")
		}
		c.sql.WriteString(" IN (")
		for i, v := range p.Values {
			if i > 0 {
				c.sql.WriteString(", ")
			}
			c.arg(v)
		}
		c.sql.WriteString(")")

	case Exists:
		if p.Not {
			c.sql.WriteString("NOT ")
		}
		c.sql.WriteString("EXISTS (SELECT 1 FROM " + p.From)
		for _, j := range p.Joins {
			c.sql.WriteString(" ")
			if err := c.join(j); err != nil {
				return err
			}
		}
		c.sql.WriteString(" WHERE ")
		if err := c.conjunction(p.Where); err != nil {
			return err
		}
		c.sql.WriteString(")")

	case PrefixMatch:
		c.sql.WriteString("LOWER(" + p.Column + ") LIKE ")
		c.arg(escapeLike(strings.ToLower(p.Prefix)) + "%")
		c.sql.WriteString(` ESCAPE '\'`)

	case And:
		if len(p) == 0 {
			c.sql.WriteString("1 = 1")
			return nil
		}
		return c.group(p, " AND ")

	case Or:
		if len(p) == 0 {
			c.sql.WriteString("1 = 0")
			return nil
		}
		return c.group(p, " OR ")

	case False:
		c.sql.WriteString("1 = 0")

	default:
		return fmt.Errorf("compile: unsupported predicate %T", p)
	}
	return nil
}

func (c *compiler) group(preds []Predicate, sep string) error {
	c.sql.WriteString("(")
	for i, p := range preds {
		if i > 0 {
			c.sql.WriteString(sep)
		}
		if err := c.predicate(p); err != nil {
			return err
		}
	}
	c.sql.WriteString(")")
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Cursor is a continuation token bound to the sort that produced it.
//
// Value is the ordering key of the last item on the previous page (nil when
// that item had no rank yet). ID is the tie-break item id; it is zero when
// the ordering key is the item id itself.
type Cursor struct {
	Sort  Sort
	Value *int64
	ID    int64
}

// IDCursor builds a cursor for orderings keyed by the item id.
func IDCursor(sort Sort, id int64) *Cursor {
	return &Cursor{Sort: sort, Value: &id}
}

// KeyCursor builds a composite (key, id) cursor.
func KeyCursor(sort Sort, value *int64, id int64) *Cursor {
	return &Cursor{Sort: sort, Value: value, ID: id}
}

// Composite reports whether the cursor carries a tie-break id.
func (c *Cursor) Composite() bool {
	return c.ID != 0
}

// Encode renders the cursor as "<sort>:<value>" or "<sort>:<value|null>:<id>".
func (c *Cursor) Encode() string {
	value := "null"
	if c.Value != nil {
		value = strconv.FormatInt(*c.Value, 10)
	}
	if !c.Composite() {
		return string(c.Sort) + ":" + value
	}
	return fmt.Sprintf("%s:%s:%d", c.Sort, value, c.ID)
}

func (c *Cursor) String() string { return c.Encode() }

// MarshalText lets a Cursor travel as a JSON string.
func (c Cursor) MarshalText() ([]byte, error) {
	return []byte(c.Encode()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (c *Cursor) UnmarshalText(b []byte) error {
	decoded, err := DecodeCursor(string(b))
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// DecodeCursor parses an encoded cursor. It checks shape only; whether the
// cursor fits the request's sort is checked by FilterSpec.Validate.
func DecodeCursor(s string) (*Cursor, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return nil, Invalid("cursor", "malformed cursor %q", s)
	}
	sort, err := ParseSort(parts[0])
	if err != nil {
		return nil, Invalid("cursor", "%v", err)
	}
	c := &Cursor{Sort: sort}
	if parts[1] != "null" {
		v, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, Invalid("cursor", "malformed cursor value %q", parts[1])
		}
		c.Value = &v
	}
	if len(parts) == 2 {
		if c.Value == nil {
			return nil, Invalid("cursor", "id cursor without a value")
		}
		return c, nil
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return nil, Invalid("cursor", "malformed cursor id %q", parts[2])
	}
	c.ID = id
	return c, nil
}

package query

import (
	"fmt"

	"github.com/robertmeta/feedq/model"
)

// OrderTerm is one ORDER BY expression.
type OrderTerm struct {
	Expr      string
	Desc      bool
	NullsLast bool
}

// Order is the resolved ordering of a feed.
type Order struct {
	Joins []Join
	// Where holds the continuation predicate and any filter the ordering
	// mode itself implies.
	Where []Predicate
	Terms []OrderTerm

	// Key is the expression whose value becomes the next cursor. It is empty
	// for orderings that cannot be continued with a cursor.
	Key     string
	KeyIsID bool
}

// communityOtherIndex pushes non-community items after the community's own.
const communityOtherIndex = 1000

// ResolveOrder maps the sort (and period) to ordering terms and, when the
// spec carries a cursor, adds the continuation predicate for that ordering.
// Every ordering ends with the item id so equal keys page deterministically.
func ResolveOrder(d *Descriptor, spec model.FilterSpec) (Order, error) {
	if len(spec.PrioritizedUserIDs) > 0 {
		if spec.Cursor != nil {
			return Order{}, model.Invalid("cursor", "cannot be combined with prioritized users")
		}
		return prioritizedOrder(d, spec)
	}

	order, desc, err := baseOrder(d, spec)
	if err != nil {
		return Order{}, err
	}

	if spec.Cursor != nil {
		if spec.Cursor.Sort != spec.Sort {
			return Order{}, model.Invalid("cursor", "cursor for %q used with sort %q", spec.Cursor.Sort, spec.Sort)
		}
		cont, err := continuation(d, order, desc, spec.Cursor)
		if err != nil {
			return Order{}, err
		}
		order.Where = append(order.Where, cont)
	}
	return order, nil
}

// baseOrder returns the ordering without any continuation, and whether its
// key runs descending.
func baseOrder(d *Descriptor, spec model.FilterSpec) (Order, bool, error) {
	if d.Entity == model.EntityImage && spec.PostID != nil && spec.ModelID == nil {
		return keyed("i.idx", false, d), false, nil
	}

	switch spec.Sort {
	case model.SortNewest, "":
		if d.NewestKeyIsID {
			return Order{
				Terms:   []OrderTerm{{Expr: d.ID, Desc: true}},
				Key:     d.ID,
				KeyIsID: true,
			}, true, nil
		}
		return keyed(d.NewestKey, true, d), true, nil

	case model.SortRandom:
		if spec.CollectionID == nil {
			return Order{}, false, model.Invalid("sort", "random sort requires a collection")
		}
		return keyed("ci.random_id", true, d), true, nil
	}

	metric, ok := spec.Sort.RankMetric()
	if !ok || !d.Entity.Supports(spec.Sort) {
		return Order{}, false, model.Invalid("sort", "%q is not available for %s feeds", spec.Sort, d.Entity)
	}
	order := keyed("r.rank", false, d)
	kind := InnerJoin
	if optionalRank(spec) {
		kind = LeftJoin
	}
	order.Joins = []Join{{
		Kind:  kind,
		Table: "item_ranks r",
		On: []Predicate{
			Eq("r.entity", string(d.Entity)),
			ColumnCompare{"r.item_id", OpEq, d.ID},
			Eq("r.metric", metric),
			Eq("r.period", string(spec.Period)),
		},
	}}
	return order, false, nil
}

// keyed orders by a nullable key with nulls last, then by id.
func keyed(key string, desc bool, d *Descriptor) Order {
	return Order{
		Terms: []OrderTerm{
			{Expr: key, Desc: desc, NullsLast: true},
			{Expr: d.ID, Desc: true},
		},
		Key: key,
	}
}

// optionalRank reports whether a scope selector is narrowing the feed. Scoped
// feeds keep items the rank job has not reached yet; they sort last.
func optionalRank(spec model.FilterSpec) bool {
	return spec.ModelID != nil || spec.ModelVersionID != nil || spec.ReviewID != nil ||
		spec.Username != "" || spec.CollectionID != nil || spec.PostID != nil || len(spec.IDs) > 0
}

// continuation returns the predicate selecting rows strictly after the cursor
// in the (key NULLS LAST, id DESC) ordering.
func continuation(d *Descriptor, order Order, desc bool, c *model.Cursor) (Predicate, error) {
	op := OpGt
	if desc {
		op = OpLt
	}

	if order.KeyIsID {
		if c.Composite() || c.Value == nil {
			return nil, model.Invalid("cursor", "expected an id cursor for sort %q", c.Sort)
		}
		return Compare{Column: d.ID, Op: op, Value: *c.Value}, nil
	}

	if !c.Composite() {
		return nil, model.Invalid("cursor", "expected a (key, id) cursor for sort %q", c.Sort)
	}
	afterID := Compare{Column: d.ID, Op: OpLt, Value: c.ID}
	if c.Value == nil {
		return And{IsNull{Column: order.Key}, afterID}, nil
	}
	return Or{
		Compare{Column: order.Key, Op: op, Value: *c.Value},
		And{Eq(order.Key, *c.Value), afterID},
		IsNull{Column: order.Key},
	}, nil
}

// prioritizedOrder implements the two prioritized-user orderings. Prioritizing
// only the community user puts its items first, in post order, followed by
// the regular feed. Any other set restricts the feed to those users, oldest
// post first. Both page with skip; the item id is still their key so a page
// with more rows behind it carries a next cursor.
func prioritizedOrder(d *Descriptor, spec model.FilterSpec) (Order, error) {
	if d.Entity != model.EntityImage {
		return Order{}, model.Invalid("prioritized_user_ids", "only available for image feeds")
	}

	if len(spec.PrioritizedUserIDs) == 1 && spec.PrioritizedUserIDs[0] == model.CommunityUserID {
		base, _, err := baseOrder(d, spec)
		if err != nil {
			return Order{}, err
		}
		community := OrderTerm{Expr: fmt.Sprintf("CASE WHEN %s = %d THEN i.idx ELSE %d END",
			d.Owner, model.CommunityUserID, communityOtherIndex)}
		return Order{
			Joins:   base.Joins,
			Terms:   append([]OrderTerm{community}, base.Terms...),
			Key:     d.ID,
			KeyIsID: true,
		}, nil
	}

	return Order{
		Where: []Predicate{InInt64(d.Owner, spec.PrioritizedUserIDs)},
		Terms: []OrderTerm{
			{Expr: "(i.post_id * 100) + i.idx"},
			{Expr: d.ID, Desc: true},
		},
		Key:     d.ID,
		KeyIsID: true,
	}, nil
}

package query

import (
	"fmt"
	"time"

	"github.com/robertmeta/feedq/model"
)

// Plan is a fully composed, not yet compiled, feed query.
type Plan struct {
	Descriptor *Descriptor
	Sort       model.Sort
	Joins      []Join
	Where      []Predicate
	Order      Order

	// PageSize is the requested limit; Limit fetches one extra row so the
	// assembler can tell whether another page exists.
	PageSize int
	Limit    int
	Offset   int

	// Empty marks a request that can only produce an empty page. An empty
	// plan must never be executed.
	Empty bool

	// Header is a one-line summary prefixed to the compiled SQL.
	Header string
}

// BuildInput is a validated FilterSpec plus the collaborator lookups it
// depends on.
type BuildInput struct {
	Spec   model.FilterSpec
	Viewer *model.Viewer
	Now    time.Time

	OwnerID     *int64
	FollowedIDs []int64
	Collection  *CollectionScope
}

// Build runs the exclusion, visibility, filter and ordering builders and
// merges their output into one plan.
func Build(in BuildInput) (*Plan, error) {
	spec := in.Spec
	d, err := DescriptorFor(spec.Entity)
	if err != nil {
		return nil, model.Invalid("entity", "%v", err)
	}
	if spec.Skip > 0 && spec.Cursor != nil {
		return nil, model.Invalid("skip", "cannot be combined with cursor")
	}

	plan := &Plan{
		Descriptor: d,
		Sort:       spec.Sort,
		PageSize:   spec.Limit,
		Limit:      spec.Limit + 1,
		Offset:     spec.Skip,
	}

	exclusions, empty := Exclusions(d, ExclusionInput{
		UserIDs:  spec.ExcludedUserIDs,
		TagIDs:   spec.ExcludedTagIDs,
		ImageIDs: spec.ExcludedImageIDs,
		Hidden:   spec.Hidden,
		ViewerID: in.Viewer.ID(),
	})
	if empty {
		plan.Empty = true
		plan.Header = header(d, spec, 0)
		return plan, nil
	}

	visibility, err := Visibility(d, VisibilityInput{
		Viewer:           in.Viewer,
		RequirePublished: spec.CollectionID == nil,
		Now:              in.Now,
	})
	if err != nil {
		return nil, err
	}

	joins, filters := Filters(d, FilterInput{
		Spec:        spec,
		Viewer:      in.Viewer,
		Now:         in.Now,
		OwnerID:     in.OwnerID,
		FollowedIDs: in.FollowedIDs,
		Collection:  in.Collection,
	})

	order, err := ResolveOrder(d, spec)
	if err != nil {
		return nil, err
	}

	plan.Joins = append(append(append([]Join{}, d.Joins...), joins...), order.Joins...)
	plan.Where = append(append(append(append([]Predicate{}, exclusions...), visibility...), filters...), order.Where...)
	plan.Order = order
	plan.Header = header(d, spec, len(exclusions))
	return plan, nil
}

func header(d *Descriptor, spec model.FilterSpec, exclusions int) string {
	cursor := "none"
	if spec.Cursor != nil {
		cursor = spec.Cursor.Encode()
	}
	return fmt.Sprintf("feed: %s, sort: %s, exclusions: %d, cursor: %s, limit: %d",
		d.Entity, spec.Sort, exclusions, cursor, spec.Limit)
}

// Row is one scanned result row with the value of its ordering key.
type Row struct {
	Item *model.FeedItem
	Key  *int64
}

// CursorFor returns the cursor continuing after row, or nil when the plan's
// ordering cannot be continued with a cursor.
func (p *Plan) CursorFor(row Row) *model.Cursor {
	switch {
	case p.Order.Key == "":
		return nil
	case p.Order.KeyIsID:
		return model.IDCursor(p.Sort, row.Item.ID)
	default:
		return model.KeyCursor(p.Sort, row.Key, row.Item.ID)
	}
}

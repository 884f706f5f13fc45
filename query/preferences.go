package query

import "github.com/robertmeta/feedq/model"

// ExclusionInput carries the viewer's hidden preference slices.
type ExclusionInput struct {
	UserIDs  []int64
	TagIDs   []int64
	ImageIDs []int64
	Hidden   bool
	ViewerID int64
}

// Exclusions folds hidden users, tags and images into predicates. The second
// result is true when the request can only produce an empty page: Hidden is
// set but there are no hidden images to show. Callers must check it before
// running anything, otherwise the feed would be unfiltered.
func Exclusions(d *Descriptor, in ExclusionInput) ([]Predicate, bool) {
	if in.Hidden && len(in.ImageIDs) == 0 {
		return nil, true
	}

	var preds []Predicate
	if len(in.UserIDs) > 0 {
		preds = append(preds, NotInInt64(d.Owner, in.UserIDs))
	}

	if len(in.ImageIDs) > 0 && d.Entity == model.EntityImage {
		if in.Hidden {
			preds = append(preds, InInt64(d.ID, in.ImageIDs))
		} else {
			preds = append(preds, NotInInt64(d.ID, in.ImageIDs))
		}
	}

	if len(in.TagIDs) > 0 {
		// Tags are not final until the item is scanned.
		tagged := Or{
			Exists{
				Not:  true,
				From: "tags_on_items toi",
				Where: []Predicate{
					Eq("toi.entity", string(d.Entity)),
					ColumnCompare{"toi.item_id", OpEq, d.ID},
					InInt64("toi.tag_id", in.TagIDs),
					Eq("toi.disabled", 0),
				},
			},
			Compare{Column: d.Ingestion, Op: OpNe, Value: string(model.IngestionScanned)},
		}
		if in.ViewerID > 0 {
			tagged = append(tagged, Eq(d.Owner, in.ViewerID))
		}
		preds = append(preds, tagged)
	}

	return preds, false
}

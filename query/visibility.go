package query

import (
	"time"

	"github.com/robertmeta/feedq/model"
)

// VisibilityInput is what the baseline visibility rules depend on.
type VisibilityInput struct {
	Viewer           *model.Viewer
	RequirePublished bool
	Now              time.Time
}

// Visibility returns the baseline "can this viewer see this item" predicates.
//
// Anonymous viewers only see scanned items. Signed in viewers also see their
// own items whatever their scan state. Non-moderators additionally need the
// item to be free of review flags and, when RequirePublished is set,
// published in the past; owners bypass both.
func Visibility(d *Descriptor, in VisibilityInput) ([]Predicate, error) {
	if in.Viewer != nil && in.Viewer.UserID <= 0 {
		return nil, model.Invalid("viewer", "user id must be positive")
	}

	scanned := Eq(d.Ingestion, string(model.IngestionScanned))
	if in.Viewer == nil {
		return append([]Predicate{scanned}, moderationRules(d, in, nil)...), nil
	}

	owned := Eq(d.Owner, in.Viewer.UserID)
	preds := []Predicate{Or{scanned, owned}}
	if in.Viewer.Moderator {
		return preds, nil
	}
	return append(preds, moderationRules(d, in, owned)...), nil
}

func moderationRules(d *Descriptor, in VisibilityInput, owned Predicate) []Predicate {
	needsReview := Or{IsNull{Column: d.NeedsReview}}
	if owned != nil {
		needsReview = append(needsReview, owned)
	}
	preds := []Predicate{needsReview}

	if in.RequirePublished {
		published := Or{Compare{Column: d.PublishedAt, Op: OpLt, Value: in.Now.Unix()}}
		if owned != nil {
			published = append(published, owned)
		}
		preds = append(preds, published)
	}
	return preds
}

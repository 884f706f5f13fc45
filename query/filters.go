package query

import (
	"time"

	"github.com/robertmeta/feedq/model"
)

// Collection item states.
const (
	CollectionItemAccepted = "ACCEPTED"
	CollectionItemReview   = "REVIEW"
	CollectionItemRejected = "REJECTED"
)

// CollectionScope is a resolved collection selector.
type CollectionScope struct {
	ID int64
	// AcceptedVisible is false while the collection's submission window is
	// still open; accepted items stay hidden until it closes.
	AcceptedVisible bool
	ViewerID        int64
	RandomKey       bool
}

// FilterInput is a FilterSpec plus everything resolved from collaborators.
type FilterInput struct {
	Spec   model.FilterSpec
	Viewer *model.Viewer
	Now    time.Time

	// OwnerID is the resolved Spec.Username.
	OwnerID *int64
	// FollowedIDs is applied whenever Spec.FollowedOnly is set, even empty.
	FollowedIDs []int64
	Collection  *CollectionScope
}

// Filters translates scope selectors and content filters into joins and
// predicates. Each selector contributes independently.
func Filters(d *Descriptor, in FilterInput) ([]Join, []Predicate) {
	spec := in.Spec
	var joins []Join
	var preds []Predicate

	if len(spec.IDs) > 0 {
		preds = append(preds, InInt64(d.ID, spec.IDs))
	}

	if spec.PostID != nil {
		switch d.Entity {
		case model.EntityImage:
			preds = append(preds, Eq("i.post_id", *spec.PostID))
		case model.EntityPost:
			preds = append(preds, Eq(d.ID, *spec.PostID))
		}
	}

	preds = append(preds, resourceFilters(d, spec)...)

	if in.OwnerID != nil {
		preds = append(preds, Eq(d.Owner, *in.OwnerID))
	}

	if spec.FollowedOnly {
		preds = append(preds, InInt64(d.Owner, in.FollowedIDs))
	}

	if len(spec.Tags) > 0 {
		preds = append(preds, Exists{
			From: "tags_on_items toi",
			Where: []Predicate{
				Eq("toi.entity", string(d.Entity)),
				ColumnCompare{"toi.item_id", OpEq, d.ID},
				InInt64("toi.tag_id", spec.Tags),
				Eq("toi.disabled", 0),
			},
		})
	}

	if spec.NsfwCeiling != nil {
		preds = append(preds, nsfwFilter(d, *spec.NsfwCeiling))
	}

	if spec.PeriodMode != model.PeriodModeStats {
		if since, ok := spec.Period.Since(in.Now); ok {
			preds = append(preds, Compare{Column: d.CreatedAt, Op: OpGe, Value: since.Unix()})
		}
	}

	if in.Viewer != nil && len(spec.Reactions) > 0 {
		preds = append(preds, Exists{
			From: "reactions rx",
			Where: []Predicate{
				Eq("rx.entity", string(d.Entity)),
				ColumnCompare{"rx.item_id", OpEq, d.ID},
				Eq("rx.user_id", in.Viewer.UserID),
				InStrings("rx.reaction", spec.Reactions),
			},
		})
	}

	if spec.Query != "" {
		preds = append(preds, PrefixMatch{Column: d.Title, Prefix: spec.Query})
	}

	if len(spec.Types) > 0 {
		preds = append(preds, InStrings("i.media_type", spec.Types))
	}
	if len(spec.Generation) > 0 {
		preds = append(preds, InStrings("i.generation_process", spec.Generation))
	}

	if in.Viewer.IsModerator() {
		preds = append(preds, reviewFilters(d, spec)...)
	}

	if in.Collection != nil {
		join, pred := collectionFilter(d, *in.Collection)
		joins = append(joins, join)
		preds = append(preds, pred)
	}

	return joins, preds
}

// nsfwFilter matches the ordered set of levels up to the ceiling.
func nsfwFilter(d *Descriptor, ceiling model.NsfwLevel) Predicate {
	if ceiling == model.NsfwNone {
		return Eq(d.Nsfw, int(model.NsfwNone))
	}
	levels := model.LevelsUpTo(ceiling)
	values := make([]any, len(levels))
	for i, level := range levels {
		values[i] = int(level)
	}
	return In{Column: d.Nsfw, Values: values}
}

// resourceFilters scopes items to a model, model version or resource review.
func resourceFilters(d *Descriptor, spec model.FilterSpec) []Predicate {
	if spec.ModelID == nil && spec.ModelVersionID == nil && spec.ReviewID == nil {
		return nil
	}

	switch d.Entity {
	case model.EntityImage:
		if len(spec.PrioritizedUserIDs) > 0 {
			// Prioritized feeds scope by the post's version only.
			if spec.ModelVersionID != nil {
				return []Predicate{Eq("p.model_version_id", *spec.ModelVersionID)}
			}
			return nil
		}
		var joins []Join
		where := []Predicate{ColumnCompare{"irr.image_id", OpEq, d.ID}}
		if spec.ModelVersionID != nil {
			where = append(where, Eq("irr.model_version_id", *spec.ModelVersionID))
		}
		if spec.ModelID != nil {
			joins = append(joins, Join{Kind: InnerJoin, Table: "model_versions mv",
				On: []Predicate{ColumnCompare{"mv.id", OpEq, "irr.model_version_id"}}})
			where = append(where, Eq("mv.model_id", *spec.ModelID))
		}
		if spec.ReviewID != nil {
			joins = append(joins, Join{Kind: InnerJoin, Table: "resource_reviews re",
				On: []Predicate{ColumnCompare{"re.model_version_id", OpEq, "irr.model_version_id"}}})
			where = append(where, Eq("re.id", *spec.ReviewID))
		}
		return []Predicate{Exists{From: "image_resources irr", Joins: joins, Where: where}}

	case model.EntityPost:
		var preds []Predicate
		if spec.ModelVersionID != nil {
			preds = append(preds, Eq("p.model_version_id", *spec.ModelVersionID))
		}
		if spec.ModelID != nil {
			preds = append(preds, Exists{
				From: "model_versions mv",
				Where: []Predicate{
					ColumnCompare{"mv.id", OpEq, "p.model_version_id"},
					Eq("mv.model_id", *spec.ModelID),
				},
			})
		}
		return preds

	case model.EntityModel:
		var preds []Predicate
		if spec.ModelID != nil {
			preds = append(preds, Eq(d.ID, *spec.ModelID))
		}
		if spec.ModelVersionID != nil {
			preds = append(preds, Exists{
				From: "model_versions mv",
				Where: []Predicate{
					ColumnCompare{"mv.model_id", OpEq, d.ID},
					Eq("mv.id", *spec.ModelVersionID),
				},
			})
		}
		return preds
	}
	return nil
}

// reviewFilters are the moderator queues.
func reviewFilters(d *Descriptor, spec model.FilterSpec) []Predicate {
	var preds []Predicate
	if spec.NeedsReview != "" {
		preds = append(preds,
			Eq(d.NeedsReview, spec.NeedsReview),
			Eq(d.Ingestion, string(model.IngestionScanned)),
		)
	}
	if spec.TagReview {
		preds = append(preds, Exists{
			From: "tags_on_items toi",
			Where: []Predicate{
				Eq("toi.entity", string(d.Entity)),
				ColumnCompare{"toi.item_id", OpEq, d.ID},
				Eq("toi.needs_review", 1),
			},
		})
	}
	if spec.ReportReview {
		preds = append(preds, Exists{
			From: "reports rep",
			Where: []Predicate{
				Eq("rep.entity", string(d.Entity)),
				ColumnCompare{"rep.item_id", OpEq, d.ID},
				Eq("rep.status", ReportPending),
			},
		})
	}
	return preds
}

// ReportPending is the status of an unresolved report.
const ReportPending = "Pending"

// collectionFilter joins the collection's item rows. Accepted items show once
// the submission window closed; items the viewer added show unless rejected.
func collectionFilter(d *Descriptor, c CollectionScope) (Join, Predicate) {
	join := Join{
		Kind:  InnerJoin,
		Table: "collection_items ci",
		On: []Predicate{
			Eq("ci.collection_id", c.ID),
			Eq("ci.entity", string(d.Entity)),
			ColumnCompare{"ci.item_id", OpEq, d.ID},
		},
	}

	var visible Or
	if c.AcceptedVisible {
		accepted := And{Eq("ci.status", CollectionItemAccepted)}
		if c.RandomKey {
			accepted = append(accepted, IsNull{Column: "ci.random_id", Not: true})
		}
		visible = append(visible, accepted)
	}
	if c.ViewerID > 0 {
		visible = append(visible, And{
			Compare{Column: "ci.status", Op: OpNe, Value: CollectionItemRejected},
			Eq("ci.added_by_id", c.ViewerID),
		})
	}
	if len(visible) == 0 {
		return join, False{}
	}
	return join, visible
}

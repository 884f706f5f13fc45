package model

// Attributes a caller may ask the composer to hydrate.
const (
	IncludeTags      = "tags"
	IncludeReactions = "reactions"
	IncludeCosmetics = "cosmetics"
	IncludeReport    = "report"
)

// CommunityUserID is the system user. Prioritizing only this user orders its
// items first and everyone else's after them.
const CommunityUserID int64 = -1

// FilterSpec is the filter, sort and pagination request for one feed page.
// It is treated as an immutable value; helpers return modified copies.
type FilterSpec struct {
	Entity Entity `json:"entity"`

	Limit  int     `json:"limit"`
	Cursor *Cursor `json:"cursor,omitempty"`
	Skip   int     `json:"skip,omitempty"`

	Sort       Sort       `json:"sort,omitempty"`
	Period     Period     `json:"period,omitempty"`
	PeriodMode PeriodMode `json:"period_mode,omitempty"`

	ExcludedUserIDs  []int64 `json:"excluded_user_ids,omitempty"`
	ExcludedTagIDs   []int64 `json:"excluded_tag_ids,omitempty"`
	ExcludedImageIDs []int64 `json:"excluded_image_ids,omitempty"`
	Hidden           bool    `json:"hidden,omitempty"`

	IDs            []int64  `json:"ids,omitempty"`
	Tags           []int64  `json:"tags,omitempty"`
	Username       string   `json:"username,omitempty"`
	PostID         *int64   `json:"post_id,omitempty"`
	ModelID        *int64   `json:"model_id,omitempty"`
	ModelVersionID *int64   `json:"model_version_id,omitempty"`
	ReviewID       *int64   `json:"review_id,omitempty"`
	CollectionID   *int64   `json:"collection_id,omitempty"`
	FollowedOnly   bool     `json:"followed_only,omitempty"`
	Reactions      []string `json:"reactions,omitempty"`
	Query          string   `json:"query,omitempty"`

	NsfwCeiling *NsfwLevel `json:"nsfw_ceiling,omitempty"`

	Types      []string `json:"types,omitempty"`
	Generation []string `json:"generation,omitempty"`

	// Moderator only; ignored for everyone else.
	NeedsReview  string `json:"needs_review,omitempty"`
	TagReview    bool   `json:"tag_review,omitempty"`
	ReportReview bool   `json:"report_review,omitempty"`

	PrioritizedUserIDs []int64 `json:"prioritized_user_ids,omitempty"`

	Include []string `json:"include,omitempty"`
}

// WithDefaults fills in the default sort, period and mode.
func (f FilterSpec) WithDefaults() FilterSpec {
	if f.Sort == "" {
		f.Sort = SortNewest
	}
	if f.Period == "" {
		f.Period = PeriodAllTime
	}
	if f.PeriodMode == "" {
		f.PeriodMode = PeriodModeNormal
	}
	return f
}

// WithHiddenPreferences folds a viewer's hidden preferences into the
// excluded id sets.
func (f FilterSpec) WithHiddenPreferences(h HiddenPreferenceSet) FilterSpec {
	f.ExcludedUserIDs = union(f.ExcludedUserIDs, h.UserIDs())
	f.ExcludedTagIDs = union(f.ExcludedTagIDs, h.TagIDs())
	if f.Entity == EntityImage {
		f.ExcludedImageIDs = union(f.ExcludedImageIDs, h.ImageIDs())
	}
	return f
}

// Includes reports whether attr was requested.
func (f FilterSpec) Includes(attr string) bool {
	for _, a := range f.Include {
		if a == attr {
			return true
		}
	}
	return false
}

// Exclusions counts the ids excluded by preferences.
func (f FilterSpec) Exclusions() int {
	return len(f.ExcludedUserIDs) + len(f.ExcludedTagIDs) + len(f.ExcludedImageIDs)
}

// Validate rejects malformed or contradictory requests. It expects
// WithDefaults to have been applied.
func (f FilterSpec) Validate(viewer *Viewer) error {
	if viewer != nil && viewer.UserID <= 0 {
		return Invalid("viewer", "user id must be positive")
	}
	switch f.Entity {
	case EntityImage, EntityPost, EntityModel:
	default:
		return Invalid("entity", "unknown entity %q", f.Entity)
	}
	if f.Limit <= 0 {
		return Invalid("limit", "must be greater than 0")
	}
	if f.Skip < 0 {
		return Invalid("skip", "must not be negative")
	}
	if f.Skip > 0 && f.Cursor != nil {
		return Invalid("skip", "cannot be combined with cursor")
	}
	if !f.Period.valid() {
		return Invalid("period", "unknown period %q", f.Period)
	}
	if f.PeriodMode != PeriodModeNormal && f.PeriodMode != PeriodModeStats {
		return Invalid("period_mode", "unknown mode %q", f.PeriodMode)
	}
	if !f.Entity.Supports(f.Sort) {
		return Invalid("sort", "%q is not available for %s feeds", f.Sort, f.Entity)
	}
	if f.Sort == SortRandom && f.CollectionID == nil {
		return Invalid("sort", "random sort requires a collection")
	}
	if f.Cursor != nil {
		if len(f.PrioritizedUserIDs) > 0 {
			return Invalid("cursor", "cannot be combined with prioritized users")
		}
		if f.Cursor.Sort != f.Sort {
			return Invalid("cursor", "cursor for %q used with sort %q", f.Cursor.Sort, f.Sort)
		}
	}
	if len(f.PrioritizedUserIDs) > 0 && f.Entity != EntityImage {
		return Invalid("prioritized_user_ids", "only available for image feeds")
	}
	if f.Hidden {
		if viewer == nil {
			return Unauthorized("hidden content requires a signed in viewer")
		}
		if f.Entity != EntityImage {
			return Invalid("hidden", "only available for image feeds")
		}
	}
	if f.FollowedOnly && viewer == nil {
		return Invalid("followed_only", "requires a signed in viewer")
	}
	if f.PostID != nil && f.Entity == EntityModel {
		return Invalid("post_id", "not available for model feeds")
	}
	if f.ReviewID != nil && f.Entity != EntityImage {
		return Invalid("review_id", "only available for image feeds")
	}
	if (len(f.Types) > 0 || len(f.Generation) > 0) && f.Entity != EntityImage {
		return Invalid("types", "media filters are only available for image feeds")
	}
	if f.NsfwCeiling != nil && !f.NsfwCeiling.Valid() {
		return Invalid("nsfw_ceiling", "unknown level %d", int(*f.NsfwCeiling))
	}
	for _, attr := range f.Include {
		switch attr {
		case IncludeTags, IncludeReactions, IncludeCosmetics, IncludeReport:
		default:
			return Invalid("include", "unknown attribute %q", attr)
		}
	}
	for field, ids := range map[string][]int64{
		"excluded_user_ids":  f.ExcludedUserIDs,
		"excluded_tag_ids":   f.ExcludedTagIDs,
		"excluded_image_ids": f.ExcludedImageIDs,
		"ids":                f.IDs,
		"tags":               f.Tags,
	} {
		for _, id := range ids {
			if id <= 0 {
				return Invalid(field, "ids must be positive, got %d", id)
			}
		}
	}
	for field, id := range map[string]*int64{
		"post_id":          f.PostID,
		"model_id":         f.ModelID,
		"model_version_id": f.ModelVersionID,
		"review_id":        f.ReviewID,
		"collection_id":    f.CollectionID,
	} {
		if id != nil && *id <= 0 {
			return Invalid(field, "must be positive, got %d", *id)
		}
	}
	return nil
}

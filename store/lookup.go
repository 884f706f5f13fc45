package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/robertmeta/feedq/model"
)

// ResolveUsername returns the id of an active user.
func (s *Store) ResolveUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id FROM users WHERE username = ? AND deleted_at IS NULL"),
		username,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.NotFound("user", username)
	}
	if err != nil {
		return 0, model.Backend("resolve username", err)
	}
	return id, nil
}

// FollowedUserIDs returns the users userID follows, ascending.
func (s *Store) FollowedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.ids(ctx, "followed users",
		"SELECT target_user_id FROM follows WHERE user_id = ? ORDER BY target_user_id", userID)
}

// Collection loads a collection by id.
func (s *Store) Collection(ctx context.Context, id int64) (*model.Collection, error) {
	c := &model.Collection{}
	var read string
	var endsAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, user_id, name, read_access, submission_ends_at FROM collections WHERE id = ?"),
		id,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &read, &endsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("collection", id)
	}
	if err != nil {
		return nil, model.Backend("get collection", err)
	}

	c.Read = model.CollectionRead(read)
	if endsAt.Valid {
		t := time.Unix(endsAt.Int64, 0).UTC()
		c.SubmissionEndsAt = &t
	}
	return c, nil
}

// CollectionPermissions resolves what viewer may do with a collection. Public
// and unlisted collections are readable by anyone; private ones only by the
// owner, moderators and contributors allowed to view.
func (s *Store) CollectionPermissions(ctx context.Context, viewer *model.Viewer, collectionID int64) (model.CollectionPermissions, error) {
	c, err := s.Collection(ctx, collectionID)
	if err != nil {
		return model.CollectionPermissions{}, err
	}

	perms := model.CollectionPermissions{
		Owner: viewer != nil && viewer.UserID == c.OwnerID,
		Read:  c.Read == model.CollectionPublic || c.Read == model.CollectionUnlisted,
	}
	if viewer == nil {
		return perms, nil
	}

	var canView int
	err = s.db.QueryRowContext(ctx,
		s.rebind("SELECT can_view FROM collection_contributors WHERE collection_id = ? AND user_id = ?"),
		collectionID, viewer.UserID,
	).Scan(&canView)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return model.CollectionPermissions{}, model.Backend("get collection contributor", err)
	default:
		perms.Contributor = true
	}

	perms.Read = perms.Read || perms.Owner || viewer.Moderator || (perms.Contributor && canView == 1)
	return perms, nil
}

// ids runs a single-column id query.
func (s *Store) ids(ctx context.Context, what, stmt string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(stmt), args...)
	if err != nil {
		return nil, model.Backend("query "+what, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, model.Backend("scan "+what, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Backend("iterate "+what, err)
	}
	return ids, nil
}

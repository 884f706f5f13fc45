package store

import (
	"context"

	"github.com/robertmeta/feedq/model"
)

// HiddenPreferences loads everything userID chose to hide.
func (s *Store) HiddenPreferences(ctx context.Context, userID int64) (model.HiddenPreferenceSet, error) {
	set := model.NewHiddenPreferenceSet()
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT kind, target_id FROM hidden_preferences WHERE user_id = ?"), userID)
	if err != nil {
		return set, model.Backend("query hidden preferences", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var id int64
		if err := rows.Scan(&kind, &id); err != nil {
			return set, model.Backend("scan hidden preference", err)
		}
		set.Add(model.HiddenKind(kind), id)
	}
	if err := rows.Err(); err != nil {
		return set, model.Backend("iterate hidden preferences", err)
	}
	return set, nil
}

// Hide records that userID does not want to see target.
func (s *Store) Hide(ctx context.Context, userID int64, kind model.HiddenKind, targetID int64) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO hidden_preferences (user_id, kind, target_id) VALUES (?, ?, ?) ON CONFLICT DO NOTHING"),
		userID, string(kind), targetID)
	if err != nil {
		return model.Backend("hide", err)
	}
	return nil
}

// Unhide removes a hidden preference. Removing a missing one is not an error.
func (s *Store) Unhide(ctx context.Context, userID int64, kind model.HiddenKind, targetID int64) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM hidden_preferences WHERE user_id = ? AND kind = ? AND target_id = ?"),
		userID, string(kind), targetID)
	if err != nil {
		return model.Backend("unhide", err)
	}
	return nil
}

// Follow makes userID follow targetID.
func (s *Store) Follow(ctx context.Context, userID, targetID int64) error {
	if userID == targetID {
		return model.Invalid("target", "users cannot follow themselves")
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO follows (user_id, target_user_id) VALUES (?, ?) ON CONFLICT DO NOTHING"),
		userID, targetID)
	if err != nil {
		return model.Backend("follow", err)
	}
	return nil
}

// Unfollow is the inverse of Follow.
func (s *Store) Unfollow(ctx context.Context, userID, targetID int64) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM follows WHERE user_id = ? AND target_user_id = ?"),
		userID, targetID)
	if err != nil {
		return model.Backend("unfollow", err)
	}
	return nil
}

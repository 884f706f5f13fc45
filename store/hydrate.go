package store

import (
	"context"

	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/query"
)

// TagsForItems returns the enabled tags of each item, by name.
func (s *Store) TagsForItems(ctx context.Context, entity model.Entity, ids []int64) (map[int64][]model.Tag, error) {
	result := make(map[int64][]model.Tag, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	where, args, err := s.where(query.And{
		query.Eq("toi.entity", string(entity)),
		query.InInt64("toi.item_id", ids),
		query.Eq("toi.disabled", 0),
	})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT toi.item_id, t.id, t.name FROM tags_on_items toi JOIN tags t ON t.id = toi.tag_id WHERE "+
			where+" ORDER BY toi.item_id, t.name", args...)
	if err != nil {
		return nil, model.Backend("query tags", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int64
		var tag model.Tag
		if err := rows.Scan(&itemID, &tag.ID, &tag.Name); err != nil {
			return nil, model.Backend("scan tag", err)
		}
		result[itemID] = append(result[itemID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Backend("iterate tags", err)
	}
	return result, nil
}

// ReactionsForItems returns the reactions userID left on each item.
func (s *Store) ReactionsForItems(ctx context.Context, entity model.Entity, userID int64, ids []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	where, args, err := s.where(query.And{
		query.Eq("entity", string(entity)),
		query.Eq("user_id", userID),
		query.InInt64("item_id", ids),
	})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_id, reaction FROM reactions WHERE "+where+" ORDER BY item_id, reaction", args...)
	if err != nil {
		return nil, model.Backend("query reactions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int64
		var reaction string
		if err := rows.Scan(&itemID, &reaction); err != nil {
			return nil, model.Backend("scan reaction", err)
		}
		result[itemID] = append(result[itemID], reaction)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Backend("iterate reactions", err)
	}
	return result, nil
}

// CosmeticsForUsers returns the equipped cosmetics of each user.
func (s *Store) CosmeticsForUsers(ctx context.Context, userIDs []int64) (map[int64][]model.Cosmetic, error) {
	result := make(map[int64][]model.Cosmetic, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	where, args, err := s.where(query.And{
		query.InInt64("uc.user_id", userIDs),
		query.Eq("uc.equipped", 1),
	})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT uc.user_id, c.id, c.name, c.type FROM user_cosmetics uc JOIN cosmetics c ON c.id = uc.cosmetic_id WHERE "+
			where+" ORDER BY uc.user_id, c.id", args...)
	if err != nil {
		return nil, model.Backend("query cosmetics", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var c model.Cosmetic
		if err := rows.Scan(&userID, &c.ID, &c.Name, &c.Type); err != nil {
			return nil, model.Backend("scan cosmetic", err)
		}
		result[userID] = append(result[userID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Backend("iterate cosmetics", err)
	}
	return result, nil
}

// PendingReports returns the oldest pending report of each item.
func (s *Store) PendingReports(ctx context.Context, entity model.Entity, ids []int64) (map[int64]*model.Report, error) {
	result := make(map[int64]*model.Report, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	where, args, err := s.where(query.And{
		query.Eq("r.entity", string(entity)),
		query.InInt64("r.item_id", ids),
		query.Eq("r.status", query.ReportPending),
	})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT r.item_id, r.id, r.reason, r.status, r.user_id, u.username FROM reports r JOIN users u ON u.id = r.user_id WHERE "+
			where+" ORDER BY r.item_id, r.id", args...)
	if err != nil {
		return nil, model.Backend("query reports", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int64
		report := &model.Report{}
		if err := rows.Scan(&itemID, &report.ID, &report.Reason, &report.Status, &report.UserID, &report.Username); err != nil {
			return nil, model.Backend("scan report", err)
		}
		if _, seen := result[itemID]; !seen {
			result[itemID] = report
		}
	}
	if err := rows.Err(); err != nil {
		return nil, model.Backend("iterate reports", err)
	}
	return result, nil
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/query"
)

// QueryPage executes a plan and returns its rows in plan order, including the
// extra look-ahead row when there is one.
func (s *Store) QueryPage(ctx context.Context, plan *query.Plan) ([]query.Row, error) {
	if plan.Empty {
		return nil, model.Invalid("hidden", "an empty hidden feed must not be queried")
	}

	stmt, args, err := query.Compile(plan, s.dialect)
	if err != nil {
		return nil, model.Backend("compile feed query", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, model.Backend("query feed", err)
	}
	defer rows.Close()

	var result []query.Row
	for rows.Next() {
		row, err := scanRow(rows, plan.Descriptor.Entity)
		if err != nil {
			return nil, model.Backend("scan feed row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Backend("iterate feed rows", err)
	}
	return result, nil
}

// scanRow reads the shared select shape described on query.Descriptor.
func scanRow(rows *sql.Rows, entity model.Entity) (query.Row, error) {
	item := &model.FeedItem{Entity: entity}
	var (
		username, title, url, needsReview sql.NullString
		width, height, postID, idx        sql.NullInt64
		publishedAt, key                  sql.NullInt64
		createdAt                         int64
		nsfw                              int64
		ingestion                         string
	)
	err := rows.Scan(
		&item.ID, &item.OwnerID, &username, &title, &url, &width, &height, &postID, &idx,
		&nsfw, &ingestion, &needsReview, &createdAt, &publishedAt, &key,
	)
	if err != nil {
		return query.Row{}, err
	}

	item.Username = username.String
	item.Title = title.String
	item.URL = url.String
	item.Width = int(width.Int64)
	item.Height = int(height.Int64)
	if postID.Valid {
		item.PostID = &postID.Int64
	}
	item.Index = int(idx.Int64)
	item.NsfwLevel = model.NsfwLevel(nsfw)
	item.Ingestion = model.IngestionStatus(ingestion)
	if needsReview.Valid {
		item.NeedsReview = &needsReview.String
	}
	item.CreatedAt = time.Unix(createdAt, 0).UTC()
	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0).UTC()
		item.PublishedAt = &t
	}

	row := query.Row{Item: item}
	if key.Valid {
		row.Key = &key.Int64
	}
	return row, nil
}

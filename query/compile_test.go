package query

import (
	"strings"
	"testing"
	"time"

	"github.com/robertmeta/feedq/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownPredicate struct{}

func (unknownPredicate) isPredicate() {}

func TestCompilePredicate(t *testing.T) {
	tests := []struct {
		name     string
		pred     Predicate
		dialect  Dialect
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "compare",
			pred:     Eq("i.id", 5),
			wantSQL:  "i.id = ?",
			wantArgs: []any{5},
		},
		{
			name:     "postgres placeholders are numbered",
			pred:     And{Eq("a", 1), Compare{Column: "b", Op: OpGe, Value: 2}},
			dialect:  Postgres,
			wantSQL:  "(a = $1 AND b >= $2)",
			wantArgs: []any{1, 2},
		},
		{
			name:    "column compare",
			pred:    ColumnCompare{"u.id", OpEq, "i.user_id"},
			wantSQL: "u.id = i.user_id",
		},
		{
			name:    "is not null",
			pred:    IsNull{Column: "ci.random_id", Not: true},
			wantSQL: "ci.random_id IS NOT NULL",
		},
		{
			name:    "empty in never matches",
			pred:    InInt64("i.user_id", nil),
			wantSQL: "1 = 0",
		},
		{
			name:    "empty not in always matches",
			pred:    NotInInt64("i.user_id", nil),
			wantSQL: "1 = 1",
		},
		{
			name:     "not in",
			pred:     NotInInt64("i.user_id", []int64{3, 4}),
			wantSQL:  "i.user_id NOT IN (?, ?)",
			wantArgs: []any{int64(3), int64(4)},
		},
		{
			name: "not exists",
			pred: Exists{
				Not:   true,
				From:  "tags_on_items toi",
				Where: []Predicate{ColumnCompare{"toi.item_id", OpEq, "i.id"}, Eq("toi.disabled", 0)},
			},
			wantSQL:  "NOT EXISTS (SELECT 1 FROM tags_on_items toi WHERE toi.item_id = i.id AND toi.disabled = ?)",
			wantArgs: []any{0},
		},
		{
			name: "exists with join",
			pred: Exists{
				From:  "image_resources irr",
				Joins: []Join{{Kind: InnerJoin, Table: "model_versions mv", On: []Predicate{ColumnCompare{"mv.id", OpEq, "irr.model_version_id"}}}},
				Where: []Predicate{Eq("mv.model_id", int64(9))},
			},
			wantSQL:  "EXISTS (SELECT 1 FROM image_resources irr JOIN model_versions mv ON mv.id = irr.model_version_id WHERE mv.model_id = ?)",
			wantArgs: []any{int64(9)},
		},
		{
			name:     "prefix match escapes wildcards",
			pred:     PrefixMatch{Column: "p.title", Prefix: "Sun_50%"},
			wantSQL:  `LOWER(p.title) LIKE ? ESCAPE '\'`,
			wantArgs: []any{`sun\_50\%%`},
		},
		{
			name:    "empty or is false",
			pred:    Or{},
			wantSQL: "1 = 0",
		},
		{
			name:    "empty and is true",
			pred:    And{},
			wantSQL: "1 = 1",
		},
		{
			name:    "false",
			pred:    False{},
			wantSQL: "1 = 0",
		},
		{
			name:     "nested or",
			pred:     Or{Eq("i.ingestion", "Scanned"), Eq("i.user_id", int64(7))},
			dialect:  Postgres,
			wantSQL:  "(i.ingestion = $1 OR i.user_id = $2)",
			wantArgs: []any{"Scanned", int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := CompilePredicate(tt.pred, tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestCompilePredicate_Unsupported(t *testing.T) {
	_, _, err := CompilePredicate(And{unknownPredicate{}}, SQLite)
	assert.Error(t, err)
}

func TestCompile_AnonymousNewest(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	plan, err := Build(BuildInput{Spec: spec(model.EntityImage, 2), Now: now})
	require.NoError(t, err)

	sql, args, err := Compile(plan, SQLite)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "-- feed: image, sort: newest, exclusions: 0, cursor: none, limit: 2\n"))
	assert.Contains(t, sql, "SELECT i.id, i.user_id, u.username")
	assert.Contains(t, sql, "i.id AS cursor_key")
	assert.Contains(t, sql, "JOIN users u ON u.id = i.user_id")
	assert.Contains(t, sql, "JOIN posts p ON p.id = i.post_id")
	assert.Contains(t, sql, "AND i.ingestion = ?")
	assert.Contains(t, sql, "AND (i.needs_review IS NULL)")
	assert.Contains(t, sql, "AND (p.published_at < ?)")
	assert.Contains(t, sql, "ORDER BY i.id DESC")
	assert.True(t, strings.HasSuffix(sql, "LIMIT ?"))
	assert.Equal(t, []any{"Scanned", now.Unix(), 3}, args)
}

func TestCompile_PostgresOffset(t *testing.T) {
	s := spec(model.EntityModel, 10)
	s.Skip = 20
	plan, err := Build(BuildInput{Spec: s, Viewer: &model.Viewer{UserID: 1, Moderator: true}, Now: time.Now()})
	require.NoError(t, err)

	sql, args, err := Compile(plan, Postgres)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, "LIMIT $3 OFFSET $4"), sql)
	assert.Equal(t, []any{"Scanned", int64(1), 11, 20}, args)
	assert.NotContains(t, sql, "needs_review IS NULL")
}

func TestCompile_RankOrdering(t *testing.T) {
	s := spec(model.EntityImage, 5)
	s.Sort = model.SortMostReactions
	plan, err := Build(BuildInput{Spec: s, Now: time.Now()})
	require.NoError(t, err)

	sql, _, err := Compile(plan, SQLite)
	require.NoError(t, err)
	assert.Contains(t, sql, "r.rank AS cursor_key")
	assert.Contains(t, sql, "\nJOIN item_ranks r ON r.entity = ? AND r.item_id = i.id AND r.metric = ? AND r.period = ?")
	assert.Contains(t, sql, "ORDER BY r.rank ASC NULLS LAST, i.id DESC")
}

func TestCompile_EmptyPlan(t *testing.T) {
	_, _, err := Compile(&Plan{Empty: true}, SQLite)
	assert.Error(t, err)
}

func TestCompile_PrioritizedSelectsID(t *testing.T) {
	s := spec(model.EntityImage, 5)
	s.PrioritizedUserIDs = []int64{2, 3}
	plan, err := Build(BuildInput{Spec: s, Now: time.Now()})
	require.NoError(t, err)

	sql, _, err := Compile(plan, SQLite)
	require.NoError(t, err)
	assert.Contains(t, sql, "i.id AS cursor_key")
	assert.Contains(t, sql, "ORDER BY (i.post_id * 100) + i.idx ASC, i.id DESC")
}

func TestCompile_KeylessOrderSelectsNull(t *testing.T) {
	d, err := DescriptorFor(model.EntityPost)
	require.NoError(t, err)
	plan := &Plan{Descriptor: d, Order: Order{Terms: []OrderTerm{{Expr: "p.id"}}}, Limit: 3}

	sql, _, err := Compile(plan, SQLite)
	require.NoError(t, err)
	assert.Contains(t, sql, "NULL AS cursor_key")
}

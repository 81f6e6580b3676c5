package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/plain/pkg/database"
)

func TestQueryRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(q *database.Query) *database.Query
		want  string
	}{
		{
			name:  "select all",
			build: func(q *database.Query) *database.Query { return q.Select().From("users") },
			want:  "SELECT * FROM users",
		},
		{
			name:  "select columns",
			build: func(q *database.Query) *database.Query { return q.Select("id", "name").From("users") },
			want:  "SELECT id,name FROM users",
		},
		{
			name:  "where equality",
			build: func(q *database.Query) *database.Query { return q.Select().From("users").Where("id", 1) },
			want:  "SELECT * FROM users WHERE id = '1'",
		},
		{
			name:  "where operator",
			build: func(q *database.Query) *database.Query { return q.Select().From("users").WhereOp("id", "<>", 1) },
			want:  "SELECT * FROM users WHERE id <> '1'",
		},
		{
			name: "chained where joins with AND",
			build: func(q *database.Query) *database.Query {
				return q.Select().From("users").WhereOp("id", ">", 0).WhereOp("id", "<", 2)
			},
			want: "SELECT * FROM users WHERE id > '0' AND id < '2'",
		},
		{
			name: "mixed where forms",
			build: func(q *database.Query) *database.Query {
				return q.Select("name").From("users").Where("id", "3").WhereOp("name", "like", "C%")
			},
			want: "SELECT name FROM users WHERE id = '3' AND name like 'C%'",
		},
		{
			name:  "nil value renders empty literal",
			build: func(q *database.Query) *database.Query { return q.Select().From("users").Where("email", nil) },
			want:  "SELECT * FROM users WHERE email = ''",
		},
		{
			name: "select starts a new statement",
			build: func(q *database.Query) *database.Query {
				q.Select("id").From("accounts").Where("id", 9)
				return q.Select().From("users")
			},
			want: "SELECT * FROM users",
		},
		{
			name:  "from overwrites",
			build: func(q *database.Query) *database.Query { return q.Select().From("accounts").From("users") },
			want:  "SELECT * FROM users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sql, err := tt.build(database.NewQuery()).Render()
			require.NoError(t, err)
			require.Equal(t, tt.want, sql)
		})
	}
}

func TestQueryRenderInvalid(t *testing.T) {
	t.Parallel()

	t.Run("no select", func(t *testing.T) {
		t.Parallel()

		_, err := database.NewQuery().From("users").Where("id", 1).Render()
		require.ErrorIs(t, err, database.ErrInvalidQuery)
	})

	t.Run("no from", func(t *testing.T) {
		t.Parallel()

		_, err := database.NewQuery().Select().Render()
		require.ErrorIs(t, err, database.ErrInvalidQuery)
	})
}

func TestQueryBuild(t *testing.T) {
	t.Parallel()

	t.Run("question marks", func(t *testing.T) {
		t.Parallel()

		q := database.NewQuery().Select().From("users").WhereOp("id", ">", 0).Where("name", "Ana")
		sql, args, err := q.Build(func(int) string { return "?" })
		require.NoError(t, err)
		require.Equal(t, "SELECT * FROM users WHERE id > ? AND name = ?", sql)
		require.Equal(t, []any{"0", "Ana"}, args)
	})

	t.Run("numbered placeholders", func(t *testing.T) {
		t.Parallel()

		q := database.NewQuery().Select("id").From("users").Where("id", 1).Where("name", "x'); DROP TABLE users; --")
		sql, args, err := q.Build((&database.PostgresDriver{}).Placeholder)
		require.NoError(t, err)
		require.Equal(t, "SELECT id FROM users WHERE id = $1 AND name = $2", sql)
		require.Equal(t, []any{"1", "x'); DROP TABLE users; --"}, args)
	})

	t.Run("no where has no args", func(t *testing.T) {
		t.Parallel()

		sql, args, err := database.NewQuery().Select().From("users").Build(func(int) string { return "?" })
		require.NoError(t, err)
		require.Equal(t, "SELECT * FROM users", sql)
		require.Empty(t, args)
	})
}

func TestQueryTerminalCallsReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("detached query fails and resets", func(t *testing.T) {
		t.Parallel()

		q := database.NewQuery().Select().From("users")
		_, err := q.Get(ctx)
		require.ErrorIs(t, err, database.ErrNotConfigured)

		_, err = q.Render()
		require.ErrorIs(t, err, database.ErrInvalidQuery)
	})

	t.Run("get and getOne reset after success", func(t *testing.T) {
		t.Parallel()

		d := &fakeDriver{rows: userRows()}
		conn := database.NewConn(d, 0)

		q := conn.Select().From("users")
		_, err := q.Get(ctx)
		require.NoError(t, err)
		_, err = q.Render()
		require.ErrorIs(t, err, database.ErrInvalidQuery)

		q.Select().From("users")
		row, err := q.GetOne(ctx)
		require.NoError(t, err)
		require.Equal(t, "Ana", row.String("name"))
		_, err = q.Render()
		require.ErrorIs(t, err, database.ErrInvalidQuery)
	})

	t.Run("invalid query never reaches the driver", func(t *testing.T) {
		t.Parallel()

		d := &fakeDriver{rows: userRows()}
		conn := database.NewConn(d, 0)

		_, err := conn.Query().From("users").Get(ctx)
		require.ErrorIs(t, err, database.ErrInvalidQuery)

		_, err = conn.Query().From("users").GetOne(ctx)
		require.ErrorIs(t, err, database.ErrInvalidQuery)

		require.Empty(t, d.Queries())
		require.Equal(t, 0, d.Connects())
	})

	t.Run("getOne returns nil when empty", func(t *testing.T) {
		t.Parallel()

		conn := database.NewConn(&fakeDriver{}, 0)
		row, err := conn.Select().From("users").GetOne(ctx)
		require.NoError(t, err)
		require.Nil(t, row)
	})
}

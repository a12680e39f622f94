package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/storage/database"
)

var builder = database.Builder

type baseRepo struct {
	db core.DBExecutor
}

// getExec returns the executor to run queries with: the given transaction if any, the DB otherwise.
func (repo baseRepo) getExec(exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return repo.db
}

func toSQL(exec core.DBExecutor, b sq.Sqlizer) (string, []interface{}, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, "building query")
	}
	return exec.Rebind(query), args, nil
}

// get scans a single row into dest, returning notFound when there is none.
func get(ctx context.Context, exec core.DBExecutor, dest interface{}, b sq.Sqlizer, notFound error) error {
	query, args, err := toSQL(exec, b)
	if err != nil {
		return err
	}
	if err = sqlx.GetContext(ctx, exec, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return errors.Wrap(err, "selecting row")
	}
	return nil
}

func selectRows(ctx context.Context, exec core.DBExecutor, dest interface{}, b sq.Sqlizer) error {
	query, args, err := toSQL(exec, b)
	if err != nil {
		return err
	}
	return errors.Wrap(sqlx.SelectContext(ctx, exec, dest, query, args...), "selecting rows")
}

func execute(ctx context.Context, exec core.DBExecutor, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := toSQL(exec, b)
	if err != nil {
		return nil, err
	}
	res, err := exec.ExecContext(ctx, query, args...)
	return res, errors.Wrap(err, "executing statement")
}

// executeOne runs b, returning notFound when no row was affected.
func executeOne(ctx context.Context, exec core.DBExecutor, b sq.Sqlizer, notFound error) error {
	res, err := execute(ctx, exec, b)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func count(ctx context.Context, exec core.DBExecutor, b sq.SelectBuilder) (int, error) {
	var total int
	query, args, err := toSQL(exec, b)
	if err != nil {
		return 0, err
	}
	if err = sqlx.GetContext(ctx, exec, &total, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting rows")
	}
	return total, nil
}

// paginate selects the requested page of a filtered query along with the total count of its rows.
// filter applies the WHERE clauses shared by the count and page queries.
func paginate(
	ctx context.Context,
	exec core.DBExecutor,
	dest interface{},
	from string,
	columns []string,
	filter func(sq.SelectBuilder) sq.SelectBuilder,
	ordering []core.DBOrdering,
	page core.Page,
) (int, error) {
	total, err := count(ctx, exec, filter(builder.Select("COUNT(*)").From(from)))
	if err != nil {
		return 0, err
	}

	b := filter(builder.Select(columns...).From(from))
	for _, ord := range ordering {
		b = b.OrderBy(ord.String())
	}
	b = b.Limit(page.Limit()).Offset(page.Offset())
	if err = selectRows(ctx, exec, dest, b); err != nil {
		return 0, err
	}
	return total, nil
}

// like matches any of columns case-insensitively against search.
func like(search string, columns ...string) sq.Or {
	pattern := "%" + search + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.Expr("LOWER("+col+") LIKE LOWER(?)", pattern))
	}
	return or
}

func prefixed(prefix string, columns []string) []string {
	res := make([]string, 0, len(columns))
	for _, col := range columns {
		res = append(res, prefix+"."+col)
	}
	return res
}

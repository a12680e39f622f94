package core

import (
	"context"
	"database/sql"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		sqlx.ExtContext
	}

	DB interface {
		DBExecutor

		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	}
)

// RunInTx runs fn inside a transaction; the transaction is rolled back if fn fails.
func RunInTx(ctx context.Context, db DB, fn func(exec DBExecutor) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// FilterOrderings keeps the orderings whose field is allowed, mapping them to their column.
// Falls back to def when nothing is left.
func FilterOrderings(ords []DBOrdering, allowed map[string]string, def ...DBOrdering) []DBOrdering {
	res := make([]DBOrdering, 0, len(ords))
	for _, ord := range ords {
		if col, ok := allowed[ord.Field]; ok {
			res = append(res, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	if len(res) == 0 {
		return def
	}
	return res
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPageNumber   = math.MaxInt32
)

// Page selects a window of a list query.
type Page struct {
	Number int `query:"page"`
	Size   int `query:"page_size"`
}

// Clean applies page defaults and bounds.
func (p *Page) Clean() {
	switch {
	case p.Number <= 0:
		p.Number = 1
	case p.Number > MaxPageNumber:
		p.Number = MaxPageNumber
	}
	switch {
	case p.Size > MaxPageSize:
		p.Size = MaxPageSize
	case p.Size <= 0:
		p.Size = DefaultPageSize
	}
}

func (p Page) Offset() uint64 { return uint64(p.Number-1) * uint64(p.Size) }
func (p Page) Limit() uint64  { return uint64(p.Size) }

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalRows  int `json:"total_rows"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(p Page, total int) Pagination {
	pages := 0
	if total > 0 && p.Size > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Size)))
	}
	return Pagination{Page: p.Number, PageSize: p.Size, TotalRows: total, TotalPages: pages}
}

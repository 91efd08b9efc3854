package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateKey is returned when an insert or update hits a unique
	// constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStaleState is returned when a guarded update matched no row
	// because the record moved on underneath the caller.
	ErrStaleState = errors.New("record state changed")
)

// Repositories holds all repository instances
type Repositories struct {
	User        UserRepository
	Transaction TransactionRepository
	Draft       DraftRepository
	Contact     ContactRepository
	Budget      BudgetRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Transaction: NewTransactionRepository(db),
		Draft:       NewDraftRepository(db),
		Contact:     NewContactRepository(db),
		Budget:      NewBudgetRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset for the current page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// orderClause maps SortBy onto an allowed column, falling back to def.
func (q *ListQuery) orderClause(allowed map[string]string, def string) string {
	col, ok := allowed[q.SortBy]
	if !ok {
		return def
	}
	if q.SortDir == "desc" {
		return col + " DESC"
	}
	return col + " ASC"
}

func paginate(db *gorm.DB, q *ListQuery) *gorm.DB {
	if q.PerPage > 0 {
		return db.Offset(q.Offset()).Limit(q.PerPage)
	}
	return db
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateKeyError(err) {
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}

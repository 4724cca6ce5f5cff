package postgres

import (
	"context"
	"fmt"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// searchRepository implements domain.NameSearchRepository against the
// configured policy's catalog table. Read-only; shares the pool with the
// write path but never participates in it.
type searchRepository struct {
	db    *DB
	query string
}

// NewSearchRepository creates a name-search repository reading from
// catalogTable. The table name comes from the configured persistence policy,
// never from caller input.
func NewSearchRepository(db *DB, catalogTable string) domain.NameSearchRepository {
	query := fmt.Sprintf(`
		SELECT id, name
		FROM %s
		WHERE name ILIKE $1
		ORDER BY name ASC
		LIMIT $2
	`, catalogTable)

	return &searchRepository{db: db, query: query}
}

// SearchNames returns up to limit case-insensitive substring matches for
// text, ordered ascending by name.
func (r *searchRepository) SearchNames(ctx context.Context, text string, limit int) ([]domain.ItemNameMatch, error) {
	pattern := "%" + text + "%"

	rows, err := r.db.QueryContext(ctx, r.query, pattern, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "search item names", Err: err}
	}
	defer rows.Close()

	matches := make([]domain.ItemNameMatch, 0)
	for rows.Next() {
		var match domain.ItemNameMatch
		if err := rows.Scan(&match.ID, &match.Name); err != nil {
			return nil, &domain.PersistenceError{Op: "scan item name row", Err: err}
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "search item names", Err: err}
	}

	return matches, nil
}

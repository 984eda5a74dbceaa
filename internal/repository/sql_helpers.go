// internal/repository/sql_helpers.go
package repository

import (
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

// isUniqueViolation reports a duplicate key from PostgreSQL.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return false
}

// nullJSON maps empty editor blocks to SQL NULL. jsonb is sent as text because
// lib/pq encodes []byte as bytea.
func nullJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

package db

import "database/sql"

// DB wraps the sql handle so store code depends on one internal type.
type DB struct {
	*sql.DB
}

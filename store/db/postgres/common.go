package postgres

import (
	"fmt"
)

// placeholder returns a PostgreSQL positional placeholder ($1, $2, ...).
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

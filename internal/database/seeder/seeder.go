package seeder

import (
	"context"

	"staffing-hub/internal/database"
)

// Seeder loads one slice of reference data. Implementations must be safe to
// run against a database that already holds their rows.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

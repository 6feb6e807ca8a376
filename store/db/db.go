package db

import (
	"github.com/pkg/errors"

	"github.com/buddylabs/buddy/internal/profile"
	"github.com/buddylabs/buddy/store"
	"github.com/buddylabs/buddy/store/db/postgres"
	"github.com/buddylabs/buddy/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// SQLite is the default for single-device deployments; PostgreSQL is for
// fleet installations.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}

// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection
// pool with startup retries, goose schema migrations and a ping-based
// healthcheck, plus the error helpers stores use to classify driver
// errors.
//
// # Usage
//
//	cfg := config.MustLoad[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
package pg

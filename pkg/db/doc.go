// Package db connects to PostgreSQL through pgxpool and applies goose
// migrations.
//
// Connect retries with linear backoff while the database comes up. The
// repositories talk to the pool through the database/sql bridge returned by
// SQL, typed as the narrow DBTX interface so tests can substitute sqlmock.
//
//	pool, err := db.Connect(ctx, db.DefaultConfig(os.Getenv("DATABASE_URL")))
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations.FS, "", log); err != nil {
//		return err
//	}
//	users := user.NewPostgresRepository(db.SQL(pool))
package db

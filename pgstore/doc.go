// Package pgstore provides the PostgreSQL implementation of session.Store
// using the pgx/v5 connection pool.
//
// Rotation, touch and deactivation are single conditional UPDATE statements
// keyed on (session_id, active), so concurrent requests racing over the same
// record are settled by the database: exactly one conditional update wins,
// the rest observe zero affected rows.
//
// The table layout lives in schema.sql; apply it with your migration tool of
// choice before constructing the store.
//
// # Usage
//
//	var cfg pgstore.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err != nil {
//	    // database unreachable after retries
//	}
//	defer pool.Close()
//
//	store := pgstore.New(pool)
package pgstore

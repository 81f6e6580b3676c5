// Package database provides a minimal SELECT builder over pluggable drivers.
//
// A [Manager] owns the connection for the current configuration. Drivers are
// looked up by name in a [Registry] when [Manager.Configure] is called, so a
// typo in the driver name fails at startup rather than on the first query:
//
//	m := database.NewManager()
//	if err := m.Configure(database.Config{"driver": "xml", "path": "data"}); err != nil {
//		return err
//	}
//	conn, err := m.Instance()
//	if err != nil {
//		return err
//	}
//	rows, err := conn.Select("id", "name").
//		From("users").
//		WhereOp("name", "like", "B%").
//		Get(ctx)
//
// # Queries
//
// [Conn.Query] and [Conn.Select] return a fresh [Query] on every call, so
// concurrent requests never share build state. [Query.Get] and
// [Query.GetOne] always clear the build state, whether the call succeeds or not.
//
// [Query.Render] produces the literal form used in logs:
//
//	SELECT * FROM users WHERE id > '0' AND id < '2'
//
// Execution never uses the literal form. [Query.Build] replaces each value with
// the driver's placeholder and passes the values as arguments.
//
// # Drivers
//
//   - sql: database/sql over modernc.org/sqlite (default) or pgx
//   - postgres: a pgx connection pool with connect retries
//   - xml, yaml, json: load every data file of a directory into an in-memory
//     sqlite database, one table per file named after the file
//
// Custom drivers are added with [Registry.Register] and [WithRegistry].
//
// # Caching
//
// [WithCache] stores Get results in any [cache.Cache], keyed by a hash of the
// configuration, the placeholder statement and its arguments. Rows returned
// from the cache are copies.
//
// # Errors
//
// Backend failures are returned as [*ConnectionError], which carries the
// backend-native code and matches [ErrConnection] with errors.Is:
//
//	var ce *database.ConnectionError
//	if errors.As(err, &ce) {
//		log.Error("query failed", "code", ce.Code)
//	}
//
// Other failures are sentinel errors joined with their cause: [ErrInvalidQuery],
// [ErrUnknownDriver], [ErrDriverNotDefined], [ErrNoPath], [ErrInvalidPath],
// [ErrInvalidDataFile], [ErrNotConfigured] and [ErrNotConnected].
package database

// Package config loads application settings from YAML files and the environment.
//
// Named configuration files are merged per environment by a [Loader]:
//
//	config/
//	  database.yaml          # driver: sql, dsn: app.db
//	  production/
//	    database.yaml        # dsn: /var/lib/app/app.db
//
//	l := config.NewLoader("config", "production")
//	db, err := l.Get("database") // driver: sql, dsn: /var/lib/app/app.db
//
// Top-level keys of the environment file replace the base keys; nested
// mappings are not merged. A name with neither file returns [ErrNotFound].
//
// Process settings come from environment variables through struct tags,
// optionally read from .env files first:
//
//	if err := config.LoadEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
//		return err
//	}
//	settings, err := config.Parse[Settings]()
package config

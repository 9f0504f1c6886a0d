// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p              Server port (default 3318)
	-data-dir       Directory for the JSON store (default data)
	-t              Store type: json, sqlite or postgres (default json)
	-d              Database URL for the sqlite and postgres stores
	-draw-hash      Drawing area password hash
	-pool-hash      Pool management password hash
	-tz             Time zone for timestamps (default Asia/Shanghai)
	-roll-interval  Rolling animation interval (default 50ms)
	-log-level      logrus level (default info)
	-env-file       Optional dotenv file (default .env)

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATA_DIR           → -data-dir
	STORE_TYPE         → -t
	DATABASE_URL       → -d
	DRAW_PASSWORD_HASH → -draw-hash
	POOL_PASSWORD_HASH → -pool-hash
	TIME_ZONE          → -tz
	ROLL_INTERVAL      → -roll-interval
	LOG_LEVEL          → -log-level

The dotenv file is loaded after the flags are parsed and never overrides
variables already present in the environment. CLI flags take precedence
over both.

# Password Hashes

Hashes are the lowercase hex SHA-256 of the password, or a bcrypt hash:

	printf %s 'secret' | sha256sum

# Validation

ParseFlags returns an error if:

  - DRAW_PASSWORD_HASH or POOL_PASSWORD_HASH is missing
  - the store type is unknown, or sqlite/postgres is chosen without DATABASE_URL
  - the port, time zone, roll interval or log level does not parse
*/
package cliparse

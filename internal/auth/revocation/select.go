package revocation

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
)

// Shared picks the revocation backend other processes can see: Redis when a
// client is given, else Postgres. It returns nil when neither is available.
func Shared(db *sql.DB, client *redis.Client) Store {
	switch {
	case client != nil:
		return NewRedis(client)
	case db != nil:
		return NewPostgres(db)
	default:
		return nil
	}
}

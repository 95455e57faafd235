package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/fairyhunter13/ai-recruit-assistant/internal/adapter/httpserver"
)

// Pinger is anything readiness can probe: the pgx pool, the Kafka producer, Tika.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the optional backends a readiness probe covers. Nil entries are
// not configured and are left out, except the database which is always required.
type Dependencies struct {
	DB    Pinger
	Redis redis.Cmdable
	Kafka Pinger
	Tika  Pinger
}

// BuildReadinessChecks returns one named check per configured dependency.
func BuildReadinessChecks(deps Dependencies) []httpserver.Check {
	checks := []httpserver.Check{{Name: "db", Probe: func(ctx context.Context) error {
		if deps.DB == nil {
			return fmt.Errorf("db not configured")
		}
		return deps.DB.Ping(ctx)
	}}}
	if deps.Redis != nil {
		checks = append(checks, httpserver.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}})
	}
	if deps.Kafka != nil {
		checks = append(checks, httpserver.Check{Name: "kafka", Probe: deps.Kafka.Ping})
	}
	if deps.Tika != nil {
		checks = append(checks, httpserver.Check{Name: "tika", Probe: deps.Tika.Ping})
	}
	return checks
}

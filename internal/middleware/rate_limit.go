package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/anchor_vault/internal/chain"
)

const initRateLimitPrefix = "rl:vault-init:"

// InitializeRateLimit limits vault initialization attempts per fee payer. Only a signer whose
// signature verifies names the bucket; anything else is counted against the client IP.
func InitializeRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}

		key := initRateLimitPrefix + "ip:" + c.IP()
		var tx chain.Transaction
		if err := json.Unmarshal(c.Body(), &tx); err == nil {
			if payer, ok := tx.FeePayer(); ok {
				key = initRateLimitPrefix + "signer:" + payer.String()
			}
		}
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many initialization attempts, try again later")
		}
		return c.Next()
	}
}

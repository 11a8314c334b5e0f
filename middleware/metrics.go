package middleware

import (
	"strconv"
	"time"

	"klar/metrics"
	"klar/utils"

	"github.com/gofiber/fiber/v2"
)

// Metrics records the duration of every request by route pattern
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = utils.StatusCode(err)
		}

		metrics.RecordHTTPRequestDuration(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}

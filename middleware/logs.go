package middleware

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"Gaadi/Models"
)

// Paths that would flood the log.
var skipPaths = map[string]bool{
	"/health": true,
}

// RequestLogger logs every request through zerolog and persists mutating
// requests (with their JSON body) to the local audit table.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipPaths[c.Path()] {
			return c.Next()
		}

		start := time.Now()

		var body []byte
		if c.Method() != fiber.MethodGet && json.Valid(c.Body()) {
			body = make([]byte, len(c.Body()))
			copy(body, c.Body())
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		var userID uint
		if user, ok := c.Locals("user").(Models.User); ok {
			userID = user.ID
		}

		event := log.Info()
		if err != nil || status >= fiber.StatusInternalServerError {
			event = log.Error()
		} else if status >= fiber.StatusBadRequest {
			event = log.Warn()
		}
		event.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.IP()).
			Uint("user_id", userID).
			Msg("request")

		if c.Method() != fiber.MethodGet {
			entry := Models.RequestLog{
				Timestamp: start,
				Method:    c.Method(),
				Path:      c.Path(),
				Status:    status,
				LatencyMs: latency.Milliseconds(),
				IP:        c.IP(),
				UserID:    userID,
				Body:      datatypes.JSON(body),
			}
			if dbErr := Models.DB.Create(&entry).Error; dbErr != nil {
				log.Warn().Err(dbErr).Msg("failed to persist request log")
			}
		}

		return err
	}
}

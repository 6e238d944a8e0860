package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

// HTTPObserver принимает наблюдения о завершенных запросах.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// NewMetricsMiddleware передает метод, шаблон маршрута и итоговый статус наблюдателю.
func NewMetricsMiddleware(observer HTTPObserver) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = StatusFor(err)
		}
		observer.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

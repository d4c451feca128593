package observability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs each status request tagged with the stream it
// reports on. Prometheus scrapes log at trace level.
func RequestLogger(logger zerolog.Logger, status func() Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		st := status()

		var event *zerolog.Event
		switch {
		case route == "/metrics" && code == http.StatusOK:
			event = logger.Trace()
		case route == "/healthz" && code == http.StatusServiceUnavailable:
			event = logger.Info().Bool("connected", st.Connected)
		case code >= http.StatusInternalServerError:
			event = logger.Error()
		case code >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Debug()
		}

		event.
			Str("stream", st.StreamID).
			Str("endpoint", st.Endpoint).
			Str("route", route).
			Int("status", code).
			Dur("duration", time.Since(start)).
			Msg("observability.status_request")
	}
}

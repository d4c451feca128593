package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Status is the health snapshot of one frame stream.
type Status struct {
	StreamID  string `json:"stream_id"`
	Endpoint  string `json:"endpoint"`
	Connected bool   `json:"connected"`
	Buffered  int    `json:"buffered_bytes"`
	Frames    uint64 `json:"frames"`
	Discarded uint64 `json:"discarded_bytes"`
}

// NewStatusRouter serves /metrics and /healthz. status is called per request
// and must be safe to call from the HTTP goroutine.
func NewStatusRouter(logger zerolog.Logger, status func() Status) *gin.Engine {
	RegisterMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger, status))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		st := status()
		code := http.StatusOK
		if !st.Connected {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, st)
	})
	return r
}

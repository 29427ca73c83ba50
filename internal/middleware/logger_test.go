package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/charlesng35/dairyadmin/pkg/logger"
)

func TestLoggerLevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zap.DebugLevel)
	t.Cleanup(logger.Replace(zap.New(core)))

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/banks", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/banks/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/banks/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	cases := map[string]zapcore.Level{
		"/banks":         zapcore.InfoLevel,
		"/banks/missing": zapcore.WarnLevel,
		"/banks/broken":  zapcore.ErrorLevel,
	}
	for path, level := range cases {
		recorded.TakeAll()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))

		entries := recorded.FilterMessage("request").All()
		require.Len(t, entries, 1, path)
		require.Equal(t, level, entries[0].Level, path)

		fields := entries[0].ContextMap()
		require.Equal(t, path, fields["path"])
		require.Equal(t, "http", fields["module"])
		require.NotEmpty(t, fields["request_id"])
	}
}

package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func ctxWithQuery(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	p := Parse(ctxWithQuery(t, ""))
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultLimit, p.Limit)
	require.Equal(t, 0, p.Offset())
}

func TestParseExplicit(t *testing.T) {
	p := Parse(ctxWithQuery(t, "page=3&limit=50"))
	require.Equal(t, 3, p.Page)
	require.Equal(t, 50, p.Limit)
	require.Equal(t, 100, p.Offset())
}

func TestParseClampsLimit(t *testing.T) {
	p := Parse(ctxWithQuery(t, "limit=500"))
	require.Equal(t, MaxLimit, p.Limit)

	p = Parse(ctxWithQuery(t, "limit=0"))
	require.Equal(t, DefaultLimit, p.Limit)
}

func TestParseRejectsGarbage(t *testing.T) {
	p := Parse(ctxWithQuery(t, "page=abc&limit=-5"))
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultLimit, p.Limit)
}

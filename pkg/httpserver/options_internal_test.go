package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrepareAppliesOptions(t *testing.T) {
	t.Parallel()

	s := New(
		WithAddr("127.0.0.1:9999"),
		WithReadTimeout(time.Second),
		WithWriteTimeout(2*time.Second),
		WithIdleTimeout(3*time.Second),
	)
	h := http.NotFoundHandler()
	srv := s.prepare(h)

	assert.Equal(t, "127.0.0.1:9999", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	assert.NotNil(t, srv.Handler)
}

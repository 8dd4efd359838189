package middlewares_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcard/internal"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// serve runs req through an app with the given global middleware and a single GET / handler.
func serve(t *testing.T, req *http.Request, log *slog.Logger, h internal.HandlerFunc, mw ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()
	app := internal.New(
		internal.WithLogger(log),
		internal.WithMiddleware(mw...),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", h)
		})),
	)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

// logBuffer is a concurrency-safe JSON log sink.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) entries(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(b.buf.Bytes()))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func (b *logBuffer) find(t *testing.T, msg string) map[string]any {
	t.Helper()
	for _, e := range b.entries(t) {
		if e["msg"] == msg {
			return e
		}
	}
	return nil
}

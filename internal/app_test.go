package internal_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcard/internal"
	"github.com/dmitrymomot/postcard/pkg/htmx"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func serve(t *testing.T, app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

type ctxKey struct{}

func TestApp_Routing(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/hello/{name}", func(c internal.Context) error {
			return c.String(http.StatusOK, "hello "+c.Param("name")+c.QueryDefault("suffix", "!"))
		})
		r.Match([]string{http.MethodGet, http.MethodPost}, "/both", func(c internal.Context) error {
			return c.NoContent(http.StatusNoContent)
		})
		r.Route("/api", func(r internal.Router) {
			r.POST("/echo", func(c internal.Context) error {
				return c.JSON(http.StatusCreated, map[string]string{"to": c.Form("to")})
			})
		})
	})))

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/hello/mia", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello mia!", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/hello/sam?suffix=?", nil))
	assert.Equal(t, "hello sam?", w.Body.String())

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w = serve(t, app, httptest.NewRequest(method, "/both", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader("to=Mia"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = serve(t, app, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"to":"Mia"}`, w.Body.String())
}

func TestApp_MiddlewareOrderAndValues(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}
	setValue := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Set(ctxKey{}, "from-middleware")
			return next(c)
		}
	}

	app := internal.New(
		internal.WithMiddleware(mark("global"), setValue),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				order = append(order, "handler")
				return c.String(http.StatusOK, internal.ContextValue[string](c, ctxKey{}))
			}, mark("route-1"), mark("route-2"))
		})),
	)

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "from-middleware", w.Body.String())
	assert.Equal(t, []string{"global", "route-1", "route-2", "handler"}, order)
}

func TestApp_DefaultErrorHandler(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/http", func(c internal.Context) error {
			return c.Error(http.StatusBadGateway, "Something went wrong", internal.WithError(errors.New("provider down")))
		})
		r.GET("/plain", func(internal.Context) error {
			return errors.New("boom")
		})
		r.GET("/written", func(c internal.Context) error {
			_ = c.String(http.StatusOK, "done")
			return errors.New("late")
		})
	})))

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/http", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Something went wrong", w.Body.String())

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", w.Body.String())
}

func TestApp_CustomHandlers(t *testing.T) {
	t.Parallel()

	var handled error
	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled = err
			return c.JSON(http.StatusTeapot, map[string]string{"error": err.Error()})
		}),
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "no such page")
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.String(http.StatusMethodNotAllowed, "nope")
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/fail", func(internal.Context) error { return internal.ErrBadRequest("bad input") })
		})),
	)

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"error":"bad input"}`, w.Body.String())
	assert.True(t, internal.IsHTTPError(handled))

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no such page", w.Body.String())

	w = serve(t, app, httptest.NewRequest(http.MethodPost, "/fail", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "nope", w.Body.String())
}

func TestContext_ResponseHelpers(t *testing.T) {
	t.Parallel()

	page := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<main>page</main>")
		return err
	})
	fragment := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<div>fragment</div>")
		return err
	})

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/png", func(c internal.Context) error {
			return c.Blob(http.StatusOK, "image/png", []byte{0x89, 'P', 'N', 'G'})
		})
		r.GET("/go", func(c internal.Context) error {
			return c.Redirect(http.StatusSeeOther, "/")
		})
		r.GET("/page", func(c internal.Context) error {
			return c.RenderPartial(http.StatusUnprocessableEntity, page, fragment, htmx.WithRetarget("#preview"))
		})
		r.GET("/ctx", func(c internal.Context) error {
			deadline, ok := c.Deadline()
			require.False(t, ok)
			require.True(t, deadline.IsZero())
			require.NoError(t, c.Err())
			require.Nil(t, c.Value(ctxKey{}))
			return c.String(http.StatusOK, c.Header("X-Test"))
		})
	})))

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/png", nil))
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes())

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/go", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/go", nil)
	req.Header.Set(htmx.HeaderHXRequest, "true")
	w = serve(t, app, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", w.Header().Get(htmx.HeaderHXRedirect))

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/page", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "<main>page</main>", w.Body.String())
	assert.Empty(t, w.Header().Get(htmx.HeaderHXRetarget))

	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set(htmx.HeaderHXRequest, "true")
	w = serve(t, app, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<div>fragment</div>", w.Body.String())
	assert.Equal(t, "#preview", w.Header().Get(htmx.HeaderHXRetarget))

	req = httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set("X-Test", "yes")
	w = serve(t, app, req)
	assert.Equal(t, "yes", w.Body.String())
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHealthChecks(
		internal.WithReadinessCheck("assets", func(context.Context) error { return errors.New("bucket gone") }),
		internal.WithReadinessTimeout(time.Second),
	))

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "bucket gone")
}

func TestApp_StaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"public/app.css": {Data: []byte("body{}")},
	}
	app := internal.New(internal.WithStaticFiles("/static/", fsys, "public"))

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{}", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/static/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error { return c.String(http.StatusOK, "up") })
	})))

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	hookCalled := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run("127.0.0.1:0",
			internal.WithContext(ctx),
			internal.OnReady(func(a net.Addr) { addrCh <- a }),
			internal.ShutdownTimeout(time.Second),
			internal.ShutdownHook(func(context.Context) error {
				close(hookCalled)
				return nil
			}),
		)
	}()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr.String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "up", string(body))

	cancel()
	require.NoError(t, <-errCh)
	<-hookCalled
}

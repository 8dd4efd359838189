package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcard/handlers"
	"github.com/dmitrymomot/postcard/internal"
	"github.com/dmitrymomot/postcard/middlewares"
	"github.com/dmitrymomot/postcard/pkg/card"
	"github.com/dmitrymomot/postcard/pkg/mailer"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendPostcard(ctx context.Context, d mailer.Delivery) (string, error) {
	args := m.Called(ctx, d)
	return args.String(0), args.Error(1)
}

var sharedRenderer = sync.OnceValues(func() (*card.Renderer, error) {
	return card.New(context.Background(), card.NewFSSource(fstest.MapFS{}), card.DefaultLayout())
})

func newApp(t *testing.T, sender handlers.PostcardSender) *internal.App {
	t.Helper()

	renderer, err := sharedRenderer()
	require.NoError(t, err)

	return internal.New(
		internal.WithMiddleware(middlewares.RequestID()),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithHandlers(handlers.NewPostcard(renderer, sender, handlers.Config{MaxUploadBytes: 1 << 20})),
	)
}

func serve(t *testing.T, app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func formValues(to, from, message, email string) url.Values {
	return url.Values{
		"to":      {to},
		"from":    {from},
		"message": {message},
		"email":   {email},
	}
}

func postForm(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postMultipart(t *testing.T, path string, v url.Values, photo []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range v {
		for _, value := range values {
			require.NoError(t, mw.WriteField(key, value))
		}
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := range 30 {
		for x := range 40 {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPostcard_Form(t *testing.T) {
	t.Parallel()

	w := serve(t, newApp(t, &mockSender{}), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "📮 Send a Postcard")
	assert.Contains(t, w.Body.String(), `maxlength="500"`)
	assert.NotEmpty(t, w.Header().Get(middlewares.RequestIDHeader))
	assert.NotContains(t, w.Body.String(), "Postcard sent 💖")
}

func TestPostcard_Form_AfterSend(t *testing.T) {
	t.Parallel()

	w := serve(t, newApp(t, &mockSender{}), httptest.NewRequest(http.MethodGet, "/?sent=1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Postcard sent 💖")
}

func TestPostcard_Preview(t *testing.T) {
	t.Parallel()

	app := newApp(t, &mockSender{})

	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		status   int
		contains []string
	}{
		{
			name: "valid form",
			req: func(*testing.T) *http.Request {
				return postForm("/preview", formValues("Mia", "Sam", "See you soon", "mia@example.com"))
			},
			status:   http.StatusOK,
			contains: []string{"data:image/png;base64,", `value="Mia"`},
		},
		{
			name: "missing fields",
			req: func(*testing.T) *http.Request {
				return postForm("/preview", formValues("", "Sam", "", "mia@example.com"))
			},
			status:   http.StatusUnprocessableEntity,
			contains: []string{"Please fill all fields", "field is required"},
		},
		{
			name: "invalid email",
			req: func(*testing.T) *http.Request {
				return postForm("/preview", formValues("Mia", "Sam", "See you soon", "not-an-email"))
			},
			status:   http.StatusUnprocessableEntity,
			contains: []string{"Invalid email address", "must be a valid email address"},
		},
		{
			name: "message too long",
			req: func(*testing.T) *http.Request {
				return postForm("/preview", formValues("Mia", "Sam", strings.Repeat("x", 501), "mia@example.com"))
			},
			status:   http.StatusUnprocessableEntity,
			contains: []string{"Please check the highlighted fields"},
		},
		{
			name: "with photo",
			req: func(t *testing.T) *http.Request {
				return postMultipart(t, "/preview", formValues("Mia", "Sam", "See you soon", "a@b.co"), testPNG(t))
			},
			status:   http.StatusOK,
			contains: []string{"data:image/png;base64,", `name="photo_data"`},
		},
		{
			name: "photo is not an image",
			req: func(t *testing.T) *http.Request {
				return postMultipart(t, "/preview", formValues("Mia", "Sam", "See you soon", "a@b.co"), []byte("definitely not an image"))
			},
			status:   http.StatusUnprocessableEntity,
			contains: []string{"photo must be a PNG, JPEG, GIF or WebP image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serve(t, app, tt.req(t))

			assert.Equal(t, tt.status, w.Code)
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
		})
	}
}

func TestPostcard_Preview_HTMX(t *testing.T) {
	t.Parallel()

	req := postForm("/preview", formValues("", "", "", ""))
	req.Header.Set("HX-Request", "true")

	w := serve(t, newApp(t, &mockSender{}), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="postcard"`)
	assert.NotContains(t, w.Body.String(), "<!DOCTYPE html>")
}

func TestPostcard_Image(t *testing.T) {
	t.Parallel()

	app := newApp(t, &mockSender{})

	t.Run("query", func(t *testing.T) {
		t.Parallel()

		q := url.Values{"to": {"Mia"}, "from": {"Sam"}, "message": {"See you soon"}}
		w := serve(t, app, httptest.NewRequest(http.MethodGet, "/postcard.png?"+q.Encode(), nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		layout := card.DefaultLayout()
		assert.Equal(t, image.Rect(0, 0, layout.Width, layout.Height), img.Bounds())
	})

	t.Run("form post", func(t *testing.T) {
		t.Parallel()

		w := serve(t, app, postForm("/postcard.png", formValues("Mia", "Sam", "", "")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	})

	t.Run("validation errors as json", func(t *testing.T) {
		t.Parallel()

		w := serve(t, app, httptest.NewRequest(http.MethodGet, "/postcard.png?from=Sam", nil))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

		var body struct {
			Error  string `json:"error"`
			Fields []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"fields"`
			RequestID string `json:"request_id"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Please fill all fields", body.Error)
		require.Len(t, body.Fields, 1)
		assert.Equal(t, "to", body.Fields[0].Field)
		assert.NotEmpty(t, body.RequestID)
	})
}

func TestPostcard_Send(t *testing.T) {
	t.Parallel()

	t.Run("delivers", func(t *testing.T) {
		t.Parallel()

		sender := &mockSender{}
		sender.On("SendPostcard", mock.Anything, mock.MatchedBy(func(d mailer.Delivery) bool {
			return d.Email == "mia@example.com" &&
				d.To == "Mia" &&
				d.From == "Sam" &&
				d.Message == "See you soon" &&
				bytes.HasPrefix(d.PNG, []byte("\x89PNG"))
		})).Return("pc-1", nil).Once()

		w := serve(t, newApp(t, sender), postForm("/send", formValues(" Mia ", "Sam", "See you soon", "mia@example.com")))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/?sent=1", w.Header().Get("Location"))
		sender.AssertExpectations(t)
	})

	t.Run("htmx redirects via header", func(t *testing.T) {
		t.Parallel()

		sender := &mockSender{}
		sender.On("SendPostcard", mock.Anything, mock.Anything).Return("pc-2", nil).Once()

		req := postForm("/send", formValues("Mia", "Sam", "See you soon", "mia@example.com"))
		req.Header.Set("HX-Request", "true")
		w := serve(t, newApp(t, sender), req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/?sent=1", w.Header().Get("HX-Redirect"))
		assert.Empty(t, w.Header().Get("Location"))
		sender.AssertExpectations(t)
	})

	t.Run("provider failure is hidden", func(t *testing.T) {
		t.Parallel()

		sender := &mockSender{}
		sender.On("SendPostcard", mock.Anything, mock.Anything).
			Return("", errors.Join(mailer.ErrSendFailed, errors.New("resend: 401 invalid api key"))).Once()

		w := serve(t, newApp(t, sender), postForm("/send", formValues("Mia", "Sam", "See you soon", "mia@example.com")))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Something went wrong. Please try again later.")
		assert.NotContains(t, w.Body.String(), "invalid api key")
		sender.AssertExpectations(t)
	})

	t.Run("invalid input is not sent", func(t *testing.T) {
		t.Parallel()

		sender := &mockSender{}

		w := serve(t, newApp(t, sender), postForm("/send", formValues("Mia", "Sam", "See you soon", "not-an-email")))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), `value="not-an-email"`)
		sender.AssertNotCalled(t, "SendPostcard", mock.Anything, mock.Anything)
	})
}

var photoDataRe = regexp.MustCompile(`name="photo_data" value="([^"]+)"`)

func TestPostcard_SendKeepsPreviewedPhoto(t *testing.T) {
	t.Parallel()

	var delivered mailer.Delivery
	sender := &mockSender{}
	sender.On("SendPostcard", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { delivered = args.Get(1).(mailer.Delivery) }).
		Return("pc-3", nil).Once()
	app := newApp(t, sender)

	values := formValues("Mia", "Sam", "See you soon", "mia@example.com")
	w := serve(t, app, postMultipart(t, "/preview", values, testPNG(t)))
	require.Equal(t, http.StatusOK, w.Code)

	m := photoDataRe.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2, "preview must carry the photo")

	values.Set("photo_data", m[1])
	w = serve(t, app, postForm("/send", values))
	require.Equal(t, http.StatusSeeOther, w.Code)
	sender.AssertExpectations(t)

	img, err := png.Decode(bytes.NewReader(delivered.PNG))
	require.NoError(t, err)

	photo := card.DefaultLayout().Photo
	r, g, b, _ := img.At(photo.X+10, photo.Y+10).RGBA()
	assert.Equal(t, [3]uint32{200, 80, 40}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

func TestPostcard_PhotoDataRejected(t *testing.T) {
	t.Parallel()

	app := newApp(t, &mockSender{})

	tests := []struct {
		name string
		data string
	}{
		{"not base64", "!!!"},
		{"not a png", "bm90IGFuIGltYWdl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values := formValues("Mia", "Sam", "See you soon", "mia@example.com")
			values.Set("photo_data", tt.data)
			w := serve(t, app, postForm("/preview", values))

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, w.Body.String(), "could not read the photo")
		})
	}
}

func TestPostcard_UploadTooLarge(t *testing.T) {
	t.Parallel()

	photo := bytes.Repeat([]byte{0xff}, 3<<20)
	req := postMultipart(t, "/preview", formValues("Mia", "Sam", "See you soon", "a@b.co"), photo)

	w := serve(t, newApp(t, &mockSender{}), req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "The upload is too large.")
}

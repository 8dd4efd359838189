package internal

// Handler declares routes on a router.
//
//	type PostcardHandler struct{ renderer *card.Renderer }
//
//	func (h *PostcardHandler) Routes(r internal.Router) {
//		r.GET("/", h.form)
//		r.POST("/preview", h.preview)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// A non-nil error is passed to the app's ErrorHandler unless a response was already written.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error

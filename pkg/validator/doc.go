// Package validator provides small, composable validation rules that collect
// field errors into ValidationErrors.
//
// Rules are plain values built by constructor functions and evaluated with
// Apply:
//
//	err := validator.Apply(
//		validator.RequiredString("to", req.To),
//		validator.MaxRunes("message", req.Message, 500),
//		validator.EmailShape("email", req.Email),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//		// ve.Has("email"), ve.Get("email") ...
//	}
//
// Apply returns nil when every rule passes, otherwise a ValidationErrors value
// listing the failed rules in the order they were given. Use errors.As or
// ExtractValidationErrors to recover it from a wrapped error.
package validator

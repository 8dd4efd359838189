// Package sanitizer strips markup from user-supplied text using bluemonday's
// strict policy. Postcard names and messages pass through it before they are
// placed into email bodies.
package sanitizer

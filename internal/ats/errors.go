package ats

import (
	"errors"
	"fmt"
)

// FetchError is an HTTP or decode failure on one page/offset. Retried up to
// the client's budget, then the page is abandoned without failing the
// employer's whole fetch.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FirstPageError means the request that establishes total/pagination failed.
// The employer's crawl aborts for this run and no jobs may be closed.
type FirstPageError struct {
	Err error
}

func (e *FirstPageError) Error() string { return fmt.Sprintf("first page: %v", e.Err) }

func (e *FirstPageError) Unwrap() error { return e.Err }

// IsFirstPage reports whether err (anywhere in its chain) is a FirstPageError.
func IsFirstPage(err error) bool {
	var fpe *FirstPageError
	return errors.As(err, &fpe)
}

package valuation

import "errors"

// ErrMalformedSubject is returned when the subject listing itself
// lacks the fields needed to value it. A sparse analog pool is not an
// error: the report degrades to zero statistics and an in_market
// verdict instead.
var ErrMalformedSubject = errors.New("subject listing has no usable price per meter")

package domain

import "errors"

var (
	// ErrAlreadyStored is returned by Save when the storage-level unique
	// constraint on tweet_id rejects the insert. The pre-check in the filter
	// is only an optimization; this is the actual at-most-once guarantee.
	ErrAlreadyStored = errors.New("tweet already stored")
)

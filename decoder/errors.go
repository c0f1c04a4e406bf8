package decoder

import "errors"

// Sentinel errors classify request-scoped failures so handlers can decide
// whether to log-and-drop, reply with nothing, or escalate. Startup
// failures (missing config, unreadable banks) are never wrapped in these;
// they propagate to log.Fatalf instead.
var (
	// ErrBadRequest marks a malformed client payload: missing fields,
	// mismatched point-array lengths, an unknown TASK value.
	ErrBadRequest = errors.New("decoder: bad request")

	// ErrEmptyCandidateSet marks a request that pruned every template out
	// of contention, producing a ranking with nothing left to return.
	ErrEmptyCandidateSet = errors.New("decoder: empty candidate set")

	// ErrTransientNetwork marks a failure talking to a downstream peer (the
	// neural LM endpoint, a callback connection) that is expected to
	// recover and should not take the service down.
	ErrTransientNetwork = errors.New("decoder: transient network error")
)

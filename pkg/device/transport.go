package device

import (
	"io"
	"net/http"
	"sync"
)

// Doer abstracts HTTP calls for testability
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RecordingDoer forwards requests to Next and remembers each RPC it has
// seen, in order.
type RecordingDoer struct {
	Next Doer

	mu    sync.Mutex
	calls []RecordedCall
}

// RecordedCall is one request seen by a RecordingDoer.
type RecordedCall struct {
	Method string
	Body   []byte
}

func (r *RecordingDoer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			body, _ = io.ReadAll(rc)
			_ = rc.Close()
		}
	}
	r.mu.Lock()
	r.calls = append(r.calls, RecordedCall{Method: methodFromPath(req.URL.Path), Body: body})
	r.mu.Unlock()
	return r.Next.Do(req)
}

// Calls returns a copy of the recorded requests.
func (r *RecordingDoer) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedCall(nil), r.calls...)
}

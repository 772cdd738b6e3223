// Package fixtures provides HTTP test servers for exercising the API client.
package fixtures

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Reply is one scripted response.
type Reply struct {
	Status  int
	Body    string
	Headers map[string]string
}

// Attempt records one request the server received.
type Attempt struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// APIServer replays Reply values in order and records every attempt. Once
// the script is exhausted the last reply repeats; an empty script answers
// 200 with an empty JSON object.
type APIServer struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []Reply
	attempts []Attempt
}

// NewAPIServer starts a server that is closed when the test ends.
func NewAPIServer(t *testing.T, replies ...Reply) *APIServer {
	t.Helper()
	s := &APIServer{replies: replies}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Repeat returns n copies of r.
func Repeat(r Reply, n int) []Reply {
	out := make([]Reply, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// JSONError is a reply with a {"message": ...} body.
func JSONError(status int, message string) Reply {
	return Reply{
		Status:  status,
		Body:    `{"message":"` + message + `"}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	}
}

func (s *APIServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	idx := len(s.attempts)
	s.attempts = append(s.attempts, Attempt{
		Method: r.Method,
		Path:   r.URL.RequestURI(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	reply := Reply{Status: http.StatusOK, Body: "{}"}
	if n := len(s.replies); n > 0 {
		reply = s.replies[min(idx, n-1)]
	}
	s.mu.Unlock()

	for k, v := range reply.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}

// Attempts returns a copy of the attempts received so far.
func (s *APIServer) Attempts() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// Hits returns the number of attempts received so far.
func (s *APIServer) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// BaseURL returns the server URL with the /api/v1/ prefix the client expects.
func (s *APIServer) BaseURL() string {
	return s.URL + "/api/v1/"
}

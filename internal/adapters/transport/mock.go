package transport

import (
	"context"
	"encoding/json"
	"sync"
)

// Call records one request made through a MockClient
type Call struct {
	Method string
	Path   string
	Body   []byte
}

// MockClient is an in-memory Client for testing. Responses are returned in
// order; once exhausted the last one repeats.
type MockClient struct {
	mu        sync.Mutex
	calls     []Call
	responses []mockResult
}

type mockResult struct {
	resp *Response
	err  error
}

// NewMockClient creates a new MockClient instance
func NewMockClient() *MockClient {
	return &MockClient{}
}

// RespondJSON queues a 200 response with v encoded as the body
func (m *MockClient) RespondJSON(v interface{}) *MockClient {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return m.RespondRaw(data)
}

// RespondRaw queues a 200 response with the given body
func (m *MockClient) RespondRaw(body []byte) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResult{resp: &Response{StatusCode: 200, Body: body}})
	return m
}

// Fail queues an error
func (m *MockClient) Fail(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResult{err: err})
	return m
}

// Do implements Client.Do
func (m *MockClient) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return nil, &Error{Op: method, Path: stripQuery(path), Err: err}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Path: path, Body: data})

	if len(m.responses) == 0 {
		return &Response{StatusCode: 200, Body: []byte("{}")}, nil
	}
	next := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return next.resp, next.err
}

// Calls returns a copy of the recorded calls
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

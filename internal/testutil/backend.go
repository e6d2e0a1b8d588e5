// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Call records one request made through FakeBackend.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// FakeBackend implements backend.Client with canned responses keyed by "METHOD path".
type FakeBackend struct {
	mu        sync.Mutex
	responses map[string]any
	errors    map[string]error
	delays    map[string]time.Duration
	calls     []Call
}

// NewFakeBackend returns an empty fake.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		responses: make(map[string]any),
		errors:    make(map[string]error),
		delays:    make(map[string]time.Duration),
	}
}

// On registers the data returned for method and path.
func (f *FakeBackend) On(method, path string, data any) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = data
	return f
}

// Fail registers an error for method and path.
func (f *FakeBackend) Fail(method, path string, err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[method+" "+path] = err
	return f
}

// Slow makes method and path take d before answering.
func (f *FakeBackend) Slow(method, path string, d time.Duration) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[method+" "+path] = d
	return f
}

// Do satisfies backend.Client. Unregistered routes return an error.
func (f *FakeBackend) Do(_ context.Context, method, path string, query url.Values, body, out any) error {
	key := method + " " + path

	f.mu.Lock()
	delay := f.delays[key]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Method: method, Path: path, Query: query, Body: body})

	if err, ok := f.errors[key]; ok {
		return err
	}
	data, ok := f.responses[key]
	if !ok {
		return fmt.Errorf("fake backend: no response for %s", key)
	}
	if out == nil || data == nil {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Calls returns the recorded calls.
func (f *FakeBackend) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many times method and path were requested.
func (f *FakeBackend) Count(method, path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

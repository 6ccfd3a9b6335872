// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// fault is a canned answer for the next matching request.
type fault struct {
	status      int
	contentType string
	body        []byte
	envelope    *errorEnvelope
}

// Gate holds one response until released. See [Server.Pause].
type Gate struct {
	arrived     chan struct{}
	release     chan struct{}
	arriveOnce  sync.Once
	releaseOnce sync.Once
}

func newGate() *Gate {
	return &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
}

// Arrived is closed once the held response has been computed.
func (gate *Gate) Arrived() <-chan struct{} { return gate.arrived }

// Release lets the held response go. Safe to call more than once.
func (gate *Gate) Release() {
	gate.releaseOnce.Do(func() { close(gate.release) })
}

func (gate *Gate) signal() {
	gate.arriveOnce.Do(func() { close(gate.arrived) })
}

// # Fault Injection

// Fail makes the next request to method + path answer status with the
// {code, message} error body instead of reaching the handler.
func (server *Server) Fail(method, path string, status int, code, message string) {
	server.addFault(method, path, fault{
		status:   status,
		envelope: &errorEnvelope{Code: code, Message: message},
	})
}

// FailRaw makes the next request to method + path answer status with an
// arbitrary body, e.g. an HTML error page from a proxy.
func (server *Server) FailRaw(method, path string, status int, contentType, body string) {
	server.addFault(method, path, fault{
		status:      status,
		contentType: contentType,
		body:        []byte(body),
	})
}

// Pause holds the next response to method + path. The handler runs and its
// state changes are applied immediately, but the answer is only written once
// the returned gate is released. This reproduces a response in flight.
func (server *Server) Pause(method, path string) *Gate {
	gate := newGate()

	server.mu.Lock()
	key := route(method, path)
	server.gates[key] = append(server.gates[key], gate)
	server.issued = append(server.issued, gate)
	server.mu.Unlock()

	return gate
}

func (server *Server) addFault(method, path string, f fault) {
	server.mu.Lock()
	defer server.mu.Unlock()

	key := route(method, path)
	server.faults[key] = append(server.faults[key], f)
}

// take pops the first fault and gate registered for key.
func (server *Server) take(key string) (*fault, *Gate) {
	server.mu.Lock()
	defer server.mu.Unlock()

	server.hits[key]++

	var pending *fault
	if queue := server.faults[key]; len(queue) > 0 {
		pending = &queue[0]
		server.faults[key] = queue[1:]
	}

	var gate *Gate
	if queue := server.gates[key]; len(queue) > 0 {
		gate = queue[0]
		server.gates[key] = queue[1:]
	}

	return pending, gate
}

// intercept counts the request, then applies a pending fault or gate.
func (server *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		pending, gate := server.take(routeOf(request))

		if pending != nil {
			writeFault(writer, pending)
			return
		}
		if gate == nil {
			next.ServeHTTP(writer, request)
			return
		}

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, request)
		gate.signal()

		select {
		case <-gate.release:
		case <-request.Context().Done():
			return
		}

		for name, values := range recorder.Header() {
			writer.Header()[name] = values
		}
		writer.WriteHeader(recorder.Code)
		_, _ = writer.Write(recorder.Body.Bytes())
	})
}

func writeFault(writer http.ResponseWriter, f *fault) {
	if f.envelope != nil {
		writeJSON(writer, f.status, f.envelope)
		return
	}
	if f.contentType != "" {
		writer.Header().Set("Content-Type", f.contentType)
	}
	writer.WriteHeader(f.status)
	_, _ = writer.Write(f.body)
}

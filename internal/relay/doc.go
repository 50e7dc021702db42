// Package relay provides an HTTP implementation of the domain.RelayClient
// interface.
//
// The relay is an untrusted store-and-forward service holding conversation
// metadata, wrapped epoch keys, and chain links; everything it serves is
// verified cryptographically by the caller. All requests are JSON over HTTP
// and accept a context for cancellation and deadlines. Non-2xx statuses are
// returned as errors carrying the HTTP method, path, and status text; a 409
// on rotation submission maps to rotation.ErrStaleEpoch.
package relay

// Package keycache holds the unwrapped epoch private keys for one login
// session.
//
// The cache is the only place plaintext epoch keys live. Inserts are
// first-write-wins and every observable mutation bumps a monotonic version
// and synchronously notifies subscribers, giving reactive consumers a
// pull-based staleness check: subscribe, and on notification re-read
// Version.
//
// Concurrency: all mutations are serialised behind a mutex; notifications
// run outside the critical section but still before the mutating call
// returns.
package keycache

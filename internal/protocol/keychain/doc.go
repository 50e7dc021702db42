// Package keychain reconstructs a conversation's historical epoch keys from
// server-supplied wrapped material.
//
// The relay serves two kinds of entries: wraps (an epoch key encrypted to
// the account key) and chain links (epoch N-1's key derivable from epoch
// N's). Neither is trusted: every recovered key must reproduce its keyed
// confirmation hash before it is cached.
//
// Concurrency: Resolve may run concurrently with itself for overlapping
// epochs; the cache's first-write-wins contract makes the first successful
// write for each epoch the one that sticks.
package keychain

// Package main runs the in-memory HTTP relay used by veilchat during
// development and tests. It stores conversation metadata, wrapped epoch
// keys, and chain links; it never sees plaintext or epoch private keys.
//
// HTTP API
//
//	POST /conversations
//	    Register a conversation at epoch 1 with its initial wraps.
//
//	GET /conversations/{id}
//	    Return the conversation metadata: current epoch and encrypted title.
//
//	DELETE /conversations/{id}
//	    Drop the conversation and everything stored for it.
//
//	GET /conversations/{id}/keychain?holder=HEX
//	    Return the wraps addressed to the holder plus the chain links back
//	    to the holder's visibility horizon.
//
//	GET /conversations/{id}/roster
//	    Return the current holder roster.
//
//	POST /conversations/{id}/rotate
//	    Advance the epoch. Rejected with 409 Conflict when the submitted
//	    expected epoch no longer matches the current one.
//
//	POST /conversations/{id}/wraps
//	    Store a direct wrap of the current epoch key for a new holder.
//
//	POST /conversations/{id}/privilege
//	    Change a roster entry's privilege. Metadata only, no rotation.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Responses are JSON. Non-2xx statuses carry a short error message.
//   - The default listen address is :8080.
//
// The relay is an untrusted party: clients verify every epoch key against
// its confirmation hash before trusting anything served here.
package main

// Package membership mutates who holds a conversation: adds (with or
// without history), removals, link revocation, leaving, and privilege
// changes. Mutations that must shut off future access rotate the epoch.
package membership

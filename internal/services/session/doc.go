// Package session scopes key material to one login.
//
// A session owns the unlocked account key pair and the in-memory epoch key
// cache. It is the construction and teardown point the rest of the app goes
// through: Login installs the account key, Sync pulls and resolves key
// chains, Logout zeroes everything. No epoch key outlives its session.
package session

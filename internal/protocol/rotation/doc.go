// Package rotation computes and submits new conversation epochs.
//
// A rotation is the unit of membership enforcement: whoever is absent from
// the new holder set gets no wrap for the new epoch and no chain-link path
// into it, which is what makes removal forward secret. The whole wrap set is
// computed and submitted as one request, so other members observe either the
// old or the new epoch, never a partially applied one.
//
// Concurrency between rotating clients is resolved server-side through the
// ExpectedEpoch compare-and-swap; this package enforces no mutual exclusion
// of its own.
package rotation

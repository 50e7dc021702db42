package types

// Identity holds the long-lived account key pair. The private half is the
// only secret this subsystem ever uses to unwrap epoch keys; it is unlocked
// at login and never persisted unencrypted.
type Identity struct {
	Pub  X25519Public  `json:"pub"`
	Priv X25519Private `json:"priv"`
}

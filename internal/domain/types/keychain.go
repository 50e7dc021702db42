package types

// WrapEntry is one epoch private key encrypted to a single holder's public
// key, as served by the relay. Binary fields cross the wire base64-encoded;
// encoding/json handles that for []byte.
type WrapEntry struct {
	EpochNumber      Epoch  `json:"epochNumber"`
	Wrap             []byte `json:"wrap"`
	ConfirmationHash []byte `json:"confirmationHash"`
	VisibleFromEpoch Epoch  `json:"visibleFromEpoch"`
}

// ChainLinkEntry lets the holder of epoch EpochNumber's private key derive
// epoch EpochNumber-1's private key. Links only ever point backward.
type ChainLinkEntry struct {
	EpochNumber      Epoch  `json:"epochNumber"`
	ChainLink        []byte `json:"chainLink"`
	ConfirmationHash []byte `json:"confirmationHash"`
}

// KeyChain is the relay's answer to a key-chain fetch for one conversation.
// Nothing in it is trusted until it has passed confirmation-hash
// verification on the client.
type KeyChain struct {
	Wraps        []WrapEntry      `json:"wraps"`
	ChainLinks   []ChainLinkEntry `json:"chainLinks"`
	CurrentEpoch Epoch            `json:"currentEpoch"`
}

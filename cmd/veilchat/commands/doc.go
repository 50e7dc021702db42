// Package commands defines the veilchat CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init           Create the local account key pair
//   - fingerprint    Print the account fingerprint and public key
//   - create         Create a conversation at epoch 1
//   - sync           Fetch the key chain and resolve epoch keys
//   - epochs         List locally resolved epochs
//   - member add     Add a member (with or without history)
//   - member remove  Remove a member and rotate
//   - member revoke-link    Revoke a shareable link and rotate
//   - member set-privilege  Change a member's privilege
//   - leave          Leave (or, as sole owner, delete) a conversation
//
// # Implementation
//
// The root command loads the YAML config, builds the dependency graph
// (stores, relay client, services) before any subcommand runs, and tears it
// down afterwards so key material is zeroed and the chain cache is closed.
package commands

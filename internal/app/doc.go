// Package app wires application dependencies for the CLI.
//
// It loads Config (defaults, then an optional YAML file, then environment,
// then flags applied by the caller), builds the credential store and
// identity service, and assembles a Bot: relay client, token signer, reply
// generator, message dispatcher and session, all sharing one logger.
package app

// Package commands defines the rtchat CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init         Seal the bot secret under a passphrase
//   - fingerprint  Print the bot secret fingerprint
//   - token        Print a freshly issued token
//   - run          Authenticate to the server and answer messages
//
// # Implementation
//
// The root command resolves the home directory, loads config.yaml, applies
// environment and flag overrides and builds the logger and app.Wire before
// any subcommand runs.
package commands

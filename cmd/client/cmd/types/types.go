// Package types holds the context keys shared between the root command and
// the subcommand packages, avoiding an import cycle back into cmd.
package types

type contextKey string

// ClientAppKey carries the *client.App through the cobra command context.
const ClientAppKey contextKey = "clientApp"

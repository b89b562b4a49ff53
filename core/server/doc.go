// Package server holds configuration for the read-only HTTP data server.
//
// The server exposes the generated data tree and CDN manifest to downstream
// asset tooling. Routing itself lives in the feature packages; this package
// only owns the listen/auth configuration shared by them.
package server

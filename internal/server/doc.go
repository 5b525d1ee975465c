// Package server hosts the Fiber HTTP service: the middleware chain, the
// browse routes that hand (hash, path) targets to a BrowseHandler, and the
// diagnostics surface under /-/. Dependencies are passed in explicitly so
// tests can inject fake handlers.
package server

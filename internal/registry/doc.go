// Package registry is a client for Open VSX style extension registries. It
// searches the registry, fetches extension metadata and computes the download
// URL of a package artifact.
package registry

// Package extension manages the per-project extension list (appspace.yaml)
// and syncs it: registry declarations are loaded through the package loader,
// GitHub declarations are resolved to an entry-point URL, and every loaded
// package has its contributed commands registered with the host.
package extension

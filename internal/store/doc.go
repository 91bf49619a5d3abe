// Package store is the key-value persistence the loader caches packages in.
// Two backends are provided: a single-file SQLite database and any
// filesystem-like location reachable through viant/afs (local files, memory,
// cloud buckets). Open picks one from a URL.
package store

// Package loader acquires extension packages. It downloads a package
// artifact, unpacks the zip archive, reads the package.json manifest,
// catalogs every file as text, works out the entry point and caches the
// result both in memory and in a persistent store.
//
// A load moves through the states Unresolved, Downloading, Unpacked, Cached
// and Ready, or ends in Failed. Repeated loads of the same extension version
// are served from the in-memory repository and then from the persistent
// store before any network request is made.
package loader

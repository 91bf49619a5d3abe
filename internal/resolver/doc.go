// Package resolver discovers the entry point of an extension hosted in a
// GitHub repository. It consults the repository's package.json through the
// GitHub contents API and falls back to probing conventional file names
// against a CDN that serves (and transpiles) repository files.
package resolver

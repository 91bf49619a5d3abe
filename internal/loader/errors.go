package loader

import (
	"errors"

	"github.com/kispace-io/appspace/internal/manifest"
)

var (
	// ErrNoDownloadURL is returned when no artifact URL can be derived for a
	// registry extension.
	ErrNoDownloadURL = errors.New("no download URL for extension")
	// ErrDownloadFailed is returned on a transport failure or non-success
	// status while fetching an artifact.
	ErrDownloadFailed = errors.New("package download failed")
	// ErrInvalidArchive is returned when the payload is not a readable zip.
	ErrInvalidArchive = errors.New("invalid package archive")
	// ErrManifestMissing is returned when the archive has no package.json at
	// a recognised location.
	ErrManifestMissing = errors.New("package manifest not found")
	// ErrManifestParse is returned when package.json is malformed.
	ErrManifestParse = manifest.ErrManifestParse
)

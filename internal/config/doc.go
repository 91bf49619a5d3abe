// Package config manages user-level settings stored at ~/.appspace/config.yaml
// (or $APPSPACE_HOME/config.yaml). Values come from the file and from
// APPSPACE_* environment variables; anything unset falls back to Defaults.
package config

// Package hostapi emulates the subset of the extension-host API that loaded
// extensions run against. An Emulator is scoped to one package: it owns the
// extension's RuntimeContext and exposes the host surface as a set of small
// capability interfaces (Commands, Workspace, FileSystem, Window, Extensions)
// bound to the workbench's command registry and file resources.
//
// Callbacks are plain Go functions. Arguments passed to ExecuteCommand are
// converted to the callback's parameter types; a trailing error result and
// panics are reported to the caller.
package hostapi

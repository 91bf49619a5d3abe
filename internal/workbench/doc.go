// Package workbench provides in-process implementations of the collaborators
// an extension host talks to: a command registry that dispatches by id, and
// workspace file resources backed by viant/afs.
package workbench

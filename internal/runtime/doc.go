// Package runtime provides the execution context for gitly commands.
//
// It encapsulates the shared dependencies a command needs: the resolved
// configuration, the logger, the recent repositories store and the command
// registry the GUI bridge dispatches into.
package runtime

// Package vm runs instance commands against the daemon.
//
// It resolves which instances a command targets and issues the command's
// primary daemon call. Commands that may target the primary instance
// (start, shell, exec) provision it on demand:
//   - Issue the primary call
//   - If the primary instance alone is missing, launch it, mount the
//     user's home directory into it and issue the primary call once more
//   - Any other failure is final
//
// The state machine never runs the primary call more than twice.
//
// Error Handling:
//
// Failed daemon calls are returned as *CallError, which renders the
// standard "<command> failed: <message>" report including the instances
// named in the daemon's per-instance error detail. Succeeded steps are
// never rolled back: an instance launched before a failing mount stays
// running.
package vm

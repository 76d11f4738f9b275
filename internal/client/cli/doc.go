// Package cli provides the interactive MedScan command-line client.
//
// It wires configuration, the local session store, the selected backend
// (remote API or the offline one) and an interactive REPL. Typical flow:
// restore the session, show onboarding on first start, start a background
// connectivity watcher, and execute user commands.
//
// Key features:
//   - Sign up / Login / Logout, password reset (forgot, verify, reset)
//   - Medicine search by name and by photo (scan)
//   - Saved medicine history and profile editing
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli

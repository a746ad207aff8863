// Package scan locates target directories (by default node_modules) below a root.
//
// A fixed pool of workers consumes a shared queue of pending directories.
// Matched directories are reported and never descended into, hidden
// directories are skipped, and unreadable subtrees are silently dropped.
// The scan finishes once the queue is empty and no worker holds a directory.
package scan

// Package git wraps the go-git operations the hooks need on the firmware repository:
// locating the repository root and hooks directory, and listing changed files.
package git

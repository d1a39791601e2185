/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
// Package exitcode provides the process exit codes for scriptcat.
//
// The catalogue tools only distinguish success (including warnings-only runs)
// from failure, so every hard error, whether fatal configuration trouble or an
// accumulated validation finding, exits with Failure.
package exitcode

// Exit codes for scriptcat CLI
const (
	Success = 0
	Failure = 1
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	default:
		return "Unknown error"
	}
}

// FromErrorCount maps an accumulated error count onto an exit code. Warnings
// never influence the result.
func FromErrorCount(errors int) int {
	if errors > 0 {
		return Failure
	}
	return Success
}

// Package errors provides structured, actionable error messages for usershell.
//
// Every error carries a stable code (e.g. "E120") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A category used to group related failures
//
// # Error Categories
//
//   - config: configuration file missing, unreadable or invalid
//   - storage: durable storage backend could not be opened
//   - state: programmer errors such as reading stores outside their provider
//   - api: remote API misuse detected before a request is sent
//   - cli: command-line usage problems
//
// Transport and HTTP status errors are NOT wrapped in this package; they are
// returned to callers unmodified by pkg/httpclient.
//
// # Usage
//
//	err := errors.New("E141").
//	    WithDetail("No usershell.json found in /home/me").
//	    WithSuggestion("Run 'usershell login' or pass --config")
//
//	fmt.Println(err.Format())
package errors

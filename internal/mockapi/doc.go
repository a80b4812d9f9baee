// Package mockapi is an in-process implementation of the user REST API.
//
// It backs the package tests and the "usershell mock-server" command.
// Accounts live in memory; passwords are bcrypt hashes; every /user route
// requires a bearer token issued by AddUser.
package mockapi

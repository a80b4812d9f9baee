// Package api provides typed calls for the /user endpoints of the backend.
package api

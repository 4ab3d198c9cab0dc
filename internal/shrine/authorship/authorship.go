// Package authorship computes the `user@host` string Secret.CreatedBy/
// UpdatedBy carry, shared by the CLI commands and the agent's PUT /keys
// handler so both authorship trails look identical regardless of which
// process performed the write.
package authorship

import "os"

// Current returns "user@host" for the running process, falling back to
// placeholder values when the environment or hostname lookup is
// unavailable rather than failing the write outright.
func Current() string {
	user := os.Getenv("USER")
	if user == "" {
		if u := os.Getenv("USERNAME"); u != "" {
			user = u
		} else {
			user = "unknown"
		}
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return user + "@" + host
}

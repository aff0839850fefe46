// Package application wires configuration into the run store, the assignment
// runner, the HTTP handlers and the server, keeping the main package focused
// on flag parsing and shutdown.
package application

// Package application provides application initialization and dependency wiring.
// It creates the item storage, solver, handlers, router and HTTP server from
// a resolved configuration so that the main package only parses flags and
// dispatches commands.
package application

// Package server holds HTTP server configuration for the serve command.
package server

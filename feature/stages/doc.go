// Package stages exposes the stage store over HTTP for inspecting
// pipeline state.
package stages

// Package pipeline provides the step registry and the sequential recipe
// runner. Step factories validate configuration up front, so a recipe
// either starts with every step well-formed or not at all; execution
// errors are then handled per the recipe's on_error action.
package pipeline

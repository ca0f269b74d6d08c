// Package respond standardizes the JSON responses every handler emits.
// Success bodies are rendered as-is; errors carry a single "error" field
// so clients have one shape to parse.
package respond

import (
	"net/http"

	"github.com/go-chi/render"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// OK writes v with a 200.
func OK(w http.ResponseWriter, r *http.Request, v any) {
	JSON(w, r, http.StatusOK, v)
}

// Created writes v with a 201.
func Created(w http.ResponseWriter, r *http.Request, v any) {
	JSON(w, r, http.StatusCreated, v)
}

// Message writes {"message": msg} with a 200.
func Message(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, r, http.StatusOK, messageBody{Message: msg})
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, errorBody{Error: msg})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, http.StatusBadRequest, msg)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, http.StatusNotFound, msg)
}

// Unauthorized writes a 401 error.
func Unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, http.StatusUnauthorized, msg)
}

// Forbidden writes a 403 error.
func Forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, http.StatusForbidden, msg)
}

// Internal writes a 500 error with a generic message so internals never
// leak to clients.
func Internal(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, "internal server error")
}

// BadGateway writes a 502 error. Used when a stored payload cannot be
// retrieved from the backing store.
func BadGateway(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, http.StatusBadGateway, msg)
}

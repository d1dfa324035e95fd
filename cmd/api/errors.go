package main

import (
	"net/http"
)

// ErrorResponse is the body of every 4xx and most 5xx responses.
//
//	@name	ErrorResponse
type ErrorResponse struct {
	Error string `json:"error" example:"missing required fields"`
}

// ErrorDetailResponse is returned when creating an entry fails unexpectedly.
//
//	@name	ErrorDetailResponse
type ErrorDetailResponse struct {
	Error  string `json:"error" example:"failed to create entry"`
	Detail string `json:"detail" example:"connection refused"`
}

// ForbiddenResponse tells the requester who owns the entry.
//
//	@name	ForbiddenResponse
type ForbiddenResponse struct {
	Error    string `json:"error" example:"you can only delete entries you added"`
	BarOwner string `json:"barOwner" example:"Ana"`
}

// MessageResponse confirms a successful delete.
type MessageResponse struct {
	Message string `json:"message" example:"entry deleted"`
}

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) internalServerErrorWithDetail(w http.ResponseWriter, r *http.Request, message string, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSON(w, http.StatusInternalServerError, &ErrorDetailResponse{Error: message, Detail: err.Error()})
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, err.Error())
}

func (app *application) forbiddenOwnerResponse(w http.ResponseWriter, r *http.Request, owner string) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "owner", owner)

	writeJSON(w, http.StatusForbidden, &ForbiddenResponse{
		Error:    "you can only delete entries you added",
		BarOwner: owner,
	})
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

package main

import (
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Env     string `json:"env"`
	Version string `json:"version"`
}

// HealthCheck godoc
//
//	@Summary		Health check
//	@Description	Pings the database and reports the running version.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	healthResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BasicAuth
//	@Router			/v1/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.store.Ping(r.Context()); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, &healthResponse{
		Status:  "ok",
		Env:     app.config.env,
		Version: version,
	})
}

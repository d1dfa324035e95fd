package main

import (
	"context"
	"errors"
	"math"
	"net/http"

	"tortillometro/internal/domain/entries"
	"tortillometro/internal/domain/storage"

	"github.com/go-chi/chi/v5"
)

var (
	errMissingFields  = errors.New("missing required fields")
	errRatingRange    = errors.New("rating must be between 1 and 10")
	errCoordsNumeric  = errors.New("latitude and longitude must be numbers")
	errAuthorRequired = errors.New("authorName query parameter is required to verify ownership")
	errEntryNotFound  = errors.New("entry not found")
)

// ownerMismatchError carries the real owner so the client can say who it belongs to.
type ownerMismatchError struct {
	Owner string
}

func (e *ownerMismatchError) Error() string {
	return "entry belongs to " + e.Owner
}

type CreateEntryPayload struct {
	Name       string     `json:"name" validate:"required"`
	Address    *string    `json:"address,omitempty"`
	Latitude   flexNumber `json:"latitude" validate:"required" swaggertype:"number"`
	Longitude  flexNumber `json:"longitude" validate:"required" swaggertype:"number"`
	Rating     flexNumber `json:"rating" validate:"required" swaggertype:"integer"`
	Comment    *string    `json:"comment,omitempty"`
	AuthorName string     `json:"authorName" validate:"required"`
}

// toEntry validates the payload in order: required fields, then the rating range.
func (p *CreateEntryPayload) toEntry() (*entries.Entry, error) {
	if err := Validate.Struct(p); err != nil {
		return nil, errMissingFields
	}

	if !p.Rating.Numeric || p.Rating.Value < entries.MinRating || p.Rating.Value > entries.MaxRating {
		return nil, errRatingRange
	}
	if !p.Latitude.Numeric || !p.Longitude.Numeric {
		return nil, errCoordsNumeric
	}

	return &entries.Entry{
		Name:       p.Name,
		Address:    emptyToNil(p.Address),
		Latitude:   p.Latitude.Value,
		Longitude:  p.Longitude.Value,
		Rating:     int(math.Trunc(p.Rating.Value)),
		Comment:    emptyToNil(p.Comment),
		AuthorName: p.AuthorName,
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// ListEntries godoc
//
//	@Summary		List all rating entries
//	@Description	Returns every entry, highest rating first; ties are broken by the most recent.
//	@Tags			Entries
//	@Produce		json
//	@Success		200	{array}		entries.Entry
//	@Failure		500	{object}	ErrorResponse
//	@Router			/entries [get]
func (app *application) listEntriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The generation is read before the database so that a write landing in
	// between makes the write-back below invisible.
	var (
		gen       int64
		cacheable bool
	)
	if app.cache != nil {
		list, g, ok, err := app.cache.List(ctx)
		switch {
		case err != nil:
			app.logger.Warnw("entry cache read failed", "error", err.Error())
		case ok:
			writeJSON(w, http.StatusOK, list)
			return
		default:
			gen, cacheable = g, true
		}
	}

	list, err := app.store.Entries.List(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if cacheable {
		if err := app.cache.StoreList(ctx, gen, list); err != nil {
			app.logger.Warnw("entry cache write failed", "error", err.Error())
		}
	}

	writeJSON(w, http.StatusOK, list)
}

// CreateEntry godoc
//
//	@Summary		Drop a rating pin
//	@Description	Creates an entry. latitude, longitude and rating may be numbers or numeric strings; rating must be within [1,10].
//	@Tags			Entries
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateEntryPayload	true	"Entry to create"
//	@Success		201		{object}	entries.Entry
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorDetailResponse
//	@Router			/entries [post]
func (app *application) createEntryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateEntryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.internalServerErrorWithDetail(w, r, "failed to create entry", err)
		return
	}

	entry, err := payload.toEntry()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Entries.Create(r.Context(), entry); err != nil {
		app.internalServerErrorWithDetail(w, r, "failed to create entry", err)
		return
	}
	app.invalidateEntryCache(r.Context())

	app.logger.Infow("entry created", "id", entry.ID, "rating", entry.Rating, "author", entry.AuthorName)

	writeJSON(w, http.StatusCreated, entry)
}

// DeleteEntry godoc
//
//	@Summary		Delete your own entry
//	@Description	Deletes an entry when authorName matches its author, ignoring case.
//	@Tags			Entries
//	@Produce		json
//	@Param			entryID		path		string	true	"Entry ID"
//	@Param			authorName	query		string	true	"Name the entry was created with"
//	@Success		200			{object}	MessageResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		403			{object}	ForbiddenResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/entries/{entryID} [delete]
func (app *application) deleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	authorName := r.URL.Query().Get("authorName")
	if authorName == "" {
		app.badRequestResponse(w, r, errAuthorRequired)
		return
	}

	ctx := r.Context()
	err := app.store.WithTx(ctx, func(tx *storage.Tx) error {
		entry, err := tx.Entries.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if !entry.OwnedBy(authorName) {
			return &ownerMismatchError{Owner: entry.AuthorName}
		}
		return tx.Entries.Delete(ctx, entryID)
	})

	var mismatch *ownerMismatchError
	switch {
	case err == nil:
	case errors.Is(err, entries.ErrEntryNotFound):
		app.notFoundResponse(w, r, errEntryNotFound)
		return
	case errors.As(err, &mismatch):
		app.forbiddenOwnerResponse(w, r, mismatch.Owner)
		return
	default:
		app.internalServerError(w, r, err)
		return
	}
	app.invalidateEntryCache(ctx)

	app.logger.Infow("entry deleted", "id", entryID, "author", authorName)

	writeJSON(w, http.StatusOK, &MessageResponse{Message: "entry deleted"})
}

func (app *application) invalidateEntryCache(ctx context.Context) {
	if app.cache == nil {
		return
	}
	if err := app.cache.Invalidate(ctx); err != nil {
		app.logger.Warnw("entry cache invalidation failed", "error", err.Error())
	}
}

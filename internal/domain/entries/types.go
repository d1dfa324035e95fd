package entries

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrEntryNotFound = errors.New("entry not found")

const (
	MinRating = 1
	MaxRating = 10
)

// Entry is a single rating pin: a venue location, a 1-10 rating and the
// self-declared name of whoever dropped it.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    *string   `json:"address"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OwnedBy reports whether name matches the entry's author, ignoring case.
func (e *Entry) OwnedBy(name string) bool {
	return strings.EqualFold(e.AuthorName, name)
}

type Store interface {
	List(ctx context.Context) ([]Entry, error)
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id string) (*Entry, error)
	Delete(ctx context.Context, id string) error
}

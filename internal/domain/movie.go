package domain

import (
	"errors"
	"fmt"
	"time"
)

// ReleaseDateLayout is the wire and storage format of a movie's release date.
const ReleaseDateLayout = "2006-01-02"

// MaxReleaseYear is the last year the date layout can carry.
const MaxReleaseYear = 9999

// ErrInvalidDate is returned when year/month/day do not name a real calendar day.
var ErrInvalidDate = errors.New("invalid release date")

// Movie is a production the agency casts for.
type Movie struct {
	ID          int64
	Title       string
	ReleaseDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReleaseDate builds a UTC date from its parts, rejecting values that
// time.Date would silently normalise (Feb 30, month 13, ...).
func NewReleaseDate(year, month, day int) (time.Time, error) {
	if year <= 0 || year > MaxReleaseYear || month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return date, nil
}

// ReplaceDateParts recomputes a date from base, overriding only the non-zero parts.
func ReplaceDateParts(base time.Time, year, month, day int) (time.Time, error) {
	y, m, d := base.Date()
	if year != 0 {
		y = year
	}
	if month != 0 {
		m = time.Month(month)
	}
	if day != 0 {
		d = day
	}
	return NewReleaseDate(y, int(m), d)
}

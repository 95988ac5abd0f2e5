// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library keeps the user's bibliographic records. Records are
// informational: the reference list is always derived from the markers in
// the text, never from the library.
package library

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/pdiddy/paper-drafter/pkg/types"
)

// ErrNotFound is returned when an id matches no record.
var ErrNotFound = errors.New("citation not found")

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Validate checks the fields a record needs before it can be stored.
// Title, authors and year are required.
func Validate(c types.LibraryCitation) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Authors, validation.Required),
		validation.Field(&c.Year, validation.Required, validation.Match(yearPattern).Error("must be a four-digit year")),
		validation.Field(&c.DOI, validation.Match(doiPattern).Error("must look like 10.NNNN/suffix")),
		validation.Field(&c.URL, validation.By(absoluteURL)),
	)
}

func absoluteURL(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// BibtexKey derives a key from the last word of the first author, lower
// case, followed by the year: "Ashish Vaswani, Noam Shazeer" and "2017"
// give "vaswani2017".
func BibtexKey(authors, year string) string {
	first, _, _ := strings.Cut(authors, ",")
	words := strings.Fields(first)
	last := ""
	if len(words) > 0 {
		last = strings.ToLower(words[len(words)-1])
	}
	return last + year
}

// Library is an ordered, concurrency-safe set of records.
type Library struct {
	mu    sync.RWMutex
	items []types.LibraryCitation
	newID func() string
}

// New creates a library holding a copy of items.
func New(items ...types.LibraryCitation) *Library {
	return &Library{
		items: append([]types.LibraryCitation(nil), items...),
		newID: func() string { return "citation-" + uuid.NewString() },
	}
}

// Add validates c, fills in its id and BibTeX key when absent, and appends
// it.
func (l *Library) Add(c types.LibraryCitation) (types.LibraryCitation, error) {
	c.Title = strings.TrimSpace(c.Title)
	c.Authors = strings.TrimSpace(c.Authors)
	c.Year = strings.TrimSpace(c.Year)
	c.DOI = strings.TrimSpace(c.DOI)
	if err := Validate(c); err != nil {
		return types.LibraryCitation{}, fmt.Errorf("invalid citation: %w", err)
	}
	if c.BibtexKey == "" {
		c.BibtexKey = BibtexKey(c.Authors, c.Year)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c.ID == "" {
		c.ID = l.newID()
	}
	l.items = append(l.items, c)
	return c, nil
}

// Delete removes the record with the given id.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.items {
		if c.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Search returns the records whose title or authors contain query, case
// insensitively. An empty query returns every record.
func (l *Library) Search(query string) []types.LibraryCitation {
	q := strings.ToLower(strings.TrimSpace(query))
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []types.LibraryCitation
	for _, c := range l.items {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Authors), q) {
			out = append(out, c)
		}
	}
	return out
}

// All returns a copy of every record in insertion order.
func (l *Library) All() []types.LibraryCitation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]types.LibraryCitation(nil), l.items...)
}

// Len returns the number of records.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// MetadataResolver fills in a record's bibliographic fields from its DOI.
type MetadataResolver interface {
	Resolve(ctx context.Context, c types.LibraryCitation) (types.LibraryCitation, error)
}

// MockResolver stands in for a DOI lookup service. It waits Delay and
// returns the record unchanged.
type MockResolver struct {
	Delay time.Duration
}

// Resolve implements MetadataResolver.
func (m MockResolver) Resolve(ctx context.Context, c types.LibraryCitation) (types.LibraryCitation, error) {
	if c.DOI != "" && !doiPattern.MatchString(c.DOI) {
		return types.LibraryCitation{}, fmt.Errorf("invalid DOI %q", c.DOI)
	}
	select {
	case <-ctx.Done():
		return types.LibraryCitation{}, ctx.Err()
	case <-time.After(m.Delay):
	}
	return c, nil
}

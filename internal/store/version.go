package store

import (
	"context"
	"errors"
)

// Derived-data names tracked against the content version.
const (
	DerivedLinks    = "links"
	DerivedMarkdown = "markdown"
)

var (
	contentVersionKey = []byte("meta:content_version")
	derivedPrefix     = "meta:derived:"
)

// ContentVersion returns the current content version counter. The counter
// starts at 0 before any import and is bumped by every mutation of the post
// set. Derived data (links, markdown caches) records the version it was
// built from; a mismatch means the derived data is stale and must be
// recomputed. This replaces any ambient "last post count" heuristic.
func (s *Store) ContentVersion(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var v uint64
	err := s.getRaw(contentVersionKey, &v)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// BumpContentVersion increments the content version counter and returns the
// new value.
func (s *Store) BumpContentVersion(ctx context.Context) (uint64, error) {
	v, err := s.ContentVersion(ctx)
	if err != nil {
		return 0, err
	}
	v++
	if err := s.setRaw(contentVersionKey, v); err != nil {
		return 0, err
	}
	return v, nil
}

// DerivedVersion returns the content version the named derived dataset was
// last built from, 0 if it was never built.
func (s *Store) DerivedVersion(ctx context.Context, name string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var v uint64
	err := s.getRaw([]byte(derivedPrefix+name), &v)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// SetDerivedVersion records that the named derived dataset was built from
// content version v.
func (s *Store) SetDerivedVersion(ctx context.Context, name string, v uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.setRaw([]byte(derivedPrefix+name), v)
}

package domain

import "errors"

var (
	// ErrNotRepository is returned when a directory is not a repository root
	ErrNotRepository = errors.New("not a git repository")
	// ErrNotQualified is returned for repositories that cannot be managed:
	// bare, unborn or detached HEAD, or a HEAD branch without upstream.
	ErrNotQualified = errors.New("repository not manageable")
)

package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	logger "github.com/sirupsen/logrus"

	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
)

// Opener opens a directory as a manageable repository. It returns an error
// wrapping domain.ErrNotRepository when the directory is not a repository
// root, and one wrapping domain.ErrNotQualified when it is a repository that
// cannot be managed.
type Opener interface {
	Open(path string) (domain.Repository, error)
}

// DiscoveryService finds manageable repositories under a root directory
type DiscoveryService interface {
	Discover(ctx context.Context, root string) ([]domain.Repository, error)
}

// discoveryService is the concrete implementation
type discoveryService struct {
	bus     eventbus.EventBus
	opener  Opener
	exclude []string
}

// NewDiscoveryService creates a new discovery service. Directories whose path
// relative to the scan root matches one of the exclude globs are skipped.
func NewDiscoveryService(bus eventbus.EventBus, opener Opener, exclude []string) DiscoveryService {
	return &discoveryService{
		bus:     bus,
		opener:  opener,
		exclude: exclude,
	}
}

// Discover walks root depth-first. A directory that is a repository root is
// never descended into: it is returned when it qualifies and dropped when it
// does not. Hidden and inaccessible directories are skipped. An empty result
// is not an error.
func (ds *discoveryService) Discover(ctx context.Context, root string) ([]domain.Repository, error) {
	ds.bus.Publish(domain.ScanStartedEvent{Root: root})

	var repos []domain.Repository
	err := ds.walk(ctx, root, root, &repos)

	ds.bus.Publish(domain.ScanCompletedEvent{Root: root, ReposFound: len(repos)})

	if err != nil {
		return nil, err
	}
	return repos, nil
}

func (ds *discoveryService) walk(ctx context.Context, root, dir string, repos *[]domain.Repository) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := ds.opener.Open(dir)
	switch {
	case err == nil:
		*repos = append(*repos, repo)
		return nil
	case errors.Is(err, domain.ErrNotQualified):
		logger.WithField("path", dir).Debugf("skipping repository: %v", err)
		return nil
	case !errors.Is(err, domain.ErrNotRepository):
		logger.WithField("path", dir).Debugf("cannot open directory as repository: %v", err)
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// leaf folder or no access
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if ds.excluded(root, path) {
			continue
		}
		if err := ds.walk(ctx, root, path, repos); err != nil {
			return err
		}
	}

	return nil
}

// excluded checks whether path, relative to root, matches any exclude glob
func (ds *discoveryService) excluded(root, path string) bool {
	if len(ds.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return MatchesExclude(rel, ds.exclude)
}

// MatchesExclude checks whether a path matches any of the given glob patterns
func MatchesExclude(path string, patterns []string) bool {
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		match, err := doublestar.Match(filepath.ToSlash(pattern), slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

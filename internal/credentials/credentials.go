// Package credentials resolves remote credentials through the git credential
// helper protocol and caches them per host for the lifetime of the process.
package credentials

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"
)

// DefaultHelper is the program invoked as `<helper> credential fill`
const DefaultHelper = "git"

// Credential is a username/password pair. Either field may be empty.
type Credential struct {
	Username string
	Password string
}

// Runner executes the helper with the given stdin and returns its stdout
type Runner func(ctx context.Context, helper string, input string) (string, error)

// Resolver looks up credentials once per host. Concurrent first lookups for
// the same host may each run the helper; the first stored result wins.
type Resolver struct {
	helper string
	run    Runner
	cache  sync.Map // host -> Credential
}

// NewResolver creates a resolver backed by the git credential helper
func NewResolver(helper string) *Resolver {
	return NewResolverWithRunner(helper, execRunner)
}

// NewResolverWithRunner creates a resolver with a custom helper runner
func NewResolverWithRunner(helper string, run Runner) *Resolver {
	if helper == "" {
		helper = DefaultHelper
	}
	return &Resolver{helper: helper, run: run}
}

// Lookup returns the cached or freshly resolved credentials for rawURL's host
func (r *Resolver) Lookup(ctx context.Context, rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid remote url: %w", err)
	}

	if cached, ok := r.cache.Load(u.Host); ok {
		c := cached.(Credential)
		return c.Username, c.Password, nil
	}

	out, err := r.run(ctx, r.helper, Query(u))
	if err != nil {
		return "", "", fmt.Errorf("credential helper failed for %s: %w", u.Host, err)
	}

	stored, _ := r.cache.LoadOrStore(u.Host, Parse(out))
	c := stored.(Credential)
	logger.WithField("host", u.Host).Debug("resolved credentials")
	return c.Username, c.Password, nil
}

// Query builds the helper input for u, terminated by a blank line
func Query(u *url.URL) string {
	var b strings.Builder
	fmt.Fprintf(&b, "protocol=%s\n", u.Scheme)
	fmt.Fprintf(&b, "host=%s\n", u.Host)
	fmt.Fprintf(&b, "path=%s\n", strings.TrimPrefix(u.Path, "/"))
	b.WriteString("\n")
	return b.String()
}

// Parse reads username= and password= lines from helper output.
// Keys are matched case-insensitively; other lines are ignored.
func Parse(output string) Credential {
	var c Credential
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "username":
			c.Username = value
		case "password":
			c.Password = value
		}
	}
	return c
}

func execRunner(ctx context.Context, helper string, input string) (string, error) {
	cmd := exec.CommandContext(ctx, helper, "credential", "fill")
	cmd.Stdin = strings.NewReader(input)
	// never prompt on the terminal owned by the TUI
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

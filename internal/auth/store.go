// Package auth persists the panel access token between invocations.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"golang.org/x/term"
)

const (
	tokenFileName = "token"
	lockFileName  = "token.lock"
)

// ErrNoToken is returned when no token is stored.
var ErrNoToken = errors.New("not logged in")

// Store reads and writes the token file inside dir.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, usually ~/.config/servctl.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the token file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, tokenFileName)
}

func (s *Store) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	lock := flock.New(filepath.Join(s.dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire token lock: %w", err)
	}
	return lock, nil
}

// Load returns the stored token or ErrNoToken.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes token with owner-only permissions.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refusing to store an empty token")
	}

	lock, err := s.lock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing when nothing is stored is not an error.
func (s *Store) Clear() error {
	lock, err := s.lock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Resolve picks the token to use: the flag value, then the environment
// value, then the stored token. An empty result is not an error; the panel
// rejects unauthenticated calls itself.
func Resolve(flagToken, envToken string, store *Store) (string, error) {
	if t := strings.TrimSpace(flagToken); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(envToken); t != "" {
		return t, nil
	}
	if store == nil {
		return "", nil
	}
	token, err := store.Load()
	if errors.Is(err, ErrNoToken) {
		return "", nil
	}
	return token, err
}

// ReadPassword prompts on out and reads a password from in without echo when
// in is a terminal. Otherwise it reads one line.
func ReadPassword(in *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}
	return readLine(in)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Package storage keeps the session cookies of the shell on disk between
// runs, optionally encrypted, so a restart resumes the signed-in session.
package storage

import (
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrWrongBackend is returned by Load when the file belongs to another
// base address.
var ErrWrongBackend = errors.New("stored session belongs to another backend")

// Cookie is a persisted cookie. The jar does not expose attributes other
// than name and value.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sessionFile struct {
	BaseURL string    `json:"baseURL"`
	SavedAt time.Time `json:"savedAt"`
	// Cookies is used when no secret is configured.
	Cookies []Cookie `json:"cookies,omitempty"`
	// Sealed holds the encrypted cookie list otherwise.
	Sealed []byte `json:"sealed,omitempty"`
}

// SessionStore reads and writes the session file at a fixed path.
type SessionStore struct {
	path string
	aead cipher.AEAD
	mu   sync.Mutex
}

// NewSessionStore returns a store for path. With a non-empty secret the
// cookies are encrypted at rest.
func NewSessionStore(path, secret string) (*SessionStore, error) {
	s := &SessionStore{path: path}
	if secret != "" {
		aead, err := newAEAD([]byte(secret))
		if err != nil {
			return nil, err
		}
		s.aead = aead
	}
	return s, nil
}

// Load restores the cookies saved for baseURL into jar and returns how
// many were restored. A missing or empty file restores nothing.
func (s *SessionStore) Load(jar http.CookieJar, baseURL string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := url.Parse(baseURL)
	if err != nil {
		return 0, fmt.Errorf("parse base url: %w", err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read session: %w", err)
	}
	if len(data) == 0 {
		return 0, nil
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("decode session: %w", err)
	}
	if file.BaseURL != baseURL {
		return 0, ErrWrongBackend
	}

	cookies := file.Cookies
	if len(file.Sealed) > 0 {
		if s.aead == nil {
			return 0, errors.New("session is encrypted but no secret is configured")
		}
		plain, err := open(s.aead, file.Sealed)
		if err != nil {
			return 0, err
		}
		if err := json.Unmarshal(plain, &cookies); err != nil {
			return 0, fmt.Errorf("decode cookies: %w", err)
		}
	}

	restored := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		restored = append(restored, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(u, restored)
	return len(restored), nil
}

// Save writes the cookies jar holds for baseURL, replacing the file
// atomically.
func (s *SessionStore) Save(jar http.CookieJar, baseURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	var cookies []Cookie
	for _, c := range jar.Cookies(u) {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value})
	}

	file := sessionFile{BaseURL: baseURL, SavedAt: time.Now().UTC()}
	if s.aead != nil {
		plain, err := json.Marshal(cookies)
		if err != nil {
			return fmt.Errorf("encode cookies: %w", err)
		}
		if file.Sealed, err = seal(s.aead, plain); err != nil {
			return err
		}
	} else {
		file.Cookies = cookies
	}
	return writeAtomic(s.path, file)
}

// Clear removes the session file.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func writeAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode session: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}

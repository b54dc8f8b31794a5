package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// SessionStore owns the current-user identity and the persisted bearer
// token. The token file is the only client state that survives a restart.
type SessionStore struct {
	api  *APIClient
	path string
	user *User
}

func NewSessionStore(api *APIClient) *SessionStore {
	return &SessionStore{api: api, path: tokenPath()}
}

func (s *SessionStore) User() *User {
	return s.user
}

func (s *SessionStore) setUser(user User) {
	s.user = &user
}

func (s *SessionStore) Authenticated() bool {
	return s.user != nil
}

func (s *SessionStore) readToken() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *SessionStore) writeToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

func (s *SessionStore) dropToken() {
	_ = os.Remove(s.path)
	s.api.ClearToken()
}

// RestoreSession validates a persisted token at startup. Validation failure
// is silent: the token is dropped and the caller lands on the login view.
func (s *SessionStore) RestoreSession() bool {
	token := s.readToken()
	if token == "" {
		return false
	}
	s.api.SetToken(token)
	user, err := s.api.CurrentUser()
	if err != nil {
		s.dropToken()
		s.user = nil
		return false
	}
	s.user = &user
	return true
}

// BeginOAuthLogin fetches the provider authorization URL and opens it in
// the browser. The URL is returned so non-graphical callers can print it.
func (s *SessionStore) BeginOAuthLogin() (string, error) {
	authURL, err := s.api.AuthURL()
	if err != nil {
		return "", err
	}
	if authURL == "" {
		return "", errors.New("empty auth url")
	}
	_ = openURL(authURL)
	return authURL, nil
}

// CompleteOAuthCallback accepts either the one-time authorization code or a
// directly delivered token (a JWT, recognizable by its two dots).
func (s *SessionStore) CompleteOAuthCallback(value string) error {
	user, err := s.exchange(value)
	if err != nil {
		return err
	}
	s.setUser(user)
	return nil
}

// exchange performs the network half of sign-in and persists the token. It
// never writes s.user, so it can run off the caller's goroutine; the caller
// installs the returned user.
func (s *SessionStore) exchange(value string) (User, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return User{}, errors.New("empty code or token")
	}
	if strings.Count(value, ".") == 2 {
		return s.loginWithToken(value)
	}
	return s.loginWithCode(value)
}

func (s *SessionStore) loginWithCode(code string) (User, error) {
	token, user, err := s.api.ExchangeCode(code)
	if err != nil {
		return User{}, err
	}
	if token == "" {
		return User{}, errors.New("callback returned no token")
	}
	s.api.SetToken(token)
	if err := s.writeToken(token); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *SessionStore) loginWithToken(token string) (User, error) {
	s.api.SetToken(token)
	valid, user, err := s.api.ValidateToken()
	if err != nil {
		s.dropToken()
		return User{}, err
	}
	if !valid {
		s.dropToken()
		return User{}, errors.New("token rejected")
	}
	if err := s.writeToken(token); err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout invalidates server-side best-effort, then always clears local
// state: the stored token, the client header, and the in-memory user.
func (s *SessionStore) Logout() {
	_ = s.api.Logout()
	s.dropToken()
	s.user = nil
}

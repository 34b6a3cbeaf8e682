package cookie

import (
	"errors"
	"net/http"
	"time"
)

// Manager writes and reads the encrypted session cookie. It pairs a Codec
// with HTTP cookie attributes (HttpOnly, SameSite, Secure) so the pointer is
// protected both cryptographically and at the transport level.
type Manager struct {
	codec    *Codec
	defaults Options
}

// New creates a cookie manager for the given secrets and purpose.
func New(secrets []string, purpose string, opts ...Option) (*Manager, error) {
	codec, err := NewCodec(secrets, purpose)
	if err != nil {
		return nil, err
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	defaults = applyOptions(defaults, opts)

	return &Manager{
		codec:    codec,
		defaults: defaults,
	}, nil
}

// Codec exposes the underlying codec for callers that handle raw tokens.
func (m *Manager) Codec() *Codec {
	return m.codec
}

// SetPayload encrypts the payload and writes it as a cookie.
func (m *Manager) SetPayload(w http.ResponseWriter, name string, p Payload, opts ...Option) error {
	token, err := m.codec.Encode(p)
	if err != nil {
		return err
	}

	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
	return nil
}

// GetPayload reads and decrypts the cookie. Missing cookies yield
// ErrCookieNotFound; undecryptable ones yield the codec's typed errors.
func (m *Manager) GetPayload(r *http.Request, name string) (Payload, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return Payload{}, ErrCookieNotFound
		}
		return Payload{}, err
	}

	return m.codec.Decode(c.Value)
}

// Delete expires the cookie on the client.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

package inertiaframe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.inout.gg/foundations/http/httpcookie"

	"go.loamy.dev/inertia"
)

type sessCtx struct{}

var kSessCtx = sessCtx{} //nolint:gochecknoglobals

const (
	SessionCookieName = "_inertiaframe"
	SessionPath       = "/"

	// sessionTTL bounds how long a flash survives if never read back.
	sessionTTL = 5 * time.Minute
)

//nolint:gochecknoglobals
var bufPool = sync.Pool{New: func() any { return bytes.NewBuffer(nil) }}

//nolint:gochecknoinits
func init() {
	gob.Register(&session{}) //nolint:exhaustruct
	gob.Register([]inertia.ValidationError(nil))
}

// session is the flash storage of the inertiaframe package: validation
// errors and the last visited path survive exactly one redirect, carried
// in a cookie and cleared once read.
type session struct {
	ErrorBag_         string                    //nolint:revive
	Path_             string                    //nolint:revive
	ValidationErrors_ []inertia.ValidationError //nolint:revive
}

// sessionFromRequest retrieves the session from the request. A missing or
// undecodable cookie yields a fresh empty session: the cookie value is
// client-supplied and must never fail a request.
func sessionFromRequest(r *http.Request) *session {
	sess, ok := r.Context().Value(kSessCtx).(*session)
	if ok && sess != nil {
		return sess
	}

	sess = decodeSession(httpcookie.Get(r, SessionCookieName))

	// Cache the session for the remainder of the request.
	*r = *r.WithContext(context.WithValue(r.Context(), kSessCtx, sess))

	return sess
}

func decodeSession(val string) *session {
	//nolint:exhaustruct
	empty := &session{}

	if val == "" {
		return empty
	}

	b, err := base64.RawURLEncoding.DecodeString(val)
	if err != nil {
		d("dropping malformed session cookie")
		return empty
	}

	sess := &session{} //nolint:exhaustruct
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(sess); err != nil {
		d("dropping malformed session cookie")
		return empty
	}

	return sess
}

// ValidationErrors returns the validation errors flashed by the previous
// request. Cleared once read.
func (s *session) ValidationErrors() []inertia.ValidationError {
	ret := s.ValidationErrors_
	s.ValidationErrors_ = nil

	return ret
}

// ErrorBag returns the error bag name flashed by the previous request.
// Cleared once read.
func (s *session) ErrorBag() string {
	ret := s.ErrorBag_
	s.ErrorBag_ = ""

	return ret
}

// Referer returns the last visited path stored in the session.
func (s *session) Referer() string { return s.Path_ }

// Clear deletes the session cookie from the client.
func (s *session) Clear(w http.ResponseWriter, r *http.Request) {
	httpcookie.Delete(w, r, SessionCookieName)
}

// Save persists the session to a cookie.
func (s *session) Save(w http.ResponseWriter) error {
	buf := bufPool.Get().(*bytes.Buffer) //nolint:forcetypeassert

	defer func() {
		buf.Reset()
		bufPool.Put(buf)
	}()

	if err := gob.NewEncoder(buf).Encode(s); err != nil {
		return fmt.Errorf("inertiaframe: failed to encode session: %w", err)
	}

	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(buf.Bytes()),
		Path:     SessionPath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})

	return nil
}

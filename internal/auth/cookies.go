package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// CookiePolicy renders the session cookies. Both cookies are always
// HttpOnly and SameSite=Strict on Path=/; Secure follows the environment.
type CookiePolicy struct {
	Secure     bool
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewCookiePolicy ties cookie lifetimes to the codec's token lifetimes.
func NewCookiePolicy(codec *Codec, secure bool, domain string) CookiePolicy {
	return CookiePolicy{
		Secure:     secure,
		Domain:     domain,
		AccessTTL:  codec.AccessTTL(),
		RefreshTTL: codec.RefreshTTL(),
	}
}

func (p CookiePolicy) SessionCookies(pair TokenPair) []*http.Cookie {
	return []*http.Cookie{
		p.cookie(AccessCookieName, pair.AccessToken, int(p.AccessTTL/time.Second)),
		p.cookie(RefreshCookieName, pair.RefreshToken, int(p.RefreshTTL/time.Second)),
	}
}

// ClearCookies expires both cookies immediately.
func (p CookiePolicy) ClearCookies() []*http.Cookie {
	// net/http renders a negative MaxAge as "Max-Age=0".
	return []*http.Cookie{
		p.cookie(AccessCookieName, "", -1),
		p.cookie(RefreshCookieName, "", -1),
	}
}

func (p CookiePolicy) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   p.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SetCookies writes cookies onto w.
func SetCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, ck := range cookies {
		http.SetCookie(w, ck)
	}
}

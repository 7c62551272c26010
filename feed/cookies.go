package feed

import (
	"net/http"
	"os"
	"time"

	cookiemonster "github.com/MercuryEngineering/CookieMonster"
)

// LoadCookies reads a Netscape-format cookie file, as exported by browsers
// and curl. Expired cookies are dropped.
func LoadCookies(path string) ([]*http.Cookie, error) {
	return ReadCookies(path, time.Now())
}

// ReadCookies is LoadCookies, with expiry judged at now.
func ReadCookies(path string, now time.Time) ([]*http.Cookie, error) {
	// Stat first so a missing file keeps its os.ErrNotExist.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	all, err := cookiemonster.ParseFile(path)
	if err != nil {
		return nil, err
	}
	cookies := make([]*http.Cookie, 0, len(all))
	for _, c := range all {
		// Zero expiry is a session cookie.
		if c.Expires.Unix() <= 0 {
			c.Expires = time.Time{}
		} else if c.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

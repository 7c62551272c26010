package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rotblauer/catwatch/params"
	"github.com/rotblauer/catwatch/types/sample"
)

// maxBody bounds a bridge response.
const maxBody = 16 << 20

const selfKey = "me"

// HTTPFeed queries a location bridge, presenting the account's cookies.
type HTTPFeed struct {
	Config *params.FeedConfig

	client  *http.Client
	cookies []*http.Cookie

	// self remembers the account's own position for a while,
	// since the bridge doesn't always include it.
	self   *ttlcache.Cache[string, *sample.Sample]
	logger *slog.Logger
}

// NewHTTPFeed loads the credentials file. A missing or empty file
// is ErrNoCredentials.
func NewHTTPFeed(config *params.FeedConfig) (*HTTPFeed, error) {
	if config == nil {
		config = params.DefaultFeedConfig()
	}
	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("feed url: %w", err)
	}
	cookies, err := LoadCookies(config.CredentialsFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNoCredentials, config.CredentialsFile)
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: no valid cookies in %s", ErrNoCredentials, config.CredentialsFile)
	}
	return &HTTPFeed{
		Config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		cookies: cookies,
		self: ttlcache.New[string, *sample.Sample](
			ttlcache.WithTTL[string, *sample.Sample](config.SelfCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *sample.Sample]()),
		logger: slog.With("d", "feed", "url", config.URL),
	}, nil
}

func (f *HTTPFeed) request(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Config.URL, nil)
	if err != nil {
		return nil, err
	}
	if f.Config.Account != "" {
		q := req.URL.Query()
		q.Set("account", f.Config.Account)
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	return req, nil
}

func (f *HTTPFeed) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := f.request(ctx)
	if err != nil {
		return nil, err
	}
	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBody))
		return nil, fmt.Errorf("bridge responded %s", res.Status)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, err
	}
	snap, err := Decode(body)
	if err != nil {
		return nil, err
	}

	if snap.Me != nil {
		if snap.Me.Name.Empty() && f.Config.Account != "" {
			snap.Me.Name = conceptualName(f.Config.Account)
		}
		f.self.Set(selfKey, snap.Me, ttlcache.DefaultTTL)
	} else if item := f.self.Get(selfKey); item != nil {
		f.logger.Debug("Using cached own position", "expires", item.ExpiresAt())
		snap.Me = item.Value()
	}
	f.logger.Debug("Fetched", "people", len(snap.People), "self", snap.Me != nil)
	return snap, nil
}

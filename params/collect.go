package params

import "time"

type AutoSaveConfig struct {
	// Interval is the minimum time between saves.
	Interval time.Duration

	// FailureEscalation is the number of consecutive failed saves
	// after which every further failure is logged as an error.
	FailureEscalation int
}

func DefaultAutoSaveConfig() *AutoSaveConfig {
	return &AutoSaveConfig{
		Interval:          5 * time.Minute,
		FailureEscalation: 3,
	}
}

type CollectConfig struct {
	// PollInterval is how long to wait between feed queries.
	PollInterval time.Duration

	// Iterations is how many queries to run. Negative means no end.
	Iterations int
}

func DefaultCollectConfig() *CollectConfig {
	return &CollectConfig{
		PollInterval: 15 * time.Second,
		Iterations:   -1,
	}
}

type FeedConfig struct {
	// URL is the location bridge endpoint.
	URL string

	// CredentialsFile is a Netscape-format cookie file.
	CredentialsFile string

	// Account is the authenticating account, passed along to the bridge.
	Account string

	Timeout time.Duration

	// SelfCacheTTL is how long the authenticated user's own position
	// is reused when the bridge omits it from a response.
	SelfCacheTTL time.Duration
}

func DefaultFeedConfig() *FeedConfig {
	return &FeedConfig{
		URL:             "http://localhost:8089/locations",
		CredentialsFile: DefaultCredentialsPath(),
		Timeout:         30 * time.Second,
		SelfCacheTTL:    15 * time.Minute,
	}
}

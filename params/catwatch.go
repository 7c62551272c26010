package params

import (
	"compress/gzip"
	"os"
	"path/filepath"
)

const (
	StoreFileName       = "location_store.json.gz"
	CredentialsFileName = "cookies.txt"

	// YAMLMirrorSuffix is appended to the store path for the human-readable mirror.
	YAMLMirrorSuffix = ".yaml"

	// StoreFormatVersion is written into flat store snapshots.
	StoreFormatVersion = 1
)

var DefaultGZipCompressionLevel = gzip.BestCompression

var DatadirRoot = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".catwatch"
	}
	return filepath.Join(home, ".catwatch")
}()

func DefaultStorePath() string {
	return filepath.Join(DatadirRoot, StoreFileName)
}

func DefaultCredentialsPath() string {
	return filepath.Join(DatadirRoot, CredentialsFileName)
}

// INFLUXDB_* configure the optional InfluxDB exporter.
// An empty INFLUXDB_URL disables it.
var (
	INFLUXDB_URL    = os.Getenv("INFLUXDB_URL")
	INFLUXDB_TOKEN  = os.Getenv("INFLUXDB_TOKEN")
	INFLUXDB_ORG    = os.Getenv("INFLUXDB_ORG")
	INFLUXDB_BUCKET = os.Getenv("INFLUXDB_BUCKET")
)

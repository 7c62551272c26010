package influxdb

import (
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/params"
)

const Measurement = "location"

type Exporter struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// NewExporterFromEnv returns an exporter configured from the INFLUXDB_*
// environment, or nil if INFLUXDB_URL is unset.
func NewExporterFromEnv() *Exporter {
	if params.INFLUXDB_URL == "" {
		return nil
	}
	return &Exporter{
		URL:    params.INFLUXDB_URL,
		Token:  params.INFLUXDB_TOKEN,
		Org:    params.INFLUXDB_ORG,
		Bucket: params.INFLUXDB_BUCKET,
	}
}

// Export posts entries to an InfluxDB Write API.
// Because it accepts a slice, use batches. The Write API will buffer and flush.
// The last error encountered is returned.
func (e *Exporter) Export(entries []history.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(time.Second)
	client := influxdb2.NewClientWithOptions(e.URL, e.Token, opts)
	writeAPI := client.WriteAPI(e.Org, e.Bucket)

	// Errors returns a channel for reading errors which occurs during async writes.
	// Must be called before performing any writes for errors to be collected.
	// The chan is unbuffered and must be drained or the writer will block.
	// https://github.com/influxdata/influxdb-client-go?tab=readme-ov-file#reading-async-errors
	errorsCh := writeAPI.Errors()
	var err error
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				err = e
			}
		}
	}()

	for _, entry := range entries {
		p := influxdb2.NewPointWithMeasurement(Measurement).
			SetTime(entry.ObservedAt).
			AddTag("person", entry.Person.String()).
			AddField("latitude", entry.Lat).
			AddField("longitude", entry.Lon).
			AddField("accuracy", entry.Accuracy).
			AddField("dwell", entry.Dwell().Seconds())
		writeAPI.WritePoint(p)
	}
	writeAPI.Flush()
	client.Close()
	wait.Wait()
	return err
}

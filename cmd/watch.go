/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/rotblauer/catwatch/api"
	"github.com/rotblauer/catwatch/autosave"
	"github.com/rotblauer/catwatch/catdb"
	"github.com/rotblauer/catwatch/common"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/daemon/webd"
	"github.com/rotblauer/catwatch/feed"
	"github.com/rotblauer/catwatch/feed/replay"
	"github.com/rotblauer/catwatch/geo/move"
	"github.com/rotblauer/catwatch/metrics/influxdb"
	"github.com/rotblauer/catwatch/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the location feed into the store",
	Long: `Polls the location feed every --wait minutes, --count times (negative: forever),
inserting everyone's position into the store, which is saved every --autosave-interval
minutes and once more on exit (including on interrupt).

Exactly one feed is used: --replay, else --feed-file, else the HTTP bridge at --feed-url
with the cookies in --credentials. Missing credentials are fatal.

Examples:

  catwatch watch -c ~/.catwatch/cookies.txt --account me@example.com -w 0.5 -a 5
  catwatch watch --replay rye_2024-12.geojson.gz --replay-self rye -n -1 -w 0 --http.address localhost:3000
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case sig := <-common.Interrupted():
				slog.Warn("Received signal", "signal", sig)
				cancel()
			case <-ctx.Done():
			}
		}()

		compaction := params.DefaultCompactionConfig()
		compaction.StationarySpeedKMH = viper.GetFloat64("stationary-speed")

		movement := params.DefaultMovementConfig()
		movement.ProximityDistance = viper.GetFloat64("proximity")
		movement.Points = viper.GetInt("compass-points")
		movement.Locale = viper.GetString("compass-locale")
		classifier, err := move.NewClassifier(movement)
		if err != nil {
			log.Fatalln(err)
		}

		f, closeFeed, err := newWatchFeed()
		if err != nil {
			log.Fatalln(err)
		}
		defer closeFeed()

		backend, err := catdb.Open(viper.GetString("store"), compaction, false)
		if err != nil {
			log.Fatalln(err)
		}
		defer backend.Close()
		store, err := backend.Load()
		if err != nil {
			log.Fatalln(err)
		}
		store.WithClassifier(classifier)

		scheduler := autosave.New(&params.AutoSaveConfig{
			Interval:          minutes(viper.GetFloat64("autosave-interval")),
			FailureEscalation: params.DefaultAutoSaveConfig().FailureEscalation,
		}, backend, store)

		collector, err := api.NewCollector(&params.CollectConfig{
			PollInterval: minutes(viper.GetFloat64("wait")),
			Iterations:   viper.GetInt("count"),
		}, movement, f, store)
		if err != nil {
			log.Fatalln(err)
		}
		collector.AutoSave = scheduler
		if exporter := influxdb.NewExporterFromEnv(); exporter != nil {
			slog.Info("Exporting to InfluxDB", "url", exporter.URL, "bucket", exporter.Bucket)
			collector.Exporter = exporter
		}

		if addr := viper.GetString("http.address"); addr != "" {
			config := params.DefaultWebDaemonConfig()
			config.Address = addr
			config.StorePath = backend.Path()
			d := webd.NewLiveWebDaemon(config, store)
			go func() {
				if err := d.Run(ctx); err != nil {
					slog.Error("Web daemon failed", "error", err)
				}
			}()
		}

		slog.Info("Watching", "store", backend.Path(), "people", len(store.People()),
			"records", store.Count(), "count", collector.Config.Iterations,
			"wait", collector.Config.PollInterval)
		err = collector.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Collector stopped", "error", err)
		}

		// Best effort. An interrupted watch still exits cleanly.
		if err := scheduler.SaveNow(); err != nil {
			slog.Error("Final save failed", "error", err)
		}
	},
}

// newWatchFeed picks the feed from the flags.
func newWatchFeed() (feed.Feed, func(), error) {
	noop := func() {}
	if p := viper.GetString("replay"); p != "" {
		r, err := replay.Open(p)
		if err != nil {
			return nil, noop, fmt.Errorf("replay: %w", err)
		}
		r.Self = conceptual.PersonID(viper.GetString("replay-self"))
		return r, func() { _ = r.Close() }, nil
	}
	if p := viper.GetString("feed-file"); p != "" {
		return feed.NewFileFeed(p), noop, nil
	}
	config := params.DefaultFeedConfig()
	config.URL = viper.GetString("feed-url")
	config.CredentialsFile = viper.GetString("credentials")
	config.Account = viper.GetString("account")
	f, err := feed.NewHTTPFeed(config)
	if err != nil {
		return nil, noop, err
	}
	return f, noop, nil
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func init() {
	rootCmd.AddCommand(watchCmd)

	feedDefaults := params.DefaultFeedConfig()
	collectDefaults := params.DefaultCollectConfig()

	flags := watchCmd.Flags()
	flags.StringP("credentials", "c", feedDefaults.CredentialsFile, "Netscape-format cookie file for the location bridge")
	flags.String("account", "", "Account to watch as, passed to the location bridge")
	flags.String("feed-url", feedDefaults.URL, "Location bridge URL")
	flags.String("feed-file", "", "Read the location document from this file instead of the bridge")
	flags.String("replay", "", "Replay GeoJSON cat tracks (.geojson[.gz]) instead of polling")
	flags.String("replay-self", "", "Person in the replay to treat as yourself")
	flags.StringP("store", "d", params.DefaultStorePath(), "Store file (*.json.gz, or *.db for bbolt)")
	flags.Float64P("autosave-interval", "a", params.DefaultAutoSaveConfig().Interval.Minutes(), "Minutes between saves")
	flags.Float64P("wait", "w", collectDefaults.PollInterval.Minutes(), "Minutes between queries")
	flags.IntP("count", "n", collectDefaults.Iterations, "Number of queries; negative means no end")
	flags.String("http.address", "", "Also serve the store read-only on this address")
	flags.AddFlagSet(movementFlags)
}

// movementFlags tune compaction and the movement report.
var movementFlags = func() *pflag.FlagSet {
	movementDefaults := params.DefaultMovementConfig()
	fs := pflag.NewFlagSet("movement", pflag.ContinueOnError)
	fs.Float64("stationary-speed", params.DefaultCompactionConfig().StationarySpeedKMH, "Speed (km/h) below which samples are folded together")
	fs.Float64("proximity", movementDefaults.ProximityDistance, "Distance (m) from you that counts as near")
	fs.Int("compass-points", movementDefaults.Points, "Compass resolution: 8 or 16")
	fs.String("compass-locale", movementDefaults.Locale, "Compass names: en or hu")
	return fs
}()

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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"

	"github.com/rotblauer/catwatch/catdb"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the store to stdout",
	Long: `Writes the store's histories to stdout.

Formats:
  geojson  one GeoJSON point feature per record, one per line (replayable with watch --replay)
  json     a JSON object of person => history
  yaml     the same, as YAML

Examples:

  catwatch export --store ~/.catwatch/location_store.json.gz --format geojson | gzip > tracks.geojson.gz
  catwatch export --person "Rye Cat" --format yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		backend, err := catdb.Open(viper.GetString("store"), nil, true)
		if err != nil {
			log.Fatalln(err)
		}
		defer backend.Close()
		store, err := backend.Load()
		if err != nil {
			log.Fatalln(err)
		}

		people := store.People()
		if p := viper.GetString("person"); p != "" {
			people = []conceptual.PersonID{conceptual.PersonID(p)}
		}
		if err := writeExport(cmd, store, people, viper.GetString("format")); err != nil {
			log.Fatalln(err)
		}
		slog.Debug("Exported", "people", len(people), "format", viper.GetString("format"))
	},
}

func writeExport(cmd *cobra.Command, store *history.Store, people []conceptual.PersonID, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "geojson":
		enc := json.NewEncoder(out)
		for _, p := range people {
			for _, rec := range store.History(p) {
				if err := enc.Encode(rec.Feature(p.String())); err != nil {
					return err
				}
			}
		}
		return nil
	case "json", "yaml":
		doc := make(map[conceptual.PersonID]history.History, len(people))
		for _, p := range people {
			if h := store.History(p); h != nil {
				doc[p] = h
			}
		}
		if format == "yaml" {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(doc)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return fmt.Errorf("unknown format %q (want geojson, json or yaml)", format)
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("store", "d", params.DefaultStorePath(), "Store file to read")
	exportCmd.Flags().String("format", "geojson", "Output format: geojson, json or yaml")
	exportCmd.Flags().String("person", "", "Only export this person")
}

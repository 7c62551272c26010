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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/catwatch/catdb"
	"github.com/rotblauer/catwatch/common"
	"github.com/rotblauer/catwatch/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the store",
	Long: `Prints one line per person: records, time span, distance covered and dwell times.

Examples:

  catwatch stats
  catwatch stats --store catwatch.db --json | jq .
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

		summaries := store.Summaries()
		out := cmd.OutOrStdout()
		if viper.GetBool("json") {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summaries); err != nil {
				log.Fatalln(err)
			}
			return
		}
		for _, s := range summaries {
			fmt.Fprintf(out, "%s: %s records, %s to %s, %s, dwell mean=%s median=%s max=%s %s\n",
				s.Person,
				humanize.Comma(int64(s.Records)),
				s.First.Format(time.DateTime), s.Last.Format(time.DateTime),
				common.HumanDistance(s.Distance),
				s.DwellMean, s.DwellMedian, s.DwellMax, s.LongestDwellAt)
		}
		fmt.Fprintf(out, "%d people, %s records\n", len(summaries), humanize.Comma(int64(store.Count())))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringP("store", "d", params.DefaultStorePath(), "Store file to read")
	statsCmd.Flags().Bool("json", false, "Print the summaries as JSON")
}

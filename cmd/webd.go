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
	"log"
	"log/slog"

	"github.com/rotblauer/catwatch/common"
	"github.com/rotblauer/catwatch/daemon/webd"
	"github.com/rotblauer/catwatch/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// webdCmd represents the webd command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Serve a saved store over HTTP",
	Long: `Serves the store file read-only over HTTP, reloading it at most once per --cache-ttl.
Set CATWATCH_WEB_TOKEN to require a token on the /people routes.

To serve a live store while polling, use watch --http.address instead.
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

		config := params.DefaultWebDaemonConfig()
		config.Address = viper.GetString("address")
		config.StorePath = viper.GetString("store")
		config.CacheTTL = viper.GetDuration("cache-ttl")

		d := webd.NewFileWebDaemon(config)
		if err := d.Run(ctx); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()
	webdCmd.Flags().String("address", defaults.Address, "Address to listen on")
	webdCmd.Flags().StringP("store", "d", defaults.StorePath, "Store file to serve")
	webdCmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "How long a loaded store is reused")
}

// Copyright 2026 unimart Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/cmd/version"
)

var rootCommand = &cobra.Command{
	Use:   "recsys",
	Short: "Collaborative filtering recommendations for the unimart marketplace.",
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCommand.PersistentFlags().BoolP("version", "v", false, "recsys version")
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.AddCommand(trainCommand)
	rootCommand.AddCommand(recommendCommand)
}

func main() {
	defer log.CloseLogger()
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

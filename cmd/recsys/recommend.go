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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/config"
	"github.com/unimart/recsys/dataset"
	"github.com/unimart/recsys/logics"
	"github.com/unimart/recsys/storage"
)

var recommendCommand = &cobra.Command{
	Use:   "recommend buyer_id [top_n [min_rating]]",
	Short: "Print ranked recommendations for a buyer as JSON on stdout.",
	Args:  cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
		configPath, _ := cmd.Flags().GetString("config")
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			fail(err)
		}
		result, err := recommend(cmd.Context(), conf, args)
		if err != nil {
			fail(err)
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			fail(err)
		}
		// Stdout carries exactly one JSON document; everything else goes to
		// stderr so the invoking process can parse the response.
		fmt.Println(string(encoded))
	},
}

// fail reports a structured error on stderr and exits non-zero, matching the
// invocation bridge contract.
func fail(err error) {
	log.Logger().Error("recommend failed", zap.Error(err))
	encoded, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintln(os.Stderr, string(encoded))
	os.Exit(1)
}

func recommend(ctx context.Context, conf *config.Config, args []string) (*logics.Result, error) {
	buyerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, errors.NotValidf("buyer id %q", args[0])
	}
	topN := conf.Recommend.TopN
	if len(args) > 1 {
		if topN, err = strconv.Atoi(args[1]); err != nil {
			return nil, errors.NotValidf("top_n %q", args[1])
		}
	}
	minRating := conf.Recommend.MinRating
	if len(args) > 2 {
		parsed, err := strconv.ParseFloat(args[2], 32)
		if err != nil {
			return nil, errors.NotValidf("min_rating %q", args[2])
		}
		minRating = float32(parsed)
	}

	artifact, err := storage.Load(conf.Artifact.Path)
	if err != nil && !errors.Is(err, storage.ErrArtifactNotFound) {
		return nil, errors.Trace(err)
	}
	if artifact == nil {
		log.Logger().Warn("no artifact, serving cold start",
			zap.String("path", conf.Artifact.Path))
	}

	var purchased []int64
	if conf.Train.Source.DSN != "" {
		sql, err := dataset.OpenSQL(conf.Train.Source.DSN)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if purchased, err = sql.PurchasedProducts(ctx, buyerID); err != nil {
			return nil, errors.Trace(err)
		}
	}

	return logics.Recommend(logics.NewPredictor(artifact), buyerID, purchased, topN, minRating), nil
}

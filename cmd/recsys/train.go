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
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/config"
	"github.com/unimart/recsys/dataset"
	"github.com/unimart/recsys/model"
	"github.com/unimart/recsys/storage"
)

var trainCommand = &cobra.Command{
	Use:   "train",
	Short: "Train the factorization model and write the artifact.",
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
		configPath, _ := cmd.Flags().GetString("config")
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		if err = train(cmd.Context(), conf); err != nil {
			if errors.Cause(err) == model.ErrUntrainable {
				// The previous artifact, if any, stays in place.
				log.Logger().Error("not enough data to train, keeping previous artifact",
					zap.Error(err))
				os.Exit(2)
			}
			log.Logger().Fatal("failed to train", zap.Error(err))
		}
	},
}

func train(ctx context.Context, conf *config.Config) error {
	interactions, err := loadInteractions(ctx, &conf.Train.Source)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("loaded interactions", zap.Int("n_interactions", len(interactions)))
	data := dataset.Build(time.Now(), interactions)
	m, err := model.NewModel(conf.Train.Model, conf.Train.GetParams())
	if err != nil {
		return errors.Trace(err)
	}
	bar := progressbar.NewOptions(conf.Train.NEpochs,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Fit "+conf.Train.Model),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish())
	err = m.Fit(data, &model.FitConfig{
		Verbose: true,
		OnEpoch: func(epoch, nEpochs int, loss float32) {
			_ = bar.Set(epoch)
		},
	})
	if err != nil {
		return errors.Trace(err)
	}
	_ = bar.Finish()
	return errors.Trace(storage.Save(conf.Artifact.Path, storage.NewArtifact(m, data)))
}

func loadInteractions(ctx context.Context, source *config.SourceConfig) ([]dataset.Interaction, error) {
	if source.DSN != "" {
		sql, err := dataset.OpenSQL(source.DSN)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return sql.Interactions(ctx)
	}
	if source.CSV != "" {
		return dataset.LoadCSV(source.CSV)
	}
	return nil, errors.NotValidf("train source: neither csv nor dsn configured")
}

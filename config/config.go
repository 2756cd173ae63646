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

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"

	"github.com/unimart/recsys/model"
)

// Config is the configuration for the recommender.
type Config struct {
	Artifact  ArtifactConfig  `mapstructure:"artifact"`
	Train     TrainConfig     `mapstructure:"train"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
}

// ArtifactConfig locates the persisted model.
type ArtifactConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TrainConfig is the configuration for the train command.
type TrainConfig struct {
	Model       string       `mapstructure:"model" validate:"oneof=svd als"`
	NFactors    int          `mapstructure:"n_factors" validate:"gt=0"`
	NEpochs     int          `mapstructure:"n_epochs" validate:"gt=0"`
	Lr          float32      `mapstructure:"lr" validate:"gt=0"`
	Reg         float32      `mapstructure:"reg" validate:"gte=0"`
	InitMean    float32      `mapstructure:"init_mean"`
	InitStdDev  float32      `mapstructure:"init_std_dev" validate:"gt=0"`
	RandomState int64        `mapstructure:"random_state"`
	Source      SourceConfig `mapstructure:"source"`
}

// SourceConfig selects where training interactions come from. Exactly one of
// CSV and DSN should be set; DSN wins when both are.
type SourceConfig struct {
	CSV string `mapstructure:"csv"`
	DSN string `mapstructure:"dsn"`
}

// RecommendConfig carries the default ranking parameters.
type RecommendConfig struct {
	TopN      int     `mapstructure:"top_n" validate:"gt=0"`
	MinRating float32 `mapstructure:"min_rating" validate:"gte=0,lte=5"`
}

// BridgeConfig bounds a single recommend invocation.
type BridgeConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// GetDefaultConfig returns a default config, which has the same values as the
// checked-in config.toml.
func GetDefaultConfig() *Config {
	return &Config{
		Artifact: ArtifactConfig{
			Path: "model.bin",
		},
		Train: TrainConfig{
			Model:       "svd",
			NFactors:    16,
			NEpochs:     20,
			Lr:          0.005,
			Reg:         0.02,
			InitMean:    0,
			InitStdDev:  0.1,
			RandomState: 0,
		},
		Recommend: RecommendConfig{
			TopN:      10,
			MinRating: 4.0,
		},
		Bridge: BridgeConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// LoadConfig loads and validates the configuration from a TOML file. An empty
// path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	conf := GetDefaultConfig()
	if path != "" {
		v := viper.New()
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "read config %s", path)
		}
		if err := v.Unmarshal(conf); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return conf, nil
}

// Validate checks ranges and enumerations.
func (conf *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(conf); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			e := validationErrors[0]
			return errors.NotValidf("config field %s (%s=%v)",
				strings.ToLower(e.Namespace()), e.Tag(), e.Value())
		}
		return errors.Trace(err)
	}
	return nil
}

// GetParams converts training settings into model hyper-parameters.
func (conf *TrainConfig) GetParams() model.Params {
	return model.Params{
		model.NFactors:    conf.NFactors,
		model.NEpochs:     conf.NEpochs,
		model.Lr:          conf.Lr,
		model.Reg:         conf.Reg,
		model.InitMean:    conf.InitMean,
		model.InitStdDev:  conf.InitStdDev,
		model.RandomState: conf.RandomState,
	}
}

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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimart/recsys/model"
)

func TestGetDefaultConfig(t *testing.T) {
	conf := GetDefaultConfig()
	assert.NoError(t, conf.Validate())
	assert.Equal(t, "svd", conf.Train.Model)
	assert.Equal(t, 10, conf.Recommend.TopN)
	assert.Equal(t, float32(4.0), conf.Recommend.MinRating)
	assert.Equal(t, 10*time.Second, conf.Bridge.Timeout)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[artifact]
path = "/var/lib/recsys/model.bin"

[train]
model = "als"
n_factors = 8
n_epochs = 5
random_state = 42

[train.source]
csv = "ratings.csv"

[recommend]
top_n = 5
min_rating = 3.5

[bridge]
timeout = "3s"
`), 0644))
	conf, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/recsys/model.bin", conf.Artifact.Path)
	assert.Equal(t, "als", conf.Train.Model)
	assert.Equal(t, 8, conf.Train.NFactors)
	assert.Equal(t, 5, conf.Train.NEpochs)
	assert.Equal(t, "ratings.csv", conf.Train.Source.CSV)
	assert.Equal(t, 5, conf.Recommend.TopN)
	assert.Equal(t, float32(3.5), conf.Recommend.MinRating)
	assert.Equal(t, 3*time.Second, conf.Bridge.Timeout)
	// Values absent from the file keep defaults.
	assert.Equal(t, float32(0.005), conf.Train.Lr)
}

func TestLoadConfig_Empty(t *testing.T) {
	conf, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), conf)
}

func TestLoadConfig_Invalid(t *testing.T) {
	write := func(content string) string {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}
	_, err := LoadConfig(write("[train]\nmodel = \"lda\"\n"))
	assert.Error(t, err)
	_, err = LoadConfig(write("[recommend]\nmin_rating = 9.0\n"))
	assert.Error(t, err)
	_, err = LoadConfig(write("[train]\nn_factors = -1\n"))
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestTrainConfig_GetParams(t *testing.T) {
	conf := GetDefaultConfig()
	conf.Train.NFactors = 8
	conf.Train.RandomState = 42
	params := conf.Train.GetParams()
	assert.Equal(t, 8, params.GetInt(model.NFactors, 0))
	assert.Equal(t, int64(42), params.GetInt64(model.RandomState, 0))
	assert.Equal(t, float32(0.005), params.GetFloat32(model.Lr, 0))
}

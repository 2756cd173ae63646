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

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimart/recsys/dataset"
	"github.com/unimart/recsys/model"
)

func trainArtifact(t *testing.T) (*Artifact, *dataset.Dataset) {
	t.Helper()
	data := dataset.Build(time.Unix(1700000000, 0), []dataset.Interaction{
		{BuyerID: 1, ProductID: 10, Rating: 5, Source: dataset.SourceStar},
		{BuyerID: 1, ProductID: 11, Rating: 2, Source: dataset.SourceStar},
		{BuyerID: 2, ProductID: 10, Rating: 4, Source: dataset.SourceStar},
		{BuyerID: 2, ProductID: 12, Rating: 1, Source: dataset.SourceStar},
	})
	m := model.NewSVD(model.Params{model.NFactors: 2, model.NEpochs: 5, model.RandomState: 1})
	require.NoError(t, m.Fit(data, nil))
	return NewArtifact(m, data), data
}

func TestSaveLoad(t *testing.T) {
	artifact, data := trainArtifact(t)
	path := filepath.Join(t.TempDir(), "recsys", "model.bin")
	require.NoError(t, Save(path, artifact))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Timestamp, loaded.Timestamp)
	assert.Equal(t, artifact.BuyerRated, loaded.BuyerRated)
	assert.Equal(t, artifact.BuyerDict.Count(), loaded.BuyerDict.Count())
	assert.Equal(t, artifact.ProductDict.Count(), loaded.ProductDict.Count())
	for buyer := int32(0); buyer < int32(data.CountBuyers()); buyer++ {
		for product := int32(0); product < int32(data.CountProducts()); product++ {
			assert.Equal(t, artifact.Model.InternalPredict(buyer, product),
				loaded.Model.InternalPredict(buyer, product))
		}
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLoad_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(path, []byte("NOPE\x01garbage"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(path, []byte("UMRS\x7f"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_Replaces(t *testing.T) {
	artifact, _ := trainArtifact(t)
	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, Save(path, artifact))
	require.NoError(t, Save(path, artifact))
	// No temporary files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

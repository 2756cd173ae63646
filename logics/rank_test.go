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

package logics

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	candidates := []Recommendation{
		{ProductID: 1, PredictedRating: 4.8},
		{ProductID: 2, PredictedRating: 3.0},
		{ProductID: 3, PredictedRating: 1.0},
	}
	ranked := Rank(candidates, 2, 2.0)
	assert.Equal(t, []Recommendation{
		{ProductID: 1, PredictedRating: 4.8},
		{ProductID: 2, PredictedRating: 3.0},
	}, ranked)
}

func TestRank_AllFilteredOut(t *testing.T) {
	candidates := []Recommendation{
		{ProductID: 1, PredictedRating: 4.8},
		{ProductID: 2, PredictedRating: 3.0},
		{ProductID: 3, PredictedRating: 1.0},
	}
	ranked := Rank(candidates, 10, 5.0)
	assert.Empty(t, ranked)
}

func TestRank_SortAndBound(t *testing.T) {
	candidates := []Recommendation{
		{ProductID: 5, PredictedRating: 4.1},
		{ProductID: 1, PredictedRating: 4.9},
		{ProductID: 3, PredictedRating: 4.5},
		{ProductID: 2, PredictedRating: 4.7},
		{ProductID: 4, PredictedRating: 4.3},
	}
	ranked := Rank(candidates, 3, 0)
	assert.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].PredictedRating, ranked[i].PredictedRating)
	}
	assert.Equal(t, int64(1), ranked[0].ProductID)
}

func TestRank_TieBreak(t *testing.T) {
	candidates := []Recommendation{
		{ProductID: 9, PredictedRating: 4.5},
		{ProductID: 2, PredictedRating: 4.5},
		{ProductID: 5, PredictedRating: 4.5},
	}
	ranked := Rank(candidates, 10, 4.0)
	assert.Equal(t, []Recommendation{
		{ProductID: 2, PredictedRating: 4.5},
		{ProductID: 5, PredictedRating: 4.5},
		{ProductID: 9, PredictedRating: 4.5},
	}, ranked)
}

func TestRank_Clamping(t *testing.T) {
	candidates := make([]Recommendation, 20)
	for i := range candidates {
		candidates[i] = Recommendation{ProductID: int64(i + 1), PredictedRating: 4.5}
	}
	// Non-positive top_n falls back to the default.
	assert.Len(t, Rank(candidates, 0, 4.0), DefaultTopN)
	assert.Len(t, Rank(candidates, -3, 4.0), DefaultTopN)
	// Out-of-scale min_rating falls back to the default threshold.
	assert.Len(t, Rank(candidates, 20, -1), 20)
	assert.Empty(t, Rank(candidates, 20, 6))
	assert.Len(t, Rank(candidates, 20, math32.NaN()), 20)
}

func TestRank_InputUnmodified(t *testing.T) {
	candidates := []Recommendation{
		{ProductID: 1, PredictedRating: 1.0},
		{ProductID: 2, PredictedRating: 5.0},
	}
	Rank(candidates, 10, 0)
	assert.Equal(t, int64(1), candidates[0].ProductID)
}

func TestRank_Threshold(t *testing.T) {
	candidates := []Recommendation{
		{ProductID: 1, PredictedRating: 4.0},
		{ProductID: 2, PredictedRating: 3.999},
	}
	ranked := Rank(candidates, 10, 4.0)
	assert.Len(t, ranked, 1)
	for _, r := range ranked {
		assert.GreaterOrEqual(t, r.PredictedRating, float32(4.0))
	}
}

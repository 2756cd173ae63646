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
	"sort"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

const (
	DefaultTopN      = 10
	DefaultMinRating = float32(4.0)
	MaxRating        = float32(5.0)
)

// Rank filters candidates below minRating, sorts the rest by predicted
// rating descending and truncates to topN. Ties break by ascending product
// id so equal inputs always produce identical output. The input slice is not
// modified.
func Rank(candidates []Recommendation, topN int, minRating float32) []Recommendation {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if math32.IsNaN(minRating) || minRating < 0 || minRating > MaxRating {
		minRating = DefaultMinRating
	}
	ranked := lo.Filter(candidates, func(r Recommendation, _ int) bool {
		return r.PredictedRating >= minRating
	})
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PredictedRating != ranked[j].PredictedRating {
			return ranked[i].PredictedRating > ranked[j].PredictedRating
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Recommend runs prediction and ranking for one buyer and wraps the result in
// the response envelope. Recommendations is never nil so the envelope always
// encodes a JSON array.
func Recommend(p *Predictor, buyerID int64, purchased []int64, topN int, minRating float32) *Result {
	var purchasedSet mapset.Set[int64]
	if len(purchased) > 0 {
		purchasedSet = mapset.NewThreadUnsafeSet(purchased...)
	}
	candidates, coldStart := p.Predict(buyerID, purchasedSet)
	ranked := Rank(candidates, topN, minRating)
	if ranked == nil {
		ranked = []Recommendation{}
	}
	return &Result{
		BuyerID:         buyerID,
		ColdStart:       coldStart,
		Count:           len(ranked),
		Recommendations: ranked,
	}
}

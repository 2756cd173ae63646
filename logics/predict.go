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

// Package logics turns a trained model into ranked recommendations: scoring,
// cold-start fallback, exclusion of already-purchased products, thresholding
// and truncation.
package logics

import (
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/unimart/recsys/base/floats"
	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/dataset"
	"github.com/unimart/recsys/storage"
)

// Recommendation is one scored product.
type Recommendation struct {
	ProductID       int64   `json:"product_id"`
	PredictedRating float32 `json:"predicted_rating"`
}

// Result is the response envelope written to the invoking process.
type Result struct {
	BuyerID         int64            `json:"buyer_id"`
	ColdStart       bool             `json:"cold_start"`
	Count           int              `json:"count"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Predictor scores every product for a buyer. For buyers absent from the
// training set it falls back to the mean of all trained buyer factors and
// biases, so new buyers receive popularity-flavored scores instead of an
// error.
type Predictor struct {
	artifact        *storage.Artifact
	meanBuyerFactor []float32
	meanBuyerBias   float32
}

// NewPredictor creates a predictor. A nil artifact yields a predictor whose
// every buyer is a cold start with no products to score.
func NewPredictor(artifact *storage.Artifact) *Predictor {
	p := &Predictor{artifact: artifact}
	if artifact == nil || artifact.Model == nil || artifact.Model.Invalid() {
		p.artifact = nil
		return p
	}
	m := artifact.Model
	nBuyers := m.CountBuyers()
	p.meanBuyerFactor = make([]float32, m.NumFactors())
	if nBuyers > 0 {
		for buyer := int32(0); buyer < int32(nBuyers); buyer++ {
			floats.Add(p.meanBuyerFactor, m.GetBuyerFactor(buyer))
			p.meanBuyerBias += m.GetBuyerBias(buyer)
		}
		floats.MulConst(p.meanBuyerFactor, 1/float32(nBuyers))
		p.meanBuyerBias /= float32(nBuyers)
	}
	return p
}

// Predict scores all products for buyerID, excluding products the buyer rated
// at train time and products in purchased. The returned slice is unordered
// and unfiltered; coldStart reports whether the mean-factor fallback was
// used.
func (p *Predictor) Predict(buyerID int64, purchased mapset.Set[int64]) (recommendations []Recommendation, coldStart bool) {
	if p.artifact == nil {
		return nil, true
	}
	m := p.artifact.Model
	buyerIndex := p.artifact.BuyerDict.Index(buyerID)
	coldStart = buyerIndex == dataset.NotIndex
	var buyerFactor []float32
	var buyerBias float32
	if coldStart {
		log.Logger().Debug("cold start buyer", zap.Int64("buyer_id", buyerID))
		buyerFactor = p.meanBuyerFactor
		buyerBias = p.meanBuyerBias
	} else {
		buyerFactor = m.GetBuyerFactor(buyerIndex)
		buyerBias = m.GetBuyerBias(buyerIndex)
	}
	rated := mapset.NewThreadUnsafeSet[int32]()
	if !coldStart {
		rated.Append(p.artifact.BuyerRated[buyerIndex]...)
	}
	nProducts := int32(m.CountProducts())
	recommendations = make([]Recommendation, 0, nProducts)
	for productIndex := int32(0); productIndex < nProducts; productIndex++ {
		if rated.Contains(productIndex) {
			continue
		}
		productID, ok := p.artifact.ProductDict.ID(productIndex)
		if !ok {
			continue
		}
		if purchased != nil && purchased.Contains(productID) {
			continue
		}
		score := m.GlobalBias() + buyerBias + m.GetProductBias(productIndex) +
			floats.Dot(buyerFactor, m.GetProductFactor(productIndex))
		recommendations = append(recommendations, Recommendation{
			ProductID:       productID,
			PredictedRating: score,
		})
	}
	return recommendations, coldStart
}

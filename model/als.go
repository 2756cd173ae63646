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

package model

import (
	"io"
	"time"

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/unimart/recsys/base/encoding"
	"github.com/unimart/recsys/base/floats"
	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/dataset"
)

// ALS is the matrix factorization model trained by alternating least squares
// on global-mean-centered ratings. The prediction is
//
//	\hat{r}_{ui} = \mu + q_i^T p_u
//
// Buyer and product biases are folded into the factors, so GetBuyerBias and
// GetProductBias always return zero. Hyper-parameters:
//
//	Reg         - regularization strength    | default 0.06
//	NEpochs     - number of epochs           | default 10
//	NFactors    - number of latent factors   | default 16
//	InitMean    - mean of initial factors    | default 0
//	InitStdDev  - stddev of initial factors  | default 0.1
type ALS struct {
	BaseModel
	// Model parameters
	BuyerFactor   [][]float32
	ProductFactor [][]float32
	GlobalMean    float32
	// Hyper parameters
	nFactors   int
	nEpochs    int
	reg        float32
	initMean   float32
	initStdDev float32
}

// NewALS creates an ALS model.
func NewALS(params Params) *ALS {
	als := new(ALS)
	als.SetParams(params)
	return als
}

// SetParams sets hyper-parameters of the ALS model.
func (als *ALS) SetParams(params Params) {
	als.BaseModel.SetParams(params)
	als.nFactors = als.Params.GetInt(NFactors, 16)
	als.nEpochs = als.Params.GetInt(NEpochs, 10)
	als.reg = als.Params.GetFloat32(Reg, 0.06)
	als.initMean = als.Params.GetFloat32(InitMean, 0)
	als.initStdDev = als.Params.GetFloat32(InitStdDev, 0.1)
}

// Clear resets the model to an untrained state.
func (als *ALS) Clear() {
	als.BuyerFactor = nil
	als.ProductFactor = nil
	als.GlobalMean = 0
}

// Invalid returns true if the model is not trained.
func (als *ALS) Invalid() bool {
	return als == nil || als.BuyerFactor == nil || als.ProductFactor == nil
}

// InternalPredict predicts the rating of a product by a buyer, both as dense
// indices.
func (als *ALS) InternalPredict(buyerIndex, productIndex int32) float32 {
	ret := als.GlobalMean
	if buyerIndex != dataset.NotIndex && productIndex != dataset.NotIndex &&
		int(buyerIndex) < len(als.BuyerFactor) && int(productIndex) < len(als.ProductFactor) {
		ret += floats.Dot(als.BuyerFactor[buyerIndex], als.ProductFactor[productIndex])
	}
	return ret
}

// Fit trains the ALS model. Each epoch solves the regularized least squares
// problem for all buyer factors with product factors fixed, then for all
// product factors with buyer factors fixed.
func (als *ALS) Fit(trainSet *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if trainSet.Count() == 0 || trainSet.CountBuyers() < 2 || trainSet.CountProducts() < 2 {
		return errors.Trace(ErrUntrainable)
	}
	log.Logger().Info("fit als",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("n_buyers", trainSet.CountBuyers()),
		zap.Int("n_products", trainSet.CountProducts()),
		zap.Any("params", als.GetParams()))
	als.Init(trainSet)
	// Group residuals by buyer and by product.
	buyerRatings := make([][]ratedEntry, trainSet.CountBuyers())
	productRatings := make([][]ratedEntry, trainSet.CountProducts())
	for i := 0; i < trainSet.Count(); i++ {
		buyerIndex, productIndex, rating := trainSet.Get(i)
		residual := rating - als.GlobalMean
		buyerRatings[buyerIndex] = append(buyerRatings[buyerIndex], ratedEntry{productIndex, residual})
		productRatings[productIndex] = append(productRatings[productIndex], ratedEntry{buyerIndex, residual})
	}
	for epoch := 1; epoch <= als.nEpochs; epoch++ {
		fitStart := time.Now()
		if err := als.solve(buyerRatings, als.ProductFactor, als.BuyerFactor); err != nil {
			return errors.Trace(err)
		}
		if err := als.solve(productRatings, als.BuyerFactor, als.ProductFactor); err != nil {
			return errors.Trace(err)
		}
		cost := float32(0)
		for i := 0; i < trainSet.Count(); i++ {
			buyerIndex, productIndex, rating := trainSet.Get(i)
			diff := rating - als.InternalPredict(buyerIndex, productIndex)
			cost += diff * diff
		}
		loss := math32.Sqrt(cost / float32(trainSet.Count()))
		if config.Verbose {
			log.Logger().Debug("fit als",
				zap.Int("epoch", epoch),
				zap.Int("n_epochs", als.nEpochs),
				zap.Float32("rmse", loss),
				zap.Duration("fit_time", time.Since(fitStart)))
		}
		if config.OnEpoch != nil {
			config.OnEpoch(epoch, als.nEpochs, loss)
		}
	}
	return nil
}

type ratedEntry struct {
	index  int32
	rating float32
}

// solve updates every row in dst by solving (F^T F + reg I) x = F^T r, where F
// stacks the fixed factors of the entries rated by that row.
func (als *ALS) solve(ratings [][]ratedEntry, fixed, dst [][]float32) error {
	a := mat.NewDense(als.nFactors, als.nFactors, nil)
	b := mat.NewVecDense(als.nFactors, nil)
	x := mat.NewVecDense(als.nFactors, nil)
	for index, entries := range ratings {
		if len(entries) == 0 {
			continue
		}
		a.Zero()
		b.Zero()
		for _, entry := range entries {
			factor := fixed[entry.index]
			for i := 0; i < als.nFactors; i++ {
				for j := 0; j < als.nFactors; j++ {
					a.Set(i, j, a.At(i, j)+float64(factor[i])*float64(factor[j]))
				}
				b.SetVec(i, b.AtVec(i)+float64(factor[i])*float64(entry.rating))
			}
		}
		for i := 0; i < als.nFactors; i++ {
			a.Set(i, i, a.At(i, i)+float64(als.reg)*float64(len(entries)))
		}
		if err := x.SolveVec(a, b); err != nil {
			return errors.Annotate(err, "solve least squares")
		}
		for i := 0; i < als.nFactors; i++ {
			dst[index][i] = float32(x.AtVec(i))
		}
	}
	return nil
}

// Init initializes model parameters before training.
func (als *ALS) Init(trainSet *dataset.Dataset) {
	// A well-posed factorization needs k <= min(#buyers, #products).
	if limit := min(trainSet.CountBuyers(), trainSet.CountProducts()); als.nFactors > limit {
		log.Logger().Warn("n_factors exceeds matrix rank, clamping",
			zap.Int("n_factors", als.nFactors),
			zap.Int("limit", limit))
		als.nFactors = limit
	}
	rng := als.GetRandomGenerator()
	als.GlobalMean = trainSet.GlobalMean()
	als.BuyerFactor = rng.NormalMatrix(trainSet.CountBuyers(), als.nFactors, als.initMean, als.initStdDev)
	als.ProductFactor = rng.NormalMatrix(trainSet.CountProducts(), als.nFactors, als.initMean, als.initStdDev)
}

// GetBuyerFactor returns the latent factor of a buyer.
func (als *ALS) GetBuyerFactor(buyerIndex int32) []float32 {
	return als.BuyerFactor[buyerIndex]
}

// GetProductFactor returns the latent factor of a product.
func (als *ALS) GetProductFactor(productIndex int32) []float32 {
	return als.ProductFactor[productIndex]
}

// GetBuyerBias always returns zero: biases are folded into the factors.
func (als *ALS) GetBuyerBias(_ int32) float32 {
	return 0
}

// GetProductBias always returns zero: biases are folded into the factors.
func (als *ALS) GetProductBias(_ int32) float32 {
	return 0
}

// GlobalBias returns the global mean rating.
func (als *ALS) GlobalBias() float32 {
	return als.GlobalMean
}

// NumFactors returns the number of latent factors.
func (als *ALS) NumFactors() int {
	return als.nFactors
}

// CountBuyers returns the number of buyers the model was trained on.
func (als *ALS) CountBuyers() int {
	return len(als.BuyerFactor)
}

// CountProducts returns the number of products the model was trained on.
func (als *ALS) CountProducts() int {
	return len(als.ProductFactor)
}

// Marshal model into byte stream.
func (als *ALS) Marshal(w io.Writer) error {
	if err := encoding.WriteGob(w, als.GlobalMean); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteMatrix(w, als.BuyerFactor); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(encoding.WriteMatrix(w, als.ProductFactor))
}

// Unmarshal model from byte stream.
func (als *ALS) Unmarshal(r io.Reader) error {
	var err error
	if err = encoding.ReadGob(r, &als.GlobalMean); err != nil {
		return errors.Trace(err)
	}
	if als.BuyerFactor, err = encoding.ReadMatrix(r); err != nil {
		return errors.Trace(err)
	}
	if als.ProductFactor, err = encoding.ReadMatrix(r); err != nil {
		return errors.Trace(err)
	}
	// The stored matrices are authoritative: n_factors may have been clamped
	// at fit time.
	if len(als.BuyerFactor) > 0 {
		als.nFactors = len(als.BuyerFactor[0])
	}
	return nil
}

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

	"github.com/unimart/recsys/base/encoding"
	"github.com/unimart/recsys/base/floats"
	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/dataset"
)

// SVD is the biased matrix factorization model trained by stochastic gradient
// descent over observed ratings only. The prediction is
//
//	\hat{r}_{ui} = \mu + b_u + b_i + q_i^T p_u
//
// If buyer u or product i is unknown, their bias and factors are treated as
// zero. Hyper-parameters:
//
//	Lr          - learning rate              | default 0.005
//	Reg         - regularization strength    | default 0.02
//	NEpochs     - number of epochs           | default 20
//	NFactors    - number of latent factors   | default 16
//	InitMean    - mean of initial factors    | default 0
//	InitStdDev  - stddev of initial factors  | default 0.1
type SVD struct {
	BaseModel
	// Model parameters
	BuyerFactor   [][]float32 // p_u
	ProductFactor [][]float32 // q_i
	BuyerBias     []float32   // b_u
	ProductBias   []float32   // b_i
	GlobalMean    float32     // mu
	// Hyper parameters
	nFactors   int
	nEpochs    int
	lr         float32
	reg        float32
	initMean   float32
	initStdDev float32
}

// NewSVD creates a SVD model.
func NewSVD(params Params) *SVD {
	svd := new(SVD)
	svd.SetParams(params)
	return svd
}

// SetParams sets hyper-parameters of the SVD model.
func (svd *SVD) SetParams(params Params) {
	svd.BaseModel.SetParams(params)
	svd.nFactors = svd.Params.GetInt(NFactors, 16)
	svd.nEpochs = svd.Params.GetInt(NEpochs, 20)
	svd.lr = svd.Params.GetFloat32(Lr, 0.005)
	svd.reg = svd.Params.GetFloat32(Reg, 0.02)
	svd.initMean = svd.Params.GetFloat32(InitMean, 0)
	svd.initStdDev = svd.Params.GetFloat32(InitStdDev, 0.1)
}

// Clear resets the model to an untrained state.
func (svd *SVD) Clear() {
	svd.BuyerFactor = nil
	svd.ProductFactor = nil
	svd.BuyerBias = nil
	svd.ProductBias = nil
	svd.GlobalMean = 0
}

// Invalid returns true if the model is not trained.
func (svd *SVD) Invalid() bool {
	return svd == nil || svd.BuyerFactor == nil || svd.ProductFactor == nil
}

// InternalPredict predicts the rating of a product by a buyer, both as dense
// indices. Unknown indices contribute nothing beyond the global mean.
func (svd *SVD) InternalPredict(buyerIndex, productIndex int32) float32 {
	ret := svd.GlobalMean
	if buyerIndex != dataset.NotIndex && int(buyerIndex) < len(svd.BuyerBias) {
		ret += svd.BuyerBias[buyerIndex]
	}
	if productIndex != dataset.NotIndex && int(productIndex) < len(svd.ProductBias) {
		ret += svd.ProductBias[productIndex]
	}
	if buyerIndex != dataset.NotIndex && productIndex != dataset.NotIndex &&
		int(buyerIndex) < len(svd.BuyerFactor) && int(productIndex) < len(svd.ProductFactor) {
		ret += floats.Dot(svd.BuyerFactor[buyerIndex], svd.ProductFactor[productIndex])
	}
	return ret
}

// Fit trains the SVD model by SGD over observed ratings.
func (svd *SVD) Fit(trainSet *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if trainSet.Count() == 0 || trainSet.CountBuyers() < 2 || trainSet.CountProducts() < 2 {
		return errors.Trace(ErrUntrainable)
	}
	log.Logger().Info("fit svd",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("n_buyers", trainSet.CountBuyers()),
		zap.Int("n_products", trainSet.CountProducts()),
		zap.Any("params", svd.GetParams()))
	svd.Init(trainSet)
	// Create buffers for intermediate values.
	temp := make([]float32, svd.nFactors)
	buyerFactor := make([]float32, svd.nFactors)
	productFactor := make([]float32, svd.nFactors)
	for epoch := 1; epoch <= svd.nEpochs; epoch++ {
		fitStart := time.Now()
		cost := float32(0)
		for i := 0; i < trainSet.Count(); i++ {
			buyerIndex, productIndex, rating := trainSet.Get(i)
			// Compute error: e_{ui} = r - \hat r
			upGrad := rating - svd.InternalPredict(buyerIndex, productIndex)
			cost += upGrad * upGrad
			// Update buyer bias: b_u <- b_u + \gamma (e_{ui} - \lambda b_u)
			gradBuyerBias := upGrad - svd.reg*svd.BuyerBias[buyerIndex]
			svd.BuyerBias[buyerIndex] += svd.lr * gradBuyerBias
			// Update product bias: b_i <- b_i + \gamma (e_{ui} - \lambda b_i)
			gradProductBias := upGrad - svd.reg*svd.ProductBias[productIndex]
			svd.ProductBias[productIndex] += svd.lr * gradProductBias
			copy(buyerFactor, svd.BuyerFactor[buyerIndex])
			copy(productFactor, svd.ProductFactor[productIndex])
			// Update buyer latent factor: p_u <- p_u + \gamma (e_{ui} q_i - \lambda p_u)
			floats.MulConstTo(productFactor, upGrad, temp)
			floats.MulConstAdd(buyerFactor, -svd.reg, temp)
			floats.MulConstAdd(temp, svd.lr, svd.BuyerFactor[buyerIndex])
			// Update product latent factor: q_i <- q_i + \gamma (e_{ui} p_u - \lambda q_i)
			floats.MulConstTo(buyerFactor, upGrad, temp)
			floats.MulConstAdd(productFactor, -svd.reg, temp)
			floats.MulConstAdd(temp, svd.lr, svd.ProductFactor[productIndex])
		}
		loss := math32.Sqrt(cost / float32(trainSet.Count()))
		if config.Verbose {
			log.Logger().Debug("fit svd",
				zap.Int("epoch", epoch),
				zap.Int("n_epochs", svd.nEpochs),
				zap.Float32("rmse", loss),
				zap.Duration("fit_time", time.Since(fitStart)))
		}
		if config.OnEpoch != nil {
			config.OnEpoch(epoch, svd.nEpochs, loss)
		}
	}
	return nil
}

// Init initializes model parameters before training.
func (svd *SVD) Init(trainSet *dataset.Dataset) {
	// A well-posed factorization needs k <= min(#buyers, #products).
	if limit := min(trainSet.CountBuyers(), trainSet.CountProducts()); svd.nFactors > limit {
		log.Logger().Warn("n_factors exceeds matrix rank, clamping",
			zap.Int("n_factors", svd.nFactors),
			zap.Int("limit", limit))
		svd.nFactors = limit
	}
	rng := svd.GetRandomGenerator()
	svd.GlobalMean = trainSet.GlobalMean()
	svd.BuyerBias = make([]float32, trainSet.CountBuyers())
	svd.ProductBias = make([]float32, trainSet.CountProducts())
	svd.BuyerFactor = rng.NormalMatrix(trainSet.CountBuyers(), svd.nFactors, svd.initMean, svd.initStdDev)
	svd.ProductFactor = rng.NormalMatrix(trainSet.CountProducts(), svd.nFactors, svd.initMean, svd.initStdDev)
}

// GetBuyerFactor returns the latent factor of a buyer.
func (svd *SVD) GetBuyerFactor(buyerIndex int32) []float32 {
	return svd.BuyerFactor[buyerIndex]
}

// GetProductFactor returns the latent factor of a product.
func (svd *SVD) GetProductFactor(productIndex int32) []float32 {
	return svd.ProductFactor[productIndex]
}

// GetBuyerBias returns the bias of a buyer.
func (svd *SVD) GetBuyerBias(buyerIndex int32) float32 {
	return svd.BuyerBias[buyerIndex]
}

// GetProductBias returns the bias of a product.
func (svd *SVD) GetProductBias(productIndex int32) float32 {
	return svd.ProductBias[productIndex]
}

// GlobalBias returns the global mean rating.
func (svd *SVD) GlobalBias() float32 {
	return svd.GlobalMean
}

// NumFactors returns the number of latent factors.
func (svd *SVD) NumFactors() int {
	return svd.nFactors
}

// CountBuyers returns the number of buyers the model was trained on.
func (svd *SVD) CountBuyers() int {
	return len(svd.BuyerFactor)
}

// CountProducts returns the number of products the model was trained on.
func (svd *SVD) CountProducts() int {
	return len(svd.ProductFactor)
}

// Marshal model into byte stream.
func (svd *SVD) Marshal(w io.Writer) error {
	if err := encoding.WriteGob(w, svd.GlobalMean); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteVector(w, svd.BuyerBias); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteVector(w, svd.ProductBias); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteMatrix(w, svd.BuyerFactor); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(encoding.WriteMatrix(w, svd.ProductFactor))
}

// Unmarshal model from byte stream.
func (svd *SVD) Unmarshal(r io.Reader) error {
	var err error
	if err = encoding.ReadGob(r, &svd.GlobalMean); err != nil {
		return errors.Trace(err)
	}
	if svd.BuyerBias, err = encoding.ReadVector(r); err != nil {
		return errors.Trace(err)
	}
	if svd.ProductBias, err = encoding.ReadVector(r); err != nil {
		return errors.Trace(err)
	}
	if svd.BuyerFactor, err = encoding.ReadMatrix(r); err != nil {
		return errors.Trace(err)
	}
	if svd.ProductFactor, err = encoding.ReadMatrix(r); err != nil {
		return errors.Trace(err)
	}
	// The stored matrices are authoritative: n_factors may have been clamped
	// at fit time.
	if len(svd.BuyerFactor) > 0 {
		svd.nFactors = len(svd.BuyerFactor[0])
	}
	return nil
}

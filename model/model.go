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

// Package model implements matrix factorization models over the buyer-product
// rating matrix. All models predict a rating for a (buyer index, product
// index) pair; ranking happens elsewhere.
package model

import (
	"io"

	"github.com/juju/errors"

	"github.com/unimart/recsys/base"
	"github.com/unimart/recsys/base/encoding"
	"github.com/unimart/recsys/dataset"
)

// ErrUntrainable is returned when Fit is called on an empty dataset.
var ErrUntrainable = errors.New("dataset has no ratings to train on")

// FitConfig controls the training loop.
type FitConfig struct {
	Verbose bool
	// OnEpoch is called after each epoch with the epoch number (1-based),
	// the total number of epochs and the training loss.
	OnEpoch func(epoch, nEpochs int, loss float32)
}

// NewFitConfig creates a default fit config.
func NewFitConfig() *FitConfig {
	return &FitConfig{Verbose: true}
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// Model is the interface trained on a rating dataset.
type Model interface {
	// SetParams sets hyper-parameters for the model.
	SetParams(params Params)
	// GetParams returns all hyper-parameters.
	GetParams() Params
	// Fit trains the model on the dataset.
	Fit(trainSet *dataset.Dataset, config *FitConfig) error
	// Clear resets the model to an untrained state.
	Clear()
	// Invalid returns true if the model is not trained.
	Invalid() bool
}

// MatrixFactorization is implemented by models that expose latent factors.
type MatrixFactorization interface {
	Model
	// Predict the rating of the product by the buyer, both as dense indices.
	InternalPredict(buyerIndex, productIndex int32) float32
	// GetBuyerFactor returns the latent factor of a buyer.
	GetBuyerFactor(buyerIndex int32) []float32
	// GetProductFactor returns the latent factor of a product.
	GetProductFactor(productIndex int32) []float32
	// GetBuyerBias returns the bias of a buyer.
	GetBuyerBias(buyerIndex int32) float32
	// GetProductBias returns the bias of a product.
	GetProductBias(productIndex int32) float32
	// GlobalBias returns the global bias (mean rating).
	GlobalBias() float32
	// NumFactors returns the number of latent factors.
	NumFactors() int
	// CountBuyers returns the number of buyers the model was trained on.
	CountBuyers() int
	// CountProducts returns the number of products the model was trained on.
	CountProducts() int
	// Marshal model into byte stream.
	Marshal(w io.Writer) error
	// Unmarshal model from byte stream.
	Unmarshal(r io.Reader) error
}

// BaseModel must be embedded by every model. It manages hyper-parameters and
// the seeded random generator.
type BaseModel struct {
	Params    Params               // Hyper-parameters
	rng       base.RandomGenerator // random generator
	randState int64                // random seed
}

// SetParams sets hyper-parameters for the BaseModel.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
	model.randState = model.Params.GetInt64(RandomState, 0)
	model.rng = base.NewRandomGenerator(model.randState)
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

// GetRandomGenerator returns the random generator of the model.
func (model *BaseModel) GetRandomGenerator() base.RandomGenerator {
	return model.rng
}

// NewModel creates a model by name: "svd" or "als".
func NewModel(name string, params Params) (MatrixFactorization, error) {
	switch name {
	case "svd":
		return NewSVD(params), nil
	case "als":
		return NewALS(params), nil
	}
	return nil, errors.NotValidf("model %q", name)
}

// MarshalModel writes a model with its name so it can be restored by
// UnmarshalModel without knowing the concrete type.
func MarshalModel(w io.Writer, m MatrixFactorization) error {
	var name string
	switch m.(type) {
	case *SVD:
		name = "svd"
	case *ALS:
		name = "als"
	default:
		return errors.NotSupportedf("model type %T", m)
	}
	if err := encoding.WriteString(w, name); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(w, m.GetParams()); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(m.Marshal(w))
}

// UnmarshalModel reads a model written by MarshalModel.
func UnmarshalModel(r io.Reader) (MatrixFactorization, error) {
	name, err := encoding.ReadString(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var params Params
	if err = encoding.ReadGob(r, &params); err != nil {
		return nil, errors.Trace(err)
	}
	m, err := NewModel(name, params)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = m.Unmarshal(r); err != nil {
		return nil, errors.Trace(err)
	}
	return m, nil
}

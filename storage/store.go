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

// Package storage persists trained models together with the id dictionaries
// needed to answer recommendation requests. The artifact is a single file so
// it can be atomically replaced while the recommend command reads it.
package storage

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/unimart/recsys/base/encoding"
	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/dataset"
	"github.com/unimart/recsys/model"
)

const formatVersion = 1

var magic = []byte("UMRS")

// ErrArtifactNotFound is returned by Load when the artifact file does not
// exist yet. Callers fall back to cold-start behavior.
var ErrArtifactNotFound = errors.New("artifact not found")

// Artifact bundles everything the recommend command needs: the trained model,
// the id dictionaries and the products each buyer had rated at train time.
type Artifact struct {
	Model       model.MatrixFactorization
	BuyerDict   *dataset.Dict
	ProductDict *dataset.Dict
	BuyerRated  [][]int32
	Timestamp   time.Time
}

// NewArtifact assembles an artifact from a trained model and its dataset.
func NewArtifact(m model.MatrixFactorization, data *dataset.Dataset) *Artifact {
	return &Artifact{
		Model:       m,
		BuyerDict:   data.GetBuyerDict(),
		ProductDict: data.GetProductDict(),
		BuyerRated:  data.GetBuyerRated(),
		Timestamp:   data.GetTimestamp(),
	}
}

// Save writes the artifact to path. The file is written to a temporary
// sibling first and renamed into place so readers never observe a partial
// artifact.
func Save(path string, artifact *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Trace(err)
	}
	temp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = temp.Close()
		_ = os.Remove(temp.Name())
	}()
	w := bufio.NewWriter(temp)
	if err = write(w, artifact); err != nil {
		return errors.Trace(err)
	}
	if err = w.Flush(); err != nil {
		return errors.Trace(err)
	}
	if err = temp.Close(); err != nil {
		return errors.Trace(err)
	}
	if err = os.Rename(temp.Name(), path); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("saved artifact",
		zap.String("path", path),
		zap.Int32("n_buyers", artifact.BuyerDict.Count()),
		zap.Int32("n_products", artifact.ProductDict.Count()))
	return nil
}

// Load reads an artifact written by Save. A missing file returns
// ErrArtifactNotFound.
func Load(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Trace(ErrArtifactNotFound)
		}
		return nil, errors.Trace(err)
	}
	defer f.Close()
	artifact, err := read(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Annotatef(err, "load artifact %s", path)
	}
	return artifact, nil
}

func write(w io.Writer, artifact *Artifact) error {
	if _, err := w.Write(magic); err != nil {
		return errors.Trace(err)
	}
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(w, artifact.Timestamp); err != nil {
		return errors.Trace(err)
	}
	if err := artifact.BuyerDict.Marshal(w); err != nil {
		return errors.Trace(err)
	}
	if err := artifact.ProductDict.Marshal(w); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(w, artifact.BuyerRated); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(model.MarshalModel(w, artifact.Model))
}

func read(r io.Reader) (*Artifact, error) {
	header := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Trace(err)
	}
	if string(header[:len(magic)]) != string(magic) {
		return nil, errors.NotValidf("artifact magic %q", header[:len(magic)])
	}
	if header[len(magic)] != formatVersion {
		return nil, errors.NotSupportedf("artifact format version %d", header[len(magic)])
	}
	artifact := new(Artifact)
	if err := encoding.ReadGob(r, &artifact.Timestamp); err != nil {
		return nil, errors.Trace(err)
	}
	artifact.BuyerDict = dataset.NewDict()
	if err := artifact.BuyerDict.Unmarshal(r); err != nil {
		return nil, errors.Trace(err)
	}
	artifact.ProductDict = dataset.NewDict()
	if err := artifact.ProductDict.Unmarshal(r); err != nil {
		return nil, errors.Trace(err)
	}
	if err := encoding.ReadGob(r, &artifact.BuyerRated); err != nil {
		return nil, errors.Trace(err)
	}
	m, err := model.UnmarshalModel(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	artifact.Model = m
	return artifact, nil
}

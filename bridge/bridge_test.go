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

package bridge

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimart/recsys/dataset"
	"github.com/unimart/recsys/logics"
	"github.com/unimart/recsys/model"
	"github.com/unimart/recsys/storage"
)

// fakeCommand writes a shell script standing in for the recommend command.
func fakeCommand(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable on windows")
	}
	path := filepath.Join(t.TempDir(), "recsys")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestExecInvoker(t *testing.T) {
	command := fakeCommand(t, `echo '{"buyer_id":7,"cold_start":false,"count":2,"recommendations":[{"product_id":10,"predicted_rating":4.8},{"product_id":11,"predicted_rating":4.2}]}'`)
	result, err := NewExecInvoker(command, "recommend").Invoke(context.Background(), 7, 10, 4.0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.BuyerID)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, int64(10), result.Recommendations[0].ProductID)
}

func TestExecInvoker_NonZeroExit(t *testing.T) {
	command := fakeCommand(t, `echo '{"error":"artifact not found"}' >&2; exit 1`)
	_, err := NewExecInvoker(command).Invoke(context.Background(), 7, 10, 4.0)
	var invocationErr *InvocationError
	require.ErrorAs(t, err, &invocationErr)
	assert.Equal(t, 1, invocationErr.ExitCode)
	assert.Contains(t, invocationErr.Diagnostics, "artifact not found")
}

func TestExecInvoker_InvalidResponse(t *testing.T) {
	command := fakeCommand(t, `echo 'Traceback (most recent call last):'`)
	_, err := NewExecInvoker(command).Invoke(context.Background(), 7, 10, 4.0)
	var invalidErr *InvalidResponseError
	require.ErrorAs(t, err, &invalidErr)
	assert.Contains(t, invalidErr.Output, "Traceback")
}

func TestExecInvoker_Timeout(t *testing.T) {
	command := fakeCommand(t, `sleep 10`)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewExecInvoker(command).Invoke(ctx, 7, 10, 4.0)
	var invocationErr *InvocationError
	require.ErrorAs(t, err, &invocationErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecInvoker_MissingCommand(t *testing.T) {
	_, err := NewExecInvoker(filepath.Join(t.TempDir(), "missing")).Invoke(context.Background(), 7, 10, 4.0)
	var invocationErr *InvocationError
	assert.ErrorAs(t, err, &invocationErr)
}

func TestExecInvoker_Arguments(t *testing.T) {
	command := fakeCommand(t, `printf '{"buyer_id":%s,"count":0,"recommendations":[]}' "$2"`)
	result, err := NewExecInvoker(command, "recommend").Invoke(context.Background(), 42, 5, 3.5)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.BuyerID)
}

func localInvoker(t *testing.T) *LocalInvoker {
	t.Helper()
	data := dataset.Build(time.Unix(0, 0), []dataset.Interaction{
		{BuyerID: 1, ProductID: 10, Rating: 5, Source: dataset.SourceStar},
		{BuyerID: 1, ProductID: 11, Rating: 1, Source: dataset.SourceStar},
		{BuyerID: 2, ProductID: 10, Rating: 5, Source: dataset.SourceStar},
		{BuyerID: 2, ProductID: 12, Rating: 5, Source: dataset.SourceStar},
	})
	m := model.NewSVD(model.Params{model.NFactors: 2, model.NEpochs: 20, model.RandomState: 1})
	require.NoError(t, m.Fit(data, nil))
	return NewLocalInvoker(logics.NewPredictor(storage.NewArtifact(m, data)), purchaseStoreFunc(func(ctx context.Context, buyerID int64) ([]int64, error) {
		return []int64{12}, nil
	}))
}

type purchaseStoreFunc func(ctx context.Context, buyerID int64) ([]int64, error)

func (f purchaseStoreFunc) PurchasedProducts(ctx context.Context, buyerID int64) ([]int64, error) {
	return f(ctx, buyerID)
}

func TestLocalInvoker(t *testing.T) {
	invoker := localInvoker(t)
	result, err := invoker.Invoke(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.BuyerID)
	for _, r := range result.Recommendations {
		assert.NotEqual(t, int64(12), r.ProductID)
	}
}

func TestLocalInvoker_Cancelled(t *testing.T) {
	invoker := localInvoker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := invoker.Invoke(ctx, 1, 10, 0)
	assert.Error(t, err)
}

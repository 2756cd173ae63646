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

// Package bridge is the synchronous boundary between a serving layer and the
// prediction pipeline. The serving layer calls Invoke; whether the pipeline
// runs in-process or as a spawned command is hidden behind the Invoker
// interface.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/unimart/recsys/base/log"
	"github.com/unimart/recsys/logics"
)

// Invoker answers one recommendation request.
type Invoker interface {
	Invoke(ctx context.Context, buyerID int64, topN int, minRating float32) (*logics.Result, error)
}

// InvocationError reports a failed invocation: non-zero exit, timeout or a
// crash before any response was produced. Diagnostics carries the captured
// stderr output.
type InvocationError struct {
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *InvocationError) Error() string {
	if e.Diagnostics != "" {
		return fmt.Sprintf("recommendation invocation failed (exit %d): %s", e.ExitCode, e.Diagnostics)
	}
	return fmt.Sprintf("recommendation invocation failed: %v", e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// InvalidResponseError reports a successful invocation whose output could not
// be parsed as a result envelope.
type InvalidResponseError struct {
	Output string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid recommendation response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

// ExecInvoker runs the recommend command as a short-lived child process per
// call. The request travels as positional arguments, the response as a JSON
// document on stdout and diagnostics on stderr.
type ExecInvoker struct {
	// Command is the executable to spawn, e.g. the recsys binary.
	Command string
	// Args are prepended before the request arguments, e.g. ["recommend"].
	Args []string
}

// NewExecInvoker creates an invoker spawning `command args... buyerID topN minRating`.
func NewExecInvoker(command string, args ...string) *ExecInvoker {
	return &ExecInvoker{Command: command, Args: args}
}

// Invoke spawns one process and parses its response. The caller bounds the
// call through ctx; a deadline hit surfaces as InvocationError.
func (invoker *ExecInvoker) Invoke(ctx context.Context, buyerID int64, topN int, minRating float32) (*logics.Result, error) {
	args := make([]string, 0, len(invoker.Args)+3)
	args = append(args, invoker.Args...)
	args = append(args,
		strconv.FormatInt(buyerID, 10),
		strconv.Itoa(topN),
		strconv.FormatFloat(float64(minRating), 'f', -1, 32))
	cmd := exec.CommandContext(ctx, invoker.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Logger().Warn("recommendation invocation timed out",
			zap.Int64("buyer_id", buyerID))
		return nil, &InvocationError{ExitCode: -1, Diagnostics: diagnostics(&stderr), Err: ctxErr}
	}
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		log.Logger().Error("recommendation invocation failed",
			zap.Int64("buyer_id", buyerID),
			zap.Int("exit_code", exitCode),
			zap.String("diagnostics", diagnostics(&stderr)))
		return nil, &InvocationError{ExitCode: exitCode, Diagnostics: diagnostics(&stderr), Err: err}
	}
	return parseResult(stdout.Bytes())
}

// diagnostics trims the captured stderr to something loggable.
func diagnostics(stderr *bytes.Buffer) string {
	return strings.TrimSpace(stderr.String())
}

func parseResult(output []byte) (*logics.Result, error) {
	var result logics.Result
	if err := json.Unmarshal(output, &result); err != nil {
		log.Logger().Error("invalid recommendation response",
			zap.String("output", lo.Ellipsis(string(output), 256)),
			zap.Error(err))
		return nil, &InvalidResponseError{Output: string(output), Err: err}
	}
	if result.Recommendations == nil {
		result.Recommendations = []logics.Recommendation{}
	}
	return &result, nil
}

// LocalInvoker runs the pipeline in-process against a loaded predictor. A
// serving layer hosting the model natively uses this instead of spawning.
type LocalInvoker struct {
	predictor *logics.Predictor
	purchases PurchaseStore
}

// PurchaseStore supplies the products a buyer already owns. It is implemented
// by the marketplace's purchase database.
type PurchaseStore interface {
	PurchasedProducts(ctx context.Context, buyerID int64) ([]int64, error)
}

// NewLocalInvoker creates an in-process invoker. purchases may be nil when
// exclusion by live purchases is not wanted.
func NewLocalInvoker(predictor *logics.Predictor, purchases PurchaseStore) *LocalInvoker {
	return &LocalInvoker{predictor: predictor, purchases: purchases}
}

// Invoke runs prediction and ranking without leaving the process.
func (invoker *LocalInvoker) Invoke(ctx context.Context, buyerID int64, topN int, minRating float32) (*logics.Result, error) {
	var purchased []int64
	if invoker.purchases != nil {
		var err error
		purchased, err = invoker.purchases.PurchasedProducts(ctx, buyerID)
		if err != nil {
			return nil, errors.Annotate(err, "load purchased products")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return logics.Recommend(invoker.predictor, buyerID, purchased, topN, minRating), nil
}

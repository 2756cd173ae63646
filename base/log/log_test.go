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

package log

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	assert.NotNil(t, Logger())
}

func TestSetLogger(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)

	SetLogger(flagSet, true)
	assert.NotNil(t, Logger())
	assert.True(t, Logger().Core().Enabled(-1)) // zap.DebugLevel

	SetLogger(flagSet, false)
	assert.NotNil(t, Logger())
	assert.False(t, Logger().Core().Enabled(-1))

	tempDir := t.TempDir()
	assert.NoError(t, flagSet.Set("log-path", tempDir+"/recsys.log"))
	SetLogger(flagSet, false)
	Logger().Info("message")
}

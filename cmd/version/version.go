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

package version

import "fmt"

// Name is the name of this program.
const Name = "recsys"

// Version is injected at build time via -ldflags.
var Version = "unknown"

// BuildUser is the user who built this program.
var BuildUser = "unknown"

// BuildTime is the time when this program was built.
var BuildTime = "unknown"

// BuildInfo returns a human readable version line.
func BuildInfo() string {
	return fmt.Sprintf("%s version %s (build by %s at %s)", Name, Version, BuildUser, BuildTime)
}

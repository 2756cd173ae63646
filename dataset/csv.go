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

package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// LoadCSV reads interactions from a headerless CSV file of
// buyer_id,product_id,rating lines, the export format of the marketplace's
// meaningful-purchases dump. Blank lines are skipped. All rows load as
// explicit star ratings.
func LoadCSV(path string) ([]Interaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		_ = file.Close()
	}()
	var interactions []Interaction
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 3 {
			return nil, errors.Errorf("%s:%d: expected 3 fields, got %d", path, line, len(fields))
		}
		buyerID, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d: buyer id", path, line)
		}
		productID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d: product id", path, line)
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 32)
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d: rating", path, line)
		}
		interactions = append(interactions, Interaction{
			BuyerID:   buyerID,
			ProductID: productID,
			Rating:    float32(rating),
			Source:    SourceStar,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return interactions, nil
}

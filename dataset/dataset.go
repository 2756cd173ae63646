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

// Package dataset builds the sparse buyer×product rating matrix used for
// training. Unrated pairs are absent from the matrix, never zero-filled:
// zero is a valid low rating while absence means unknown.
package dataset

import (
	"sort"
	"time"
)

// Source tags where an interaction's rating came from.
type Source string

const (
	// SourceStar is an explicit 1-5 star purchase rating.
	SourceStar Source = "star"
	// SourceVote is derived from an up or down vote on a product.
	SourceVote Source = "vote"
)

// Ratings derived from votes. An upvote reads as strong affinity, a downvote
// as strong aversion.
const (
	UpvoteRating   = float32(5)
	DownvoteRating = float32(1)
)

// Interaction is one observed (buyer, product, rating) signal.
type Interaction struct {
	BuyerID   int64
	ProductID int64
	Rating    float32
	Source    Source
}

// Dataset is the sparse rating matrix in coordinate form plus the id
// dictionaries mapping marketplace ids to dense indices.
type Dataset struct {
	timestamp      time.Time
	buyerDict      *Dict
	productDict    *Dict
	buyerIndices   []int32
	productIndices []int32
	ratings        []float32
	buyerRated     [][]int32
	ratingSum      float32
}

type pairKey struct {
	buyerID   int64
	productID int64
}

type pairAccum struct {
	starSum   float32
	starCount int
	voteSum   float32
	voteCount int
}

// Build deduplicates interactions into one effective rating per
// (buyer, product) pair and assembles the sparse matrix. An explicit star
// rating takes precedence over vote-derived ratings for the same pair;
// duplicates within the winning source are averaged. Empty input yields a
// valid empty dataset.
func Build(timestamp time.Time, interactions []Interaction) *Dataset {
	accums := make(map[pairKey]*pairAccum)
	for _, interaction := range interactions {
		key := pairKey{interaction.BuyerID, interaction.ProductID}
		accum, ok := accums[key]
		if !ok {
			accum = &pairAccum{}
			accums[key] = accum
		}
		switch interaction.Source {
		case SourceVote:
			accum.voteSum += interaction.Rating
			accum.voteCount++
		default:
			accum.starSum += interaction.Rating
			accum.starCount++
		}
	}
	// Sort pairs so dense indices do not depend on map iteration order.
	keys := make([]pairKey, 0, len(accums))
	for key := range accums {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].buyerID != keys[j].buyerID {
			return keys[i].buyerID < keys[j].buyerID
		}
		return keys[i].productID < keys[j].productID
	})

	d := &Dataset{
		timestamp:   timestamp,
		buyerDict:   NewDict(),
		productDict: NewDict(),
	}
	for _, key := range keys {
		accum := accums[key]
		var rating float32
		if accum.starCount > 0 {
			rating = accum.starSum / float32(accum.starCount)
		} else {
			rating = accum.voteSum / float32(accum.voteCount)
		}
		buyerIndex := d.buyerDict.Add(key.buyerID)
		productIndex := d.productDict.Add(key.productID)
		d.buyerIndices = append(d.buyerIndices, buyerIndex)
		d.productIndices = append(d.productIndices, productIndex)
		d.ratings = append(d.ratings, rating)
		for int32(len(d.buyerRated)) <= buyerIndex {
			d.buyerRated = append(d.buyerRated, nil)
		}
		d.buyerRated[buyerIndex] = append(d.buyerRated[buyerIndex], productIndex)
		d.ratingSum += rating
	}
	return d
}

// GetTimestamp returns the time the dataset was assembled.
func (d *Dataset) GetTimestamp() time.Time {
	return d.timestamp
}

// Count returns the number of observed ratings.
func (d *Dataset) Count() int {
	return len(d.ratings)
}

// CountBuyers returns the number of distinct buyers.
func (d *Dataset) CountBuyers() int {
	return int(d.buyerDict.Count())
}

// CountProducts returns the number of distinct products.
func (d *Dataset) CountProducts() int {
	return int(d.productDict.Count())
}

// Get returns the i-th observed rating as dense indices.
func (d *Dataset) Get(i int) (buyerIndex, productIndex int32, rating float32) {
	return d.buyerIndices[i], d.productIndices[i], d.ratings[i]
}

// GetBuyerDict returns the buyer id dictionary.
func (d *Dataset) GetBuyerDict() *Dict {
	return d.buyerDict
}

// GetProductDict returns the product id dictionary.
func (d *Dataset) GetProductDict() *Dict {
	return d.productDict
}

// GetBuyerRated returns, per dense buyer index, the dense product indices the
// buyer has rated. Used to exclude already-rated products from serving.
func (d *Dataset) GetBuyerRated() [][]int32 {
	return d.buyerRated
}

// GlobalMean returns the mean of all observed ratings, or zero for an empty
// dataset.
func (d *Dataset) GlobalMean() float32 {
	if len(d.ratings) == 0 {
		return 0
	}
	return d.ratingSum / float32(len(d.ratings))
}

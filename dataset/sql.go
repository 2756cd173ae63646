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
	"context"

	"github.com/juju/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLSource reads interactions straight from the marketplace MySQL schema:
// star ratings from rated purchases and up/down votes from product_rating.
// Read-only; vote toggling and purchase writes belong to the marketplace
// backend.
type SQLSource struct {
	db *gorm.DB
}

// OpenSQL connects to the marketplace database.
func OpenSQL(dsn string) (*SQLSource, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &SQLSource{db: db}, nil
}

// NewSQLSource wraps an existing gorm connection. Used by tests.
func NewSQLSource(db *gorm.DB) *SQLSource {
	return &SQLSource{db: db}
}

type purchaseRow struct {
	BuyerID   int64
	ProductID int64
	Rating    float32
}

type voteRow struct {
	BuyerID   int64
	ProductID int64
	Rating    string
}

// Interactions loads all rating signals. Star ratings and votes are returned
// as separate interactions; Build resolves the precedence between them.
func (s *SQLSource) Interactions(ctx context.Context) ([]Interaction, error) {
	var purchases []purchaseRow
	err := s.db.WithContext(ctx).
		Raw("SELECT buyer_id, product_id, rating FROM purchase WHERE rating IS NOT NULL").
		Scan(&purchases).Error
	if err != nil {
		return nil, errors.Annotate(err, "load purchase ratings")
	}
	var votes []voteRow
	err = s.db.WithContext(ctx).
		Raw("SELECT buyer_id, product_id, rating FROM product_rating").
		Scan(&votes).Error
	if err != nil {
		return nil, errors.Annotate(err, "load product votes")
	}
	interactions := make([]Interaction, 0, len(purchases)+len(votes))
	for _, row := range purchases {
		interactions = append(interactions, Interaction{
			BuyerID:   row.BuyerID,
			ProductID: row.ProductID,
			Rating:    row.Rating,
			Source:    SourceStar,
		})
	}
	for _, row := range votes {
		rating := DownvoteRating
		if row.Rating == "up" {
			rating = UpvoteRating
		}
		interactions = append(interactions, Interaction{
			BuyerID:   row.BuyerID,
			ProductID: row.ProductID,
			Rating:    rating,
			Source:    SourceVote,
		})
	}
	return interactions, nil
}

// PurchasedProducts returns the ids of products the buyer has purchased,
// rated or not. Serving excludes these from recommendations.
func (s *SQLSource) PurchasedProducts(ctx context.Context, buyerID int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Raw("SELECT DISTINCT product_id FROM purchase WHERE buyer_id = ?", buyerID).
		Scan(&ids).Error
	if err != nil {
		return nil, errors.Annotatef(err, "load purchases of buyer %d", buyerID)
	}
	return ids, nil
}

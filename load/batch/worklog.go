// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
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

package batch

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

const (
	worklogBucket = "processedFiles"
)

// WorklogItem describes a single processed file
type WorklogItem struct {
	ProcessedAt time.Time `json:"processedAt"`
	Stats       Stats     `json:"stats"`
}

// Worklog keeps track of already processed log files so repeated
// batch runs do not produce duplicate records.
type Worklog struct {
	db *bbolt.DB
}

func normalizeKey(path string) []byte {
	abs, err := filepath.Abs(path)
	if err != nil {
		return []byte(path)
	}
	return []byte(abs)
}

// IsProcessed tests whether a file has been already processed
func (w *Worklog) IsProcessed(path string) (bool, error) {
	item, err := w.GetItem(path)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// GetItem returns a record of a processed file or nil
// in case the file has not been processed yet.
func (w *Worklog) GetItem(path string) (*WorklogItem, error) {
	var ans *WorklogItem
	err := w.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(worklogBucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", worklogBucket)
		}
		v := b.Get(normalizeKey(path))
		if v == nil {
			return nil
		}
		ans = new(WorklogItem)
		return json.Unmarshal(v, ans)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read worklog item: %w", err)
	}
	return ans, nil
}

// MarkProcessed stores a file as processed along with
// the processing stats
func (w *Worklog) MarkProcessed(path string, stats Stats) error {
	item := WorklogItem{ProcessedAt: time.Now(), Stats: stats}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to mark file processed: %w", err)
	}
	err = w.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(worklogBucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", worklogBucket)
		}
		return b.Put(normalizeKey(path), data)
	})
	if err != nil {
		return fmt.Errorf("failed to mark file processed: %w", err)
	}
	log.Debug().Str("file", path).Any("stats", stats).Msg("marked file as processed")
	return nil
}

// Reset removes all the records from the worklog
func (w *Worklog) Reset() error {
	err := w.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(worklogBucket)) != nil {
			if err := tx.DeleteBucket([]byte(worklogBucket)); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket([]byte(worklogBucket))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to reset worklog: %w", err)
	}
	return nil
}

func (w *Worklog) Close() error {
	return w.db.Close()
}

// NewWorklog opens (or creates) a worklog database
func NewWorklog(path string) (*Worklog, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open worklog %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(worklogBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize worklog %s: %w", path, err)
	}
	return &Worklog{db: db}, nil
}

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
	"errors"
	"sync"

	"cflogproc/save"
)

var (
	ErrOutputClosed = errors.New("output closed before all records were confirmed")
)

type fileWrites struct {
	confirmed int64
	failed    int64
}

// writeTracker collects write confirmations per source file
type writeTracker struct {
	mu     sync.Mutex
	cond   *sync.Cond
	files  map[string]fileWrites
	closed bool
}

func (wt *writeTracker) run(confirm <-chan save.ConfirmMsg) {
	for msg := range confirm {
		wt.mu.Lock()
		fw := wt.files[msg.FilePath]
		fw.confirmed++
		if msg.Error != nil {
			fw.failed++
		}
		wt.files[msg.FilePath] = fw
		wt.cond.Broadcast()
		wt.mu.Unlock()
	}
	wt.mu.Lock()
	wt.closed = true
	wt.cond.Broadcast()
	wt.mu.Unlock()
}

func (wt *writeTracker) snapshot(file string) fileWrites {
	wt.mu.Lock()
	defer wt.mu.Unlock()
	return wt.files[file]
}

// waitFor blocks until `numRecords` confirmations (counted from `base`)
// arrive for the file and returns the number of failed writes among them.
func (wt *writeTracker) waitFor(file string, base fileWrites, numRecords int64) (int64, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()
	for wt.files[file].confirmed-base.confirmed < numRecords && !wt.closed {
		wt.cond.Wait()
	}
	curr := wt.files[file]
	failed := curr.failed - base.failed
	if curr.confirmed-base.confirmed < numRecords {
		return failed, ErrOutputClosed
	}
	return failed, nil
}

func newWriteTracker(confirm <-chan save.ConfirmMsg) *writeTracker {
	wt := &writeTracker{files: make(map[string]fileWrites)}
	wt.cond = sync.NewCond(&wt.mu)
	go wt.run(confirm)
	return wt
}

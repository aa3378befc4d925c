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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cflogproc/save"
	"cflogproc/servicelog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenWriter struct{}

func (bw brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("device is full")
}

func prepareLogDir(t *testing.T) (*Conf, *Worklog) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.Mkdir(logDir, 0755))
	writePlainLog(t, logDir, "E2TEST.2014-05-23-01.aaaa", testLines)
	writeGzipLog(t, logDir, "E2TEST.2014-05-23-02.bbbb.gz", testLines)
	wl, err := NewWorklog(filepath.Join(dir, "worklog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { wl.Close() })
	conf := &Conf{SrcPath: logDir, Pattern: "E2TEST.*", WorklogPath: filepath.Join(dir, "worklog.db")}
	return conf, wl
}

func TestProcFuncSkipsProcessedFiles(t *testing.T) {
	conf, wl := prepareLogDir(t)
	var buf bytes.Buffer
	out := make(chan *servicelog.BoundOutputRecord, 100)
	confirm, err := save.RunWriteConsumer(out, save.FormatJSON, &buf)
	require.NoError(t, err)
	proc := CreateLogFileProcFunc(newTestFileProcessor(nil), wl, out, confirm)

	stats, err := proc(conf)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), stats.NumWritten)
	assert.Equal(t, int64(0), stats.NumWriteErrors)
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 4)

	stats, err = proc(conf)
	assert.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 4)
	close(out)
}

func TestProcFuncDoesNotMarkFilesOnWriteErrors(t *testing.T) {
	conf, wl := prepareLogDir(t)
	out := make(chan *servicelog.BoundOutputRecord, 100)
	confirm, err := save.RunWriteConsumer(out, save.FormatJSON, brokenWriter{})
	require.NoError(t, err)
	proc := CreateLogFileProcFunc(newTestFileProcessor(nil), wl, out, confirm)

	stats, err := proc(conf)
	assert.Error(t, err)
	assert.Equal(t, int64(4), stats.NumWritten)
	assert.Equal(t, int64(4), stats.NumWriteErrors)

	files, err := ListLogFiles(conf)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, file := range files {
		done, err := wl.IsProcessed(file)
		assert.NoError(t, err)
		assert.False(t, done)
	}
	close(out)
}

func TestProcFuncOutputClosedEarly(t *testing.T) {
	conf, wl := prepareLogDir(t)
	out := make(chan *servicelog.BoundOutputRecord, 100)
	confirm := make(chan save.ConfirmMsg)
	close(confirm)
	proc := CreateLogFileProcFunc(newTestFileProcessor(nil), wl, out, confirm)

	_, err := proc(conf)
	assert.ErrorIs(t, err, ErrOutputClosed)
	files, err := ListLogFiles(conf)
	require.NoError(t, err)
	done, err := wl.IsProcessed(files[0])
	assert.NoError(t, err)
	assert.False(t, done)
}

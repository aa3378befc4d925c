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

	"cflogproc/servicelog"
	"cflogproc/servicelog/cloudfront"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHeader1 = "#Version: 1.0"
	testHeader2 = "#Fields: date time x-edge-location sc-bytes c-ip cs-method cs(Host) cs-uri-stem " +
		"sc-status cs(Referer) cs(User-Agent) cs-uri-query cs(Cookie) x-edge-result-type " +
		"x-edge-request-id x-host-header cs-protocol cs-bytes"
)

var (
	testLines = []string{
		testHeader1,
		testHeader2,
		strings.Join([]string{
			"2014-05-23", "01:13:11", "FRA2", "182", "192.0.2.1", "GET",
			"d111111abcdef8.cloudfront.net", "/view/my/file.html", "200", "www.displaymyfiles.com",
			"Mozilla/4.0%20(compatible;%20MSIE%205.0b1;%20Mac_PowerPC)", "-", "-", "Hit",
			"xGN7KWpVEmB9Dp7ctcVFQC4E-nrcOcEKS1BhFa", "d111111abcdef8.cloudfront.net", "http", "2390282",
		}, "\t"),
		"this is not a CloudFront record",
		strings.Join([]string{
			"2014-05-23", "01:13:12", "FRA2", "-", "192.0.2.2", "GET",
			"d111111abcdef8.cloudfront.net", "/index.html", "304", "-",
			"curl/8.0", "-", "-", "RefreshHit",
			"aaaBBBccc", "-", "https", "-",
		}, "\t"),
		strings.Join([]string{
			"2014-05-23", "01:13:13", "FRA2", "100", "10.0.0.1", "GET",
			"d111111abcdef8.cloudfront.net", "/health", "200", "-",
			"kube-health/1.0", "-", "-", "Miss",
			"dddEEEfff", "-", "https", "-",
		}, "\t"),
	}
)

type testProcessor struct {
	transformer *cloudfront.Transformer
	excluded    servicelog.ExcludeIPList
	failOn      string
}

func (p *testProcessor) ProcItem(logRec servicelog.InputRecord) (servicelog.OutputRecord, error) {
	if p.excluded.Excludes(logRec) {
		return nil, nil
	}
	if p.failOn != "" && logRec.GetClientIP().String() == p.failOn {
		return nil, errors.New("processing failed")
	}
	return p.transformer.Transform(logRec, 0)
}

func newTestFileProcessor(legacyLines *int) *FileProcessor {
	return NewFileProcessor(
		cloudfront.NewLineParser(func(line string) {
			if legacyLines != nil {
				*legacyLines++
			}
		}),
		&testProcessor{
			transformer: cloudfront.NewTransformer(),
			excluded:    servicelog.ExcludeIPList{"10.0.0.1"},
		},
	)
}

func writePlainLog(t *testing.T, dir, name string, lines []string) string {
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
	require.NoError(t, err)
	return path
}

func writeGzipLog(t *testing.T, dir, name string, lines []string) string {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func collect(t *testing.T, fp *FileProcessor, path string) ([]*servicelog.BoundOutputRecord, Stats, error) {
	out := make(chan *servicelog.BoundOutputRecord, 100)
	stats, err := fp.ProcessFile(path, out)
	close(out)
	ans := make([]*servicelog.BoundOutputRecord, 0, 10)
	for item := range out {
		ans = append(ans, item)
	}
	return ans, stats, err
}

func TestProcessPlainFile(t *testing.T) {
	path := writePlainLog(t, t.TempDir(), "E2TEST.2014-05-23-01.abcd", testLines)
	recs, stats, err := collect(t, newTestFileProcessor(nil), path)
	assert.NoError(t, err)
	assert.Equal(t, Stats{NumLines: 6, NumHeaders: 2, NumErrors: 1, NumIgnored: 1, NumWritten: 2}, stats)
	require.Len(t, recs, 2)
	assert.Equal(t, path, recs[0].FilePath)
	assert.Equal(t, "cloudfront", recs[0].GetType())
	tRec, ok := recs[1].Rec.(*cloudfront.OutputRecord)
	require.True(t, ok)
	assert.Equal(t, "/index.html", tRec.Object)
	assert.Nil(t, tRec.BytesSent)
}

func TestProcessFilePositions(t *testing.T) {
	path := writePlainLog(t, t.TempDir(), "positions.log", testLines)
	recs, _, err := collect(t, newTestFileProcessor(nil), path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	expectedStart := int64(len(testLines[0]) + len(testLines[1]) + 2)
	assert.Equal(t, expectedStart, recs[0].FilePos.SeekStart)
	assert.Equal(t, expectedStart+int64(len(testLines[2]))+1, recs[0].FilePos.SeekEnd)
}

func TestProcessGzipFile(t *testing.T) {
	path := writeGzipLog(t, t.TempDir(), "E2TEST.2014-05-23-01.abcd.gz", testLines)
	recs, stats, err := collect(t, newTestFileProcessor(nil), path)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.NumWritten)
	assert.Len(t, recs, 2)
}

func TestProcessLegacyLinesCallHook(t *testing.T) {
	legacy := strings.Join([]string{
		"2012-05-25", "22:01:30", "AMS1", "4448", "94.185.92.18", "GET",
		"d2f8crqw4kq9xb.cloudfront.net", "/ice.png", "200", "-",
		"Mozilla/5.0", "-", "-", "RefreshHit", "FXmQZlSu1CFqDuHZ6IaXwcL9exuLnV8=",
	}, "\t")
	path := writePlainLog(t, t.TempDir(), "legacy.log", []string{testHeader1, legacy})
	var numLegacy int
	recs, stats, err := collect(t, newTestFileProcessor(&numLegacy), path)
	assert.NoError(t, err)
	assert.Equal(t, 1, numLegacy)
	assert.Equal(t, int64(1), stats.NumWritten)
	require.Len(t, recs, 1)
	assert.Equal(t, cloudfront.GrammarLegacy, recs[0].Rec.(*cloudfront.OutputRecord).Grammar)
}

func TestProcessItemErrorIsCounted(t *testing.T) {
	path := writePlainLog(t, t.TempDir(), "err.log", testLines)
	fp := NewFileProcessor(
		cloudfront.NewLineParser(nil),
		&testProcessor{transformer: cloudfront.NewTransformer(), failOn: "192.0.2.1"},
	)
	recs, stats, err := collect(t, fp, path)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.NumErrors)
	assert.Len(t, recs, 2)
}

func TestProcessMissingFile(t *testing.T) {
	_, _, err := collect(t, newTestFileProcessor(nil), filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

func TestOpenLogFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.log")
	require.NoError(t, os.WriteFile(path, []byte{}, 0644))
	rd, err := OpenLogFile(path)
	require.NoError(t, err)
	assert.NoError(t, rd.Close())
}

func TestStatsAdd(t *testing.T) {
	s := Stats{NumLines: 1, NumErrors: 2}.Add(Stats{NumLines: 3, NumWritten: 4})
	assert.Equal(t, Stats{NumLines: 4, NumErrors: 2, NumWritten: 4}, s)
}

func TestProcessReader(t *testing.T) {
	out := make(chan *servicelog.BoundOutputRecord, 10)
	stats, err := newTestFileProcessor(nil).ProcessReader(
		"stdin", strings.NewReader(strings.Join(testLines, "\n")), out)
	close(out)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.NumWritten)
	item := <-out
	assert.Equal(t, "stdin", item.FilePath)
}

func TestProcessFilePositionsCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(testLines, "\r\n")), 0644))
	recs, _, err := collect(t, newTestFileProcessor(nil), path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	expectedStart := int64(len(testLines[0]) + len(testLines[1]) + 4)
	assert.Equal(t, expectedStart, recs[0].FilePos.SeekStart)
	assert.Equal(t, expectedStart+int64(len(testLines[2]))+2, recs[0].FilePos.SeekEnd)
	assert.Equal(t, int64(len(testLines[4]))+2, recs[1].FilePos.SeekEnd-recs[1].FilePos.SeekStart)
}

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

package save

import (
	"bufio"
	"fmt"
	"io"

	"cflogproc/servicelog"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

type recordEncoder interface {
	encode(item *servicelog.BoundOutputRecord) error
}

type jsonLinesEncoder struct {
	w *bufio.Writer
}

func (enc *jsonLinesEncoder) encode(item *servicelog.BoundOutputRecord) error {
	out, err := item.ToJSON()
	if err != nil {
		return err
	}
	if _, err := enc.w.Write(out); err != nil {
		return err
	}
	return enc.w.WriteByte('\n')
}

type msgpackEncoder struct {
	enc *msgpack.Encoder
}

func (enc *msgpackEncoder) encode(item *servicelog.BoundOutputRecord) error {
	return enc.enc.Encode(item.Rec)
}

func newEncoder(format string, w *bufio.Writer) (recordEncoder, error) {
	switch format {
	case FormatJSON, "":
		return &jsonLinesEncoder{w: w}, nil
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return &msgpackEncoder{enc: enc}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %s", format)
	}
}

// RunWriteConsumer runs a write consumer encoding incoming records
// (JSON lines or a stream of MessagePack objects) to the provided writer.
// For each record, a confirmation message is sent to the returned
// channel. Each record is flushed before it is confirmed so the message
// also reports errors of the underlying writer. The channel is closed once
// `incomingData` is closed.
func RunWriteConsumer(
	incomingData <-chan *servicelog.BoundOutputRecord,
	format string,
	writer io.Writer,
) (<-chan ConfirmMsg, error) {
	bw := bufio.NewWriter(writer)
	enc, err := newEncoder(format, bw)
	if err != nil {
		return nil, err
	}
	confirmChan := make(chan ConfirmMsg)
	go func() {
		defer close(confirmChan)
		for item := range incomingData {
			pos := item.FilePos
			err := enc.encode(item)
			if err == nil {
				err = bw.Flush()
			}
			if err != nil {
				log.Error().Err(err).Str("file", item.FilePath).Msg("failed to write record")
			} else {
				pos.Written = true
			}
			confirmChan <- ConfirmMsg{
				FilePath: item.FilePath,
				Position: pos,
				Error:    err,
			}
		}
	}()
	return confirmChan, nil
}

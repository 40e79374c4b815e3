// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"github.com/gx-org/rex/api"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const maxLineSize = 1 << 20

type (
	job struct {
		seq  int
		line int
		data []byte
	}

	result struct {
		seq  int
		line int
		out  []byte
		err  error
	}
)

// process runs a program over JSON-lines records read from r.
// Every record is written to w, in input order, once the program has been run over it.
// Records for which the program fails are not written: their errors are returned
// together once all the input has been processed.
func process(prog *api.Program, r io.Reader, w io.Writer, workers int) error {
	workers = max(1, workers)
	jobs := make(chan job, workers)
	results := make(chan result, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out, err := runLine(prog, j.data)
				results <- result{seq: j.seq, line: j.line, out: out, err: err}
			}
		}()
	}

	var readErr error
	go func() {
		defer close(jobs)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		line, seq := 0, 0
		for scanner.Scan() {
			line++
			data := bytes.TrimSpace(scanner.Bytes())
			if len(data) == 0 {
				continue
			}
			jobs <- job{seq: seq, line: line, data: bytes.Clone(data)}
			seq++
		}
		readErr = scanner.Err()
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var errs error
	pending := make(map[int]result)
	next := 0
	for res := range results {
		pending[res.seq] = res
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if p.err != nil {
				errs = multierr.Append(errs, errors.Wrapf(p.err, "line %d", p.line))
				continue
			}
			if _, err := w.Write(append(p.out, '\n')); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	// results is closed after jobs: the reader goroutine has returned.
	return multierr.Append(readErr, errs)
}

func runLine(prog *api.Program, data []byte) ([]byte, error) {
	v, err := value.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	record, ok := v.(value.Object)
	if !ok {
		return nil, errors.Errorf("record is a %s, not an object", v.Kind())
	}
	if _, err := prog.Run(record); err != nil {
		return nil, err
	}
	return value.MarshalJSON(record)
}

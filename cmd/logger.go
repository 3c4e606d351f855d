/*
Copyright © 2025 Emilio Collado <ecollado@ecollado.dev>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ecollado/lectio/config"
	"github.com/ecollado/lectio/logger/dot"
	"github.com/k1LoW/errors"
	slogmulti "github.com/samber/slog-multi"
)

const stateLogName = "lectio.log"

// newLogger builds the command logger: a JSON log in the state directory
// (always at debug, so error.json has full context) fanned out with the
// dot progress handler on stdout. With verbose, a text handler on stderr
// is added instead of dots.
func newLogger(verbose bool) (_ *slog.Logger, _ func() error, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()

	stateDir := config.StateHomePath()
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(stateDir, stateLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})

	var front slog.Handler
	if verbose {
		front = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		dh, err := dot.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
		if err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		front = dh
	}
	logger := slog.New(slogmulti.Fanout(fileHandler, front))
	return logger, f.Close, nil
}

// stateLogPath returns the path of the JSON state log.
func stateLogPath() string {
	return filepath.Join(config.StateHomePath(), stateLogName)
}

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
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecollado/lectio"
	"github.com/ecollado/lectio/config"
	"github.com/ecollado/lectio/pptx"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	out        string
	stamp      bool
	pruneEmpty bool
	watch      bool
)

var renderCmd = &cobra.Command{
	Use:   "render [TEMPLATE_FILE] [PAYLOAD_FILE]",
	Short: "render a payload into a deck from a template",
	Long:  `render a payload into a deck from a template.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		templatePath := args[0]
		payloadPath := args[1]
		logger, closeLog, err := newLogger(verbose)
		if err != nil {
			return err
		}
		defer func() {
			_ = closeLog()
		}()
		cfg, err := config.Load(profile)
		if err != nil {
			return err
		}
		lectio.ProtectAbbreviations(cfg.Abbreviations...)

		renderOnce := func() error {
			payload, err := lectio.LoadPayload(payloadPath)
			if err != nil {
				return err
			}
			deck, err := pptx.Open(templatePath, pptx.WithLogger(logger))
			if err != nil {
				return err
			}
			r, err := lectio.New(deck, rendererOptions(cfg, logger)...)
			if err != nil {
				return err
			}
			if err := r.Render(payload); err != nil {
				return err
			}
			return deck.Save(outPath(out, payload.Meta.Date))
		}

		if err := renderOnce(); err != nil {
			return err
		}
		if !watch {
			return nil
		}
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		for _, p := range []string{templatePath, payloadPath} {
			if err := watcher.Add(p); err != nil {
				return err
			}
		}
		logger.Info("watching for changes", slog.String("template", templatePath), slog.String("payload", payloadPath))
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				// Editors often replace the file, which drops the watch.
				time.Sleep(200 * time.Millisecond)
				_ = watcher.Add(ev.Name)
				if err := renderOnce(); err != nil {
					logger.Error("failed to render", slog.String("error", err.Error()))
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Error("watch error", slog.String("error", werr.Error()))
			}
		}
	},
}

// rendererOptions maps the loaded config onto renderer options.
func rendererOptions(cfg *config.Config, logger *slog.Logger) []lectio.Option {
	minChars := cfg.MinChars
	if minChars == 0 {
		minChars = lectio.DefaultMinChars
	}
	maxChars := cfg.MaxChars
	if maxChars == 0 {
		maxChars = lectio.DefaultMaxChars
	}
	opts := []lectio.Option{
		lectio.WithLogger(logger),
		lectio.WithChunkBounds(minChars, maxChars),
		lectio.WithPruneEmpty(pruneEmpty),
	}
	if len(cfg.Tokens) > 0 || len(cfg.WaterfallTokens) > 0 {
		known := cfg.Tokens
		if len(known) == 0 {
			known = lectio.KnownTokens()
		}
		waterfall := cfg.WaterfallTokens
		if len(waterfall) == 0 {
			waterfall = lectio.WaterfallTokens()
		}
		opts = append(opts, lectio.WithTokens(known, waterfall))
	}
	if cfg.RefrainToken != "" {
		opts = append(opts, lectio.WithRefrainToken(cfg.RefrainToken))
	}
	return opts
}

// outPath stamps the payload date into the output file name when requested:
// "misa.pptx" becomes "misa-2025-12-14.pptx".
func outPath(out, date string) string {
	if !stamp || date == "" {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s-%s%s", strings.TrimSuffix(out, ext), date, ext)
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&out, "out", "o", "output.pptx", "output file")
	renderCmd.Flags().BoolVarP(&stamp, "stamp", "", false, "stamp the payload date into the output file name")
	renderCmd.Flags().BoolVarP(&pruneEmpty, "prune-empty", "", false, "delete slides left without text after rendering")
	renderCmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch the template and payload and re-render on change")
}

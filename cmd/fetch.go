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
	"time"

	"github.com/ecollado/lectio"
	"github.com/ecollado/lectio/config"
	"github.com/ecollado/lectio/fetch"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	dateArg  string
	fetchOut string
	openLink bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "fetch the day's readings and write a payload file",
	Long:  `fetch the day's readings from the lectionary feed and write a payload file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		date, err := parseDate(dateArg)
		if err != nil {
			return err
		}
		opts := []fetch.Option{
			fetch.WithLogger(logger),
		}
		if cfg.FeedURL != "" {
			opts = append(opts, fetch.WithFeedURL(cfg.FeedURL))
		}
		f, err := fetch.New(opts...)
		if err != nil {
			return err
		}
		payload, err := f.BuildPayload(cmd.Context(), date)
		if err != nil {
			return err
		}
		if err := lectio.WritePayload(payload, fetchOut); err != nil {
			return err
		}
		logger.Info("wrote payload", slog.String("path", fetchOut), slog.String("date", payload.Meta.Date))
		fmt.Println(fetchOut)
		if openLink && payload.Meta.Link != "" {
			if err := browser.OpenURL(payload.Meta.Link); err != nil {
				return err
			}
		}
		return nil
	},
}

// parseDate accepts the date formats people actually type: 2025-12-14,
// 12-14-25 and 12/14/25. Empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	for _, layout := range []string{"2006-01-02", "01-02-06", "01/02/06"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", s)
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&dateArg, "date", "d", "", "date of the readings (default today)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "payload.json", "output file")
	fetchCmd.Flags().BoolVarP(&openLink, "open", "", false, "open the source page in the browser")
}

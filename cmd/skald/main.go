/*
 * MIT License
 *
 * Copyright (c) 2026 The SKAL Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skal-io/skal/address"
	"github.com/skal-io/skal/daemon"
	"github.com/skal-io/skal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		domain   string
		localURL string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "skald",
		Short: "skald routes messages between the processes of a domain",
		Long: `skald is the router daemon: every process of a domain connects to it,
announces its actors and relies on it to reach actors living in other
processes, to fan multicast groups out and to keep the domain alarm
registry.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.DefaultLogger
			if verbose {
				logger = log.DebugLogger
			}

			d := daemon.New(
				daemon.WithDomain(domain),
				daemon.WithLocalURL(localURL),
				daemon.WithLogger(logger),
			)
			ctx := cmd.Context()
			if err := d.Start(ctx); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			select {
			case sig := <-sigCh:
				logger.Infof("received %s, shutting down", sig)
			case <-ctx.Done():
			}
			return d.Stop(context.Background())
		},
	}

	cmd.Flags().StringVarP(&domain, "domain", "d", daemon.DefaultDomain,
		"domain this daemon routes for")
	cmd.Flags().StringVarP(&localURL, "local-url", "u", address.DefaultDaemonURL,
		"URL to listen on for local processes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

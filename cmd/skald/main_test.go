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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skal-io/skal/address"
	"github.com/skal-io/skal/daemon"
)

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()

	domain, err := cmd.Flags().GetString("domain")
	require.NoError(t, err)
	assert.Equal(t, daemon.DefaultDomain, domain)

	localURL, err := cmd.Flags().GetString("local-url")
	require.NoError(t, err)
	assert.Equal(t, address.DefaultDaemonURL, localURL)

	verbose, err := cmd.Flags().GetBool("verbose")
	require.NoError(t, err)
	assert.False(t, verbose)

	assert.Equal(t, "skald", cmd.Use)
}

func TestRootCmdRejectsBadURL(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--local-url", "nonsense", "--domain", "test"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}

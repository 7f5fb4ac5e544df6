/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/


package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckBindAddr(t *testing.T) {

	testCases := []struct {
		addrs    []string
		expected string
	}{
		{
			addrs:    []string{"localhost:8080", "127.0.0.1:8800", "127.0.0.1:0", "[::1]:6060", ""},
			expected: "",
		},
		{
			addrs:    []string{"http://localhost:8080", "ws://127.0.0.1:80"},
			expected: errUnexpectedScheme,
		},
		{
			addrs:    []string{"localhost", "127.0.0.1", "127.0.0.1:80:80", "localhost:http", "localhost:70000"},
			expected: errMalformedAddr,
		},
		{
			addrs:    []string{":8080"},
			expected: errMissingAddrHost,
		},
		{
			addrs:    []string{"localhost:"},
			expected: errMissingAddrPort,
		},
	}

	for _, c := range testCases {
		for _, a := range c.addrs {
			err := checkBindAddr(a)
			if c.expected == "" {
				require.NoError(t, err, "address %q", a)
				continue
			}
			require.Error(t, err, "address %q", a)
			require.Contains(t, err.Error(), c.expected, "address %q", a)
		}
	}
}

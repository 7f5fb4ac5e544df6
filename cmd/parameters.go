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
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	errMalformedAddr    = "malformed address"
	errMissingAddrHost  = "missing address host"
	errMissingAddrPort  = "missing address port"
	errUnexpectedScheme = "unexpected URL scheme"
)

// checkBindAddr checks that given strings are valid addresses for binding
// services: host + port. No scheme is allowed and empty strings are skipped.
func checkBindAddr(addrs ...string) error {
	for _, addr := range addrs {
		if addr == "" {
			continue
		}

		if strings.Contains(addr, "://") {
			return errors.Errorf("%s in %s", errUnexpectedScheme, addr)
		}

		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return errors.Errorf("%s in %s", errMalformedAddr, addr)
		}

		if host == "" {
			return errors.Errorf("%s in %s", errMissingAddrHost, addr)
		}

		if port == "" {
			return errors.Errorf("%s in %s", errMissingAddrPort, addr)
		}

		if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
			return errors.Errorf("%s in %s", errMalformedAddr, addr)
		}
	}
	return nil
}

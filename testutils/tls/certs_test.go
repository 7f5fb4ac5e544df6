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


package tls

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateSelfSigned(t *testing.T) {
	for _, host := range []string{"127.0.0.1", "localhost"} {
		certPEM, keyPEM, err := CreateSelfSigned(host, time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = tls.X509KeyPair(certPEM, keyPEM)
		require.NoError(t, err)

		block, _ := pem.Decode(certPEM)
		require.NotNil(t, block)
		cert, err := x509.ParseCertificate(block.Bytes)
		require.NoError(t, err)
		require.NoError(t, cert.VerifyHostname(host))
	}
}

func TestCreateSelfSignedFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "hashlife-tls")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	certPath, keyPath, err := CreateSelfSignedFiles(dir, "127.0.0.1")
	require.NoError(t, err)
	_, err = tls.LoadX509KeyPair(certPath, keyPath)
	require.NoError(t, err)
}

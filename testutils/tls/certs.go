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


// Package tls creates throwaway certificates for tests that need a TLS
// listener.
package tls

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io/ioutil"
	"math/big"
	"net"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Small keys keep the tests fast. Never use them outside tests.
const testKeyBits = 2048

func CreateKeyPair() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, testKeyBits)
}

// CreateSelfSigned returns PEM encoded certificate and private key valid
// for host, which may be a DNS name or an IP address.
func CreateSelfSigned(host string, expire time.Time) ([]byte, []byte, error) {
	priv, err := CreateKeyPair()
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to generate key")
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1658),
		Subject:               pkix.Name{Organization: []string{"hashlife tests"}},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              expire,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	ip := net.ParseIP(host)
	// Check if host parameter is DNSName or IPAddr
	if ip == nil {
		template.DNSNames = append(template.DNSNames, host)
	} else {
		template.IPAddresses = append(template.IPAddresses, ip)
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to create certificate")
	}

	certPEM, err := encodePEM("CERTIFICATE", der)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to encode certificate as PEM")
	}
	keyPEM, err := encodePEM("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(priv))
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to encode key as PEM")
	}
	return certPEM, keyPEM, nil
}

// CreateSelfSignedFiles writes a certificate valid for one hour and its
// key into directory, returning both paths.
func CreateSelfSignedFiles(directory, host string) (string, string, error) {
	certPEM, keyPEM, err := CreateSelfSigned(host, time.Now().Add(time.Hour))
	if err != nil {
		return "", "", err
	}
	certPath := filepath.Join(directory, "server.crt")
	if err := ioutil.WriteFile(certPath, certPEM, 0600); err != nil {
		return "", "", err
	}
	keyPath := filepath.Join(directory, "server.key")
	if err := ioutil.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return "", "", err
	}
	return certPath, keyPath, nil
}

func encodePEM(kind string, der []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := pem.Encode(buf, &pem.Block{Type: kind, Bytes: der}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

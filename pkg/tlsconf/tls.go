// Copyright © 2025 The concordium-tools Authors
//
// SPDX-License-Identifier: Apache-2.0
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

package tlsconf

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type TLSType string

const (
	ServerType TLSType = "server"
	ClientType TLSType = "client"
)

// BuildTLSConfig returns nil when TLS is not enabled
func BuildTLSConfig(ctx context.Context, config *ccdconf.TLSConfig, tlsType TLSType) (*tls.Config, error) {
	if !config.Enabled {
		return nil, nil
	}

	rootCAs, err := loadRootCAs(ctx, config)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgTLSConfigFailed)
	}
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    rootCAs,
	}

	cert, err := loadKeyPair(config)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgTLSInvalidKeyPairFiles)
	}
	if cert != nil {
		// supply our single certificate in all cases, rather than have it matched against the hello
		tlsConfig.GetCertificate = func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			return cert, nil
		}
		tlsConfig.GetClientCertificate = func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
			log.L(ctx).Debugf("Supplying client certificate")
			return cert, nil
		}
	}

	switch tlsType {
	case ServerType:
		tlsConfig.ClientAuth = tls.NoClientCert
		if config.ClientAuth {
			tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
			tlsConfig.ClientCAs = rootCAs
			tlsConfig.VerifyPeerCertificate = func(_ [][]byte, verifiedChains [][]*x509.Certificate) error {
				if len(verifiedChains) > 0 && len(verifiedChains[0]) > 0 {
					c := verifiedChains[0][0]
					log.L(ctx).Debugf("Client certificate Subject=%s Issuer=%s Expiry=%s", c.Subject, c.Issuer, c.NotAfter)
				}
				return nil
			}
		}
	case ClientType:
		tlsConfig.InsecureSkipVerify = config.InsecureSkipHostVerify
	}

	return tlsConfig, nil
}

func loadRootCAs(ctx context.Context, config *ccdconf.TLSConfig) (*x509.CertPool, error) {
	var pemBytes []byte
	switch {
	case config.CAFile != "":
		b, err := os.ReadFile(config.CAFile)
		if err != nil {
			return nil, err
		}
		pemBytes = b
	case config.CA != "":
		pemBytes = []byte(config.CA)
	default:
		return x509.SystemCertPool()
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, i18n.NewError(ctx, msgs.MsgTLSInvalidCAFile)
	}
	return pool, nil
}

// loadKeyPair prefers files over inline PEM, and returns nil when neither is complete
func loadKeyPair(config *ccdconf.TLSConfig) (*tls.Certificate, error) {
	var cert tls.Certificate
	var err error
	switch {
	case config.CertFile != "" && config.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
	case config.Cert != "" && config.Key != "":
		cert, err = tls.X509KeyPair([]byte(config.Cert), []byte(config.Key))
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

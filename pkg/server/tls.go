package server

import (
	"crypto/tls"
	"errors"
	"fmt"
)

// TLSConfig names the certificate pair served over HTTPS.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// Build loads the key pair and returns a TLS 1.2+ server config that
// offers h2 before http/1.1.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c.CertFile == "" || c.KeyFile == "" {
		return nil, errors.New("tls: both cert and key files are required")
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tls: load key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"h2", "http/1.1"},
	}, nil
}

// Package security inspects the TLS certificate of each press and broker
// endpoint. The resulting CertStatus rides along on every LineSnapshot so
// the server can warn before a controller certificate expires.
package security

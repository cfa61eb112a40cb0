// Package scraper reads tablet press telemetry. Each scraper returns a
// Reading holding one set of process signals (weight, thickness, hardness,
// speeds, vacuum, compression forces) and one condition-monitoring sample
// (vibration, motor load, temperature).
//
// Implemented scrapers: press (Prometheus text exposition over HTTP,
// press.go) and mqtt (JSON telemetry on a broker topic, mqtt.go).
// Factory: New(config.Source) returns the correct Scraper.
//
// HTTP authentication (mTLS, API key, bearer token, basic) is handled by the
// shared authRoundTripper in base.go.
package scraper

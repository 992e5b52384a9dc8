// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package config

import (
	"fmt"
	"net/url"
)

// validateHTTPURL checks scheme and host. Paths are allowed because the
// telemetry endpoints are full report URLs.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}

// validateBrokerURL checks a NATS or AMQP URL against the allowed schemes.
func validateBrokerURL(rawURL, fieldName string, schemes ...string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	for _, s := range schemes {
		if parsedURL.Scheme == s {
			if parsedURL.Host == "" {
				return fmt.Errorf("%s host is required", fieldName)
			}
			return nil
		}
	}
	return fmt.Errorf("%s scheme must be one of %v, got: %s", fieldName, schemes, parsedURL.Scheme)
}

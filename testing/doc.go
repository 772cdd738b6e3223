// Package testing provides testing utilities for the kybclient packages.
//
// # Mocks
//
// The mocks subpackage provides testify-based mock implementations of the
// collaborator interfaces the API client is composed from:
//   - Token providers (auth.TokenProvider)
//   - Exception classifiers (reporting.Classifier)
//   - Error sinks (reporting.Sink)
//
// # Fixtures
//
// The fixtures subpackage provides an httptest-backed API server that plays
// back a scripted sequence of responses and records every attempt it
// receives, which is what retry and header tests assert on.
//
// # Usage
//
//	import (
//		"github.com/kybkit/kybclient/testing/mocks"
//		"github.com/kybkit/kybclient/testing/fixtures"
//	)
package testing

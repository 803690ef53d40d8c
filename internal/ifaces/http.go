package ifaces

import "net/http"

// HTTPClient is an interface which mocks the subset of the http.Client that we
// use in the controller.
//
//go:generate mockery --inpackage --name HTTPClient --filename mock_http_client.go
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

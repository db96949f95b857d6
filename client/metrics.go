package client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "flickr_client_requests",
	Help: "Flickr API requests, by kind and outcome",
}, []string{"kind", "status"})

var apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "flickr_client_request_duration",
	Help:    "Time for a Flickr API request round trip",
	Buckets: prometheus.ExponentialBucketsRange(0.001, 60, 20),
}, []string{"kind", "status"})

// Metrics label for the outcome of a call.
func statusLabel(err error) string {
	var (
		httpErr   *HTTPError
		apiErr    *APIError
		authErr   *AuthError
		decodeErr *DecodeError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.As(err, &authErr):
		return "auth_error"
	case errors.As(err, &decodeErr):
		return "decode_error"
	}
	return "transport_error"
}

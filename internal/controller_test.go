package internal_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/franela/goblin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/spacelift-io/replicascalr/internal"
	"github.com/spacelift-io/replicascalr/internal/ifaces"
)

func TestController(t *testing.T) {
	g := goblin.Goblin(t)
	RegisterFailHandler(func(m string, _ ...int) { g.Fail(m) })

	g.Describe("Controller", func() {
		const statusURL = "http://workload.local/app/status"
		const replicasURL = "http://workload.local/app/replicas"

		var ctx context.Context
		var err error

		var mockHTTP *ifaces.MockHTTPClient

		var sut *internal.Controller

		g.BeforeEach(func() {
			ctx = context.Background()
			err = nil

			mockHTTP = &ifaces.MockHTTPClient{}

			sut = &internal.Controller{
				HTTP:        mockHTTP,
				StatusURL:   statusURL,
				ReplicasURL: replicasURL,
				Tracer:      noop.NewTracerProvider().Tracer(""),
			}
		})

		g.Describe("GetObservation", func() {
			var observation internal.Observation

			var request *http.Request
			var apiCall *mock.Call

			g.BeforeEach(func() {
				request = nil

				apiCall = mockHTTP.On(
					"Do",
					mock.MatchedBy(func(in any) bool {
						request = in.(*http.Request)
						return true
					}),
				)
			})

			g.JustBeforeEach(func() {
				observation, err = sut.GetObservation(ctx)
			})

			g.Describe("when the request fails", func() {
				g.BeforeEach(func() { apiCall.Return(nil, errors.New("bacon")) })

				g.It("sends the correct request", func() {
					Expect(request).NotTo(BeNil())
					Expect(request.Method).To(Equal(http.MethodGet))
					Expect(request.URL.String()).To(Equal(statusURL))
					Expect(request.Header.Get("Accept")).To(Equal("application/json"))
				})

				g.It("should return an observation error", func() {
					var observationErr *internal.ObservationError
					Expect(errors.As(err, &observationErr)).To(BeTrue())
					Expect(err).To(MatchError("could not observe workload: could not get status: bacon"))
				})
			})

			g.Describe("when the status endpoint returns an error status", func() {
				g.BeforeEach(func() { apiCall.Return(response(http.StatusBadGateway, "upstream is down"), nil) })

				g.It("should return an observation error", func() {
					var observationErr *internal.ObservationError
					Expect(errors.As(err, &observationErr)).To(BeTrue())
					Expect(err).To(MatchError("could not observe workload: unexpected status 502 Bad Gateway: upstream is down"))
				})
			})

			g.Describe("when the payload is missing fields", func() {
				g.BeforeEach(func() { apiCall.Return(response(http.StatusOK, `{"cpu": {}}`), nil) })

				g.It("should return an observation error", func() {
					var observationErr *internal.ObservationError
					Expect(errors.As(err, &observationErr)).To(BeTrue())
					Expect(err.Error()).To(ContainSubstring("cpu.highPriority not present"))
					Expect(err.Error()).To(ContainSubstring("replicas not present"))
				})
			})

			g.Describe("when the request succeeds", func() {
				g.BeforeEach(func() {
					apiCall.Return(response(http.StatusOK, `{"cpu": {"highPriority": 0.93}, "replicas": 4}`), nil)
				})

				g.It("should return the observation", func() {
					Expect(err).NotTo(HaveOccurred())
					Expect(observation).To(Equal(internal.Observation{CPUUtilization: 0.93, Replicas: 4}))
				})
			})
		})

		g.Describe("SetReplicas", func() {
			var replicas int

			var request *http.Request
			var requestBody string
			var apiCall *mock.Call

			g.BeforeEach(func() {
				replicas = 4
				request = nil
				requestBody = ""

				apiCall = mockHTTP.On(
					"Do",
					mock.MatchedBy(func(in any) bool {
						request = in.(*http.Request)
						if body, _ := io.ReadAll(request.Body); len(body) > 0 {
							requestBody = string(body)
						}
						return true
					}),
				)
			})

			g.JustBeforeEach(func() {
				err = sut.SetReplicas(ctx, replicas)
			})

			g.Describe("when the replica count is invalid", func() {
				g.BeforeEach(func() { replicas = 0 })

				g.It("should not send anything", func() {
					Expect(request).To(BeNil())
					mockHTTP.AssertNotCalled(t, "Do", mock.Anything)
				})

				g.It("should return an actuation error", func() {
					Expect(err).To(MatchError("could not set replicas to 0: replica count must be at least 1"))
				})
			})

			g.Describe("when the request fails", func() {
				g.BeforeEach(func() { apiCall.Return(nil, errors.New("bacon")) })

				g.It("sends the correct request", func() {
					Expect(request).NotTo(BeNil())
					Expect(request.Method).To(Equal(http.MethodPut))
					Expect(request.URL.String()).To(Equal(replicasURL))
					Expect(request.Header.Get("Content-Type")).To(Equal("application/json"))
					Expect(requestBody).To(MatchJSON(`{"replicas": 4}`))
				})

				g.It("should return an actuation error", func() {
					var actuationErr *internal.ActuationError
					Expect(errors.As(err, &actuationErr)).To(BeTrue())
					Expect(actuationErr.Replicas).To(Equal(4))
					Expect(err).To(MatchError("could not set replicas to 4: could not update replicas: bacon"))
				})
			})

			g.Describe("when the endpoint rejects the request", func() {
				g.BeforeEach(func() { apiCall.Return(response(http.StatusUnprocessableEntity, ""), nil) })

				g.It("should return an actuation error", func() {
					Expect(err).To(MatchError("could not set replicas to 4: unexpected status 422 Unprocessable Entity"))
				})
			})

			g.Describe("when the request succeeds", func() {
				g.BeforeEach(func() { apiCall.Return(response(http.StatusNoContent, ""), nil) })

				g.It("should not return an error", func() {
					Expect(err).NotTo(HaveOccurred())
				})
			})
		})
	})
}

func TestControllerRoundTrip(t *testing.T) {
	var replicas int

	mux := http.NewServeMux()
	mux.HandleFunc("GET /app/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"cpu":      map[string]float64{"highPriority": 1.6},
			"replicas": 2,
		})
	})
	mux.HandleFunc("PUT /app/replicas", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Replicas int `json:"replicas"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		replicas = body.Replicas
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	sut := internal.NewController(&internal.RuntimeConfig{
		StatusURL:   server.URL + "/app/status",
		ReplicasURL: server.URL + "/app/replicas",
	})

	observation, err := sut.GetObservation(t.Context())
	require.NoError(t, err)
	require.Equal(t, internal.Observation{CPUUtilization: 1.6, Replicas: 2}, observation)

	require.NoError(t, sut.SetReplicas(t.Context(), 4))
	require.Equal(t, 4, replicas)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

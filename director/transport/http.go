// Package transport connects the director to its telemetry sources and to
// the operator: the GSI webhook, the control endpoints, the websocket relay
// that runs on the POV PC, and the websocket subscriber that consumes it.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/replay-director/replay-director/director"
	"github.com/replay-director/replay-director/director/gsi"
)

const tracerName = "github.com/replay-director/replay-director/director/transport"

// maxPayloadBytes bounds a single GSI body; full spectator payloads are ~20KB.
const maxPayloadBytes = 1 << 20

// Ingester accepts parsed snapshots.
type Ingester interface {
	Ingest(snap director.Snapshot)
}

// Controller is the operator control surface of the scheduler.
type Controller interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Reset(ctx context.Context) error
	Status() director.Status
}

// Service is what the observer HTTP server exposes.
type Service interface {
	Ingester
	Controller
}

// NewMux routes GSI posts (on / and /gsi), control commands and status.
func NewMux(svc Service) *http.ServeMux {
	mux := http.NewServeMux()
	ingest := IngestHandler(svc)
	mux.Handle("POST /{$}", ingest)
	mux.Handle("POST /gsi", ingest)
	mux.Handle("POST /control/pause", controlHandler(svc.Pause))
	mux.Handle("POST /control/resume", controlHandler(svc.Resume))
	mux.Handle("POST /control/reset", controlHandler(svc.Reset))
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			logrus.Warnf("encoding status: %v", err)
		}
	})
	return mux
}

// IngestHandler parses a GSI body and hands the snapshot to ing.
// Undecodable bodies are answered with 400 and never reach the scheduler.
func IngestHandler(ing Ingester) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, span := otel.Tracer(tracerName).Start(r.Context(), "gsi.ingest")
		defer span.End()

		body, err := readBody(w, r)
		if err != nil {
			http.Error(w, err.Error(), bodyErrorStatus(err))
			return
		}
		snap, err := gsi.Parse(body)
		if err != nil {
			logrus.Debugf("rejecting GSI payload from %s: %v", r.RemoteAddr, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		span.SetAttributes(
			attribute.Int("gsi.participants", len(snap.Participants)),
			attribute.String("gsi.phase", string(snap.Phase)),
		)
		ing.Ingest(snap)
		_, _ = io.WriteString(w, "ok")
	})
}

func controlHandler(apply func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := apply(r.Context()); err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, context.Canceled) {
				status = http.StatusRequestTimeout
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// SnapshotHandler adapts ing to raw GSI messages, logging and dropping
// payloads that do not parse.
func SnapshotHandler(ing Ingester) func([]byte) {
	return func(msg []byte) {
		snap, err := gsi.Parse(msg)
		if err != nil {
			logrus.Warnf("dropping relayed payload: %v", err)
			return
		}
		ing.Ingest(snap)
	}
}

func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

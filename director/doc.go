// Package director decides which live participant a delayed broadcast camera
// should follow.
//
// # Reading Guide
//
// Start with these files to understand the scheduling kernel:
//   - participant.go: per-participant state and score deltas
//   - round.go: round phase transitions and the resets they trigger
//   - queue.go: pending switches held until their fire time
//   - scheduler.go: ingestion, the tick loop and switch selection
//
// # Architecture
//
// The director package owns the decision state and defines the interfaces
// its collaborators implement; adapters live in sub-packages:
//   - director/gsi/: CS2 Game State Integration payload parsing
//   - director/actuate/: camera switch actuators (keystroke, NetCon console, log)
//   - director/transport/: HTTP webhook ingestion, websocket relay and subscriber
//   - director/trace/: decision trace recording
//   - director/journal/: SQLite persistence of the decision trace
//   - director/telemetry/: OpenTelemetry tracing setup
//
// # Timing
//
// Every admitted switch fires at ingestion time plus the configured broadcast
// delay, so the camera moves when the delayed feed shows the event. The tick
// cadence bounds selection latency and must be much smaller than the delay.
package director

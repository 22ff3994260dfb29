// Package gsi turns CS2 Game State Integration payloads into director snapshots.
//
// Parsing is tolerant: a field with the wrong type or a missing field is
// treated as unknown rather than failing the whole payload. Only a body that
// is not a JSON object is rejected.
package gsi

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/replay-director/replay-director/director"
)

// ErrInvalidPayload is returned for bodies that are not a JSON object.
var ErrInvalidPayload = errors.New("gsi: payload is not a JSON object")

// Parse extracts participants and the round phase from a GSI payload.
// Spectator payloads carry "allplayers"; player payloads carry a single
// "player" section identified by its steamid.
func Parse(payload []byte) (director.Snapshot, error) {
	if !gjson.ValidBytes(payload) {
		return director.Snapshot{}, ErrInvalidPayload
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return director.Snapshot{}, ErrInvalidPayload
	}

	var snap director.Snapshot
	if all := root.Get("allplayers"); all.IsObject() {
		all.ForEach(func(key, value gjson.Result) bool {
			if u, ok := parsePlayer(key.String(), value); ok {
				snap.Participants = append(snap.Participants, u)
			}
			return true
		})
	} else if p := root.Get("player"); p.IsObject() {
		if u, ok := parsePlayer(p.Get("steamid").String(), p); ok {
			snap.Participants = append(snap.Participants, u)
		}
	}
	snap.Phase = parsePhase(root)
	return snap, nil
}

func parsePlayer(steamID string, v gjson.Result) (director.ParticipantUpdate, bool) {
	if steamID == "" || steamID == "?" || !v.IsObject() {
		return director.ParticipantUpdate{}, false
	}
	u := director.ParticipantUpdate{ID: steamID}
	if name := v.Get("name"); name.Type == gjson.String {
		s := name.String()
		u.Name = &s
	}
	if slot, ok := nonNegativeInt(v.Get("observer_slot")); ok {
		u.Slot = &slot
	}
	if health := v.Get("state.health"); health.Type == gjson.Number {
		alive := health.Float() > 0
		u.Alive = &alive
	}
	if kills, ok := nonNegativeInt(v.Get("match_stats.kills")); ok {
		u.MatchScore = &kills
	}
	return u, true
}

func nonNegativeInt(r gjson.Result) (int, bool) {
	if r.Type != gjson.Number {
		return 0, false
	}
	n := r.Int()
	if n < 0 || float64(n) != r.Float() {
		return 0, false
	}
	return int(n), true
}

// parsePhase maps round.phase, falling back to map.phase between rounds.
func parsePhase(root gjson.Result) director.Phase {
	switch root.Get("round.phase").String() {
	case "freezetime":
		return director.PhaseWarmup
	case "live":
		return director.PhaseLive
	case "over":
		return director.PhaseOver
	}
	switch root.Get("map.phase").String() {
	case "warmup":
		return director.PhaseWarmup
	case "gameover":
		return director.PhaseOver
	}
	return director.PhaseUnknown
}

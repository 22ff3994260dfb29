package gsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replay-director/replay-director/director"
)

const spectatorPayload = `{
  "map": {"phase": "live", "round": 4},
  "round": {"phase": "live"},
  "allplayers": {
    "76561198000000001": {
      "name": "alpha", "observer_slot": 1, "team": "CT",
      "state": {"health": 100, "round_kills": 2},
      "match_stats": {"kills": 7, "deaths": 2}
    },
    "76561198000000002": {
      "name": "bravo", "observer_slot": 6,
      "state": {"health": 0},
      "match_stats": {"kills": 3}
    }
  }
}`

func TestParse_SpectatorPayload(t *testing.T) {
	snap, err := Parse([]byte(spectatorPayload))
	require.NoError(t, err)

	assert.Equal(t, director.PhaseLive, snap.Phase)
	require.Len(t, snap.Participants, 2)

	alpha := snap.Participants[0]
	assert.Equal(t, "76561198000000001", alpha.ID)
	assert.Equal(t, "alpha", *alpha.Name)
	assert.Equal(t, 1, *alpha.Slot)
	assert.True(t, *alpha.Alive)
	assert.Equal(t, 7, *alpha.MatchScore)

	bravo := snap.Participants[1]
	assert.False(t, *bravo.Alive)
	assert.Equal(t, 6, *bravo.Slot)
}

func TestParse_SinglePlayerPayload(t *testing.T) {
	payload := `{"player": {"steamid": "76561198000000009", "name": "solo", "observer_slot": 0,
		"state": {"health": 35}, "match_stats": {"kills": 1}}}`

	snap, err := Parse([]byte(payload))
	require.NoError(t, err)

	require.Len(t, snap.Participants, 1)
	assert.Equal(t, "76561198000000009", snap.Participants[0].ID)
	assert.Equal(t, 0, *snap.Participants[0].Slot)
	assert.Equal(t, director.PhaseUnknown, snap.Phase)
}

func TestParse_PartialFields_LeftUnknown(t *testing.T) {
	// GIVEN players with missing or mistyped fields
	payload := `{"allplayers": {
		"1": {"name": 42, "observer_slot": "three", "match_stats": {"kills": -1}},
		"2": {"state": {}, "match_stats": {"kills": 2.5}},
		"?": {"name": "unknown"},
		"3": "not-an-object"
	}}`

	// WHEN parsed
	snap, err := Parse([]byte(payload))

	// THEN bad players are skipped and bad fields are nil
	require.NoError(t, err)
	require.Len(t, snap.Participants, 2)
	for _, u := range snap.Participants {
		assert.Nil(t, u.Name, u.ID)
		assert.Nil(t, u.Slot, u.ID)
		assert.Nil(t, u.Alive, u.ID)
		assert.Nil(t, u.MatchScore, u.ID)
	}
}

func TestParse_Phases(t *testing.T) {
	tests := []struct {
		payload string
		want    director.Phase
	}{
		{`{"round": {"phase": "freezetime"}}`, director.PhaseWarmup},
		{`{"round": {"phase": "live"}}`, director.PhaseLive},
		{`{"round": {"phase": "over"}, "map": {"phase": "live"}}`, director.PhaseOver},
		{`{"map": {"phase": "warmup"}}`, director.PhaseWarmup},
		{`{"map": {"phase": "gameover"}}`, director.PhaseOver},
		{`{"round": {"phase": "paused"}}`, director.PhaseUnknown},
		{`{}`, director.PhaseUnknown},
	}
	for _, tt := range tests {
		snap, err := Parse([]byte(tt.payload))
		require.NoError(t, err, tt.payload)
		assert.Equal(t, tt.want, snap.Phase, tt.payload)
	}
}

func TestParse_InvalidPayload(t *testing.T) {
	for _, payload := range []string{"", "not json", "[1,2]", `"text"`, `{"allplayers": `} {
		_, err := Parse([]byte(payload))
		assert.ErrorIs(t, err, ErrInvalidPayload, payload)
	}
}

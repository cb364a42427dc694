package tracking

import (
	"math"
	"sort"

	"github.com/aryorithm/aegis-sky/internal/types"
)

// Tuning constants from spec §4.E.
const (
	MatchThreshold = 5.0 // meters
	MaxMissed      = 60  // frames (~1s at 60Hz)
	ConfirmHits    = 3
	BirthThreshold = 10.0 // minimum SNR (dB) for an unassigned measurement to spawn a track
)

// Manager is the gated nearest-neighbour multi-target tracker described in
// spec §4.E: predict, associate, update, coast, birth, prune, once per
// ProcessScan call. It is not safe for concurrent use; the guidance loop
// owns it exclusively.
type Manager struct {
	tracks []types.Track
	nextID uint32
}

// NewManager returns an empty tracker with the first assigned id set to 1
// (id 0 means "unknown" throughout the rest of the system).
func NewManager() *Manager {
	return &Manager{nextID: 1}
}

// ProcessScan runs one predict/associate/update/coast/birth/prune cycle and
// returns the resulting track list in GetTracks order.
func (m *Manager) ProcessScan(timestamp float64, measurements []types.Measurement) []types.Track {
	for i := range m.tracks {
		m.tracks[i].Filter = Predict(m.tracks[i].Filter, timestamp)
	}

	trackMatched := make([]bool, len(m.tracks))
	measMatched := make([]bool, len(measurements))

	for _, pair := range sortedCandidatePairs(m.tracks, measurements) {
		if pair.dist > MatchThreshold {
			break
		}
		if trackMatched[pair.trackIdx] || measMatched[pair.measIdx] {
			continue
		}
		trackMatched[pair.trackIdx] = true
		measMatched[pair.measIdx] = true

		meas := measurements[pair.measIdx]
		tr := &m.tracks[pair.trackIdx]
		tr.Filter = Update(tr.Filter, meas.X, meas.Y, meas.Z)
		tr.MissedFrames = 0
		tr.Hits++
		tr.Confidence = meas.Confidence
		if tr.Hits >= ConfirmHits {
			tr.Confirmed = true
		}
	}

	for i := range m.tracks {
		if !trackMatched[i] {
			m.tracks[i].MissedFrames++
		}
	}

	for i, meas := range measurements {
		if measMatched[i] || meas.SNRdB < BirthThreshold {
			continue
		}
		m.tracks = append(m.tracks, types.Track{
			ID:         m.nextID,
			Filter:     NewKalmanState(meas.X, meas.Y, meas.Z, timestamp),
			Hits:       1,
			Confidence: meas.Confidence,
		})
		m.nextID++
	}

	pruned := m.tracks[:0]
	for _, t := range m.tracks {
		if t.MissedFrames <= MaxMissed {
			pruned = append(pruned, t)
		}
	}
	m.tracks = pruned

	return m.GetTracks()
}

// GetTracks returns the current track list ordered by descending
// confidence then ascending id (spec §4.E). It does not mutate tracker
// state.
func (m *Manager) GetTracks() []types.Track {
	out := make([]types.Track, len(m.tracks))
	copy(out, m.tracks)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PrimaryTrack returns the first confirmed track in GetTracks order, if
// any (spec §4.E: "the primary target selected by the guidance loop").
func (m *Manager) PrimaryTrack() (types.Track, bool) {
	for _, t := range m.GetTracks() {
		if t.Confirmed {
			return t, true
		}
	}
	return types.Track{}, false
}

type candidatePair struct {
	trackIdx, measIdx int
	dist              float32
}

// sortedCandidatePairs builds every (track, measurement) distance and
// orders them ascending by distance, with a deterministic tie-break by
// track id then measurement index, so the greedy pass below never depends
// on map/slice iteration order (spec §8's greedy-assignment-stability law).
func sortedCandidatePairs(tracks []types.Track, measurements []types.Measurement) []candidatePair {
	pairs := make([]candidatePair, 0, len(tracks)*len(measurements))
	for ti, t := range tracks {
		px, py, pz := t.Position()
		for mi, meas := range measurements {
			dx := px - meas.X
			dy := py - meas.Y
			dz := pz - meas.Z
			dist := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
			pairs = append(pairs, candidatePair{trackIdx: ti, measIdx: mi, dist: dist})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].dist != pairs[j].dist {
			return pairs[i].dist < pairs[j].dist
		}
		if pairs[i].trackIdx != pairs[j].trackIdx {
			return pairs[i].trackIdx < pairs[j].trackIdx
		}
		return pairs[i].measIdx < pairs[j].measIdx
	})
	return pairs
}

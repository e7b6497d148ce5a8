/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package media holds the simpler collaborator stores around embedded
// page media: playback state, subtitle cue lookup, and overlay marker
// placement. Actual media decoding/playback lives outside the engine.
package media

// PlaybackRates are the allowed playback speeds; SetRate snaps to the
// nearest one.
var PlaybackRates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// PlayState is the playback lifecycle state.
type PlayState uint8

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Player is the playback state store for the currently focused media
// overlay. Same single-threaded event model as the rest of the engine.
type Player struct {
	state  PlayState
	volume float64
	rate   float64
	muted  bool
}

// NewPlayer returns a stopped player at full volume and normal speed.
func NewPlayer() *Player {
	return &Player{volume: 1, rate: 1}
}

// State returns the playback state.
func (p *Player) State() PlayState { return p.state }

// Play starts (or resumes) playback.
func (p *Player) Play() { p.state = Playing }

// Pause pauses playback; pausing while stopped stays stopped.
func (p *Player) Pause() {
	if p.state == Playing {
		p.state = Paused
	}
}

// Stop halts playback.
func (p *Player) Stop() { p.state = Stopped }

// Toggle flips between playing and paused/stopped.
func (p *Player) Toggle() {
	if p.state == Playing {
		p.state = Paused
	} else {
		p.state = Playing
	}
}

// Volume returns the current volume.
func (p *Player) Volume() float64 { return p.volume }

// SetVolume clamps v into [0, 1].
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
}

// Rate returns the current playback rate.
func (p *Player) Rate() float64 { return p.rate }

// SetRate snaps r to the nearest allowed playback rate.
func (p *Player) SetRate(r float64) {
	best := PlaybackRates[0]
	for _, allowed := range PlaybackRates {
		if abs(r-allowed) < abs(r-best) {
			best = allowed
		}
	}
	p.rate = best
}

// Muted reports the mute flag.
func (p *Player) Muted() bool { return p.muted }

// SetMuted sets the mute flag; volume is preserved for unmute.
func (p *Player) SetMuted(m bool) { p.muted = m }

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

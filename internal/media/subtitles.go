/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package media

import "time"

// Cue is one timed subtitle line. Start/End are offsets from the beginning
// of the media; the interval is inclusive on both ends. An external
// collaborator converts source subtitle formats into this shape.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Track is an ordered cue list for one media item.
type Track struct {
	Cues []Cue
}

// CueAt returns the cue whose [Start, End] interval contains t. Returns
// false when no cue is showing at t. With overlapping cues the first match
// wins.
func (tr *Track) CueAt(t time.Duration) (Cue, bool) {
	if tr == nil {
		return Cue{}, false
	}
	for _, c := range tr.Cues {
		if t >= c.Start && t <= c.End {
			return c, true
		}
	}
	return Cue{}, false
}

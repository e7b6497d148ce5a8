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

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a recoverable problem in a subtitle file.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }

// ParseSRT parses SubRip subtitle text into a Track.
// Supported syntax (minimal):
// - Blocks separated by blank lines: index line, timecode line, text lines.
// - Timecodes: HH:MM:SS,mmm --> HH:MM:SS,mmm (a '.' decimal separator is
//   accepted too, which covers simple WebVTT cue lines).
// - Index lines are optional; a block may start directly with a timecode.
// Malformed blocks are skipped and reported; parsing continues so one bad
// cue never loses the rest of the track.
func ParseSRT(input string) (Track, []ParseError) {
	var tr Track
	var errs []ParseError

	reTime := regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})`)

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	var cur *Cue
	var pending []string
	inBlock := false

	flush := func() {
		if cur != nil {
			cur.Text = strings.Join(pending, "\n")
			tr.Cues = append(tr.Cues, *cur)
		}
		cur = nil
		pending = nil
		inBlock = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trim := strings.TrimSpace(line)

		if trim == "" {
			flush()
			continue
		}

		if m := reTime.FindStringSubmatch(trim); m != nil {
			// A timecode inside a running block starts a new cue.
			flush()
			start := timecode(m[1], m[2], m[3], m[4])
			end := timecode(m[5], m[6], m[7], m[8])
			if end < start {
				errs = append(errs, ParseError{Line: lineNo, Message: "cue ends before it starts"})
				inBlock = true // swallow the block's text lines
				continue
			}
			cur = &Cue{Start: start, End: end}
			inBlock = true
			continue
		}

		if !inBlock {
			// Expect a bare index; anything else is noise before the timecode.
			if _, err := strconv.Atoi(trim); err == nil {
				inBlock = true
				continue
			}
			errs = append(errs, ParseError{Line: lineNo, Message: "expected cue index or timecode"})
			continue
		}

		if cur == nil {
			// Index seen but no valid timecode yet: either this line is the
			// timecode (handled above) or the block is malformed.
			errs = append(errs, ParseError{Line: lineNo, Message: "expected timecode"})
			continue
		}
		pending = append(pending, trim)
	}
	flush()

	if err := scanner.Err(); err != nil {
		errs = append(errs, ParseError{Line: lineNo, Message: err.Error()})
	}
	return tr, errs
}

func timecode(h, m, s, frac string) time.Duration {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	// Pad the fraction so "5" means 500ms in WebVTT-style input but "005"
	// stays 5ms.
	for len(frac) < 3 {
		frac += "0"
	}
	ms, _ := strconv.Atoi(frac)
	return time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute +
		time.Duration(ss)*time.Second + time.Duration(ms)*time.Millisecond
}

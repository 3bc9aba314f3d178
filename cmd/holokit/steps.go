// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/game"
	"github.com/holomush/holokit/internal/session"
)

// step is one input to a session: a game event or an XP gain. serve reads
// steps as JSON lines; simulate reads a YAML list of them.
type step struct {
	Event  string            `json:"event,omitempty" yaml:"event,omitempty"`
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	XP     int               `json:"xp,omitempty" yaml:"xp,omitempty"`
	Repeat int               `json:"repeat,omitempty" yaml:"repeat,omitempty"`
}

// label names the step in logs and metrics. Unknown event names collapse
// to "unknown" to bound label cardinality.
func (st step) label() string {
	switch {
	case st.Event == "":
		return "xp"
	case game.IsKnown(st.Event):
		return st.Event
	default:
		return "unknown"
	}
}

func (st step) apply(s *session.Session) error {
	var run func() error
	switch {
	case st.Event != "" && st.XP != 0:
		return errs.InvalidArgument("step", st.Event, "a step is either an event or an xp gain, not both")
	case st.Event != "":
		ev, err := game.Decode(st.Event, st.Fields)
		if err != nil {
			return err
		}
		run = func() error { return s.Publish(ev) }
	case st.XP != 0:
		run = func() error { return s.GainXP(st.XP) }
	default:
		return errs.InvalidArgument("step", "", "a step needs an event or an xp gain")
	}
	if st.Repeat < 0 {
		return errs.InvalidArgument("repeat", st.Repeat, "repeat must be non-negative")
	}

	for range max(1, st.Repeat) {
		if err := run(); err != nil {
			return err
		}
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"github.com/holomush/holokit/internal/achievement"
)

// RecordKind classifies a Record.
type RecordKind string

// Record kinds.
const (
	RecordTriggered RecordKind = "triggered"
	RecordAchieved  RecordKind = "achieved"
	RecordLevelUp   RecordKind = "level_up"
)

// Record is one progression notification observed during a session.
type Record struct {
	Kind        RecordKind `json:"kind" yaml:"kind"`
	Achievement string     `json:"achievement,omitempty" yaml:"achievement,omitempty"`
	Remaining   int        `json:"remaining,omitempty" yaml:"remaining,omitempty"`
	Level       int        `json:"level,omitempty" yaml:"level,omitempty"`
}

// Recorder keeps every notification in order and forwards achievement
// notifications to the next handler, if any.
type Recorder struct {
	next     achievement.Handler
	records  []Record
	achieved map[string]bool
}

// Compile-time interface check.
var _ achievement.Handler = (*Recorder)(nil)

// NewRecorder creates a recorder forwarding to next, which may be nil.
func NewRecorder(next achievement.Handler) *Recorder {
	return &Recorder{next: next, achieved: make(map[string]bool)}
}

// OnTriggered implements achievement.Handler.
func (r *Recorder) OnTriggered(msg achievement.AchievementTriggered) error {
	r.records = append(r.records, Record{
		Kind:        RecordTriggered,
		Achievement: msg.Achievement.ID(),
		Remaining:   msg.Remaining,
	})
	if r.next == nil {
		return nil
	}
	return r.next.OnTriggered(msg)
}

// OnAchieved implements achievement.Handler.
func (r *Recorder) OnAchieved(msg achievement.AchievementAchieved) error {
	r.records = append(r.records, Record{Kind: RecordAchieved, Achievement: msg.Achievement.ID()})
	r.achieved[msg.Achievement.ID()] = true
	if r.next == nil {
		return nil
	}
	return r.next.OnAchieved(msg)
}

// LevelUp records a level-up to level.
func (r *Recorder) LevelUp(level int) {
	r.records = append(r.records, Record{Kind: RecordLevelUp, Level: level})
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	return append([]Record(nil), r.records...)
}

// Achieved reports whether id was achieved during the session.
func (r *Recorder) Achieved(id string) bool {
	return r.achieved[id]
}

// Count returns how many records of kind exist.
func (r *Recorder) Count(kind RecordKind) int {
	n := 0
	for _, rec := range r.records {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}

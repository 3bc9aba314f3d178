// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

// AchievementStatus is one achievement's line in a Report.
// AchievedThisSession only covers completions seen since Start; saves keep
// the remaining count, not completion history.
type AchievementStatus struct {
	ID                  string `json:"id" yaml:"id"`
	Kind                string `json:"kind" yaml:"kind"`
	Remaining           int    `json:"remaining" yaml:"remaining"`
	AchievedThisSession bool   `json:"achieved_this_session" yaml:"achieved_this_session"`
}

// Report summarizes a session's progression.
type Report struct {
	Profile       string              `json:"profile" yaml:"profile"`
	XP            int                 `json:"xp" yaml:"xp"`
	Level         int                 `json:"level" yaml:"level"`
	MaxLevel      int                 `json:"max_level" yaml:"max_level"`
	XPToNextLevel int                 `json:"xp_to_next_level,omitempty" yaml:"xp_to_next_level,omitempty"`
	Progress      float64             `json:"progress" yaml:"progress"`
	Achievements  []AchievementStatus `json:"achievements" yaml:"achievements"`
	Records       []Record            `json:"records" yaml:"records"`
}

// Report describes the current state. Before Start only the achievements
// are filled in.
func (s *Session) Report() Report {
	r := Report{Profile: s.profile.String(), Records: s.recorder.Records()}
	if p := s.player; p != nil {
		r.XP = p.XP()
		r.Level = p.Level()
		r.MaxLevel = p.MaxLevel()
		r.Progress = p.Progress()
		if !p.IsMaxed() {
			r.XPToNextLevel = p.XPToNextLevel()
		}
	}
	for _, a := range s.manager.All() {
		r.Achievements = append(r.Achievements, AchievementStatus{
			ID:                  a.ID(),
			Kind:                string(a.Definition().Kind),
			Remaining:           a.Times(),
			AchievedThisSession: s.recorder.Achieved(a.ID()),
		})
	}
	return r
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import "time"

// View is the client-facing form of a profile. It never carries the password hash.
type View struct {
	Username           string    `json:"username"`
	Name               string    `json:"name"`
	BirthDate          time.Time `json:"birth_date"`
	FavoriteCategory   Category  `json:"favorite_category"`
	RelationshipStatus string    `json:"relationship_status"`
	WorkStatus         string    `json:"work_status"`
	NeedsOnboarding    bool      `json:"needs_onboarding"`
	Readings           int       `json:"reading_count"`
	Questions          int       `json:"question_count"`
}

// ToView strips the profile down to what a client may see.
func (p UserProfile) ToView() View {
	return View{
		Username:           p.Username,
		Name:               p.Name,
		BirthDate:          p.BirthDate,
		FavoriteCategory:   p.FavoriteCategory,
		RelationshipStatus: p.RelationshipStatus,
		WorkStatus:         p.WorkStatus,
		NeedsOnboarding:    p.NeedsOnboarding(),
		Readings:           len(p.TarotHistory),
		Questions:          len(p.QuestionHistory),
	}
}

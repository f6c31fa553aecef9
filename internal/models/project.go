// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups pages under review and the team working on them.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Members     []Member  `json:"members"`
	Pages       []Page    `json:"pages"` // ordered by creation
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is a user's membership in a project.
type Member struct {
	UserID  uuid.UUID `json:"user_id"`
	Role    Role      `json:"role"`
	AddedAt time.Time `json:"added_at"`
}

// FindPage returns the index of the page with the given ID, or -1.
func (p *Project) FindPage(id uuid.UUID) int {
	for i := range p.Pages {
		if p.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the project, pages included.
func (p *Project) Clone() *Project {
	c := *p
	c.Members = append([]Member(nil), p.Members...)
	c.Pages = make([]Page, len(p.Pages))
	for i := range p.Pages {
		c.Pages[i] = *p.Pages[i].Clone()
	}
	return &c
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures shared by the workflow, the
// scoring engine, the project store and the HTTP layer.
package models

import "github.com/google/uuid"

// Role represents a user's permission level within the review workflow.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleSEOAnalyst    Role = "seo_analyst"
	RoleContentWriter Role = "content_writer"
	RoleVerifier      Role = "verifier"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSEOAnalyst, RoleContentWriter, RoleVerifier:
		return true
	}
	return false
}

// Identity is the caller as asserted by the upstream auth gateway.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// IsAdmin returns true if the identity has the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// HasRole returns true if the identity holds any of the given roles.
// Admins implicitly hold every role.
func (i *Identity) HasRole(roles ...Role) bool {
	if i.IsAdmin() {
		return true
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

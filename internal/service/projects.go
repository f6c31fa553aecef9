// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
)

// AddProject creates a project owned by owner.
func (s *Service) AddProject(ctx context.Context, name, description string, owner uuid.UUID) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := &models.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     owner,
		Members:     []models.Member{},
		Pages:       []models.Page{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("add project: %w", err)
	}

	s.projects[p.ID] = p
	s.order = append(s.order, p.ID)
	return p.Clone(), nil
}

// UpdateProject changes a project's name and description.
func (s *Service) UpdateProject(ctx context.Context, id uuid.UUID, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(id)
	if err != nil {
		return nil, err
	}
	prevName, prevDesc, prevUpdated := p.Name, p.Description, p.UpdatedAt
	p.Name, p.Description, p.UpdatedAt = name, strings.TrimSpace(description), s.now()
	if err := s.repo.SaveProject(ctx, p); err != nil {
		p.Name, p.Description, p.UpdatedAt = prevName, prevDesc, prevUpdated
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p.Clone(), nil
}

// DeleteProject removes a project with all its pages. Running scoring
// passes for those pages are cancelled.
func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	for i := range p.Pages {
		s.cancelPassLocked(p.Pages[i].ID)
	}
	delete(s.projects, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetProject returns a snapshot of one project.
func (s *Service) GetProject(id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// ListProjects returns snapshots of all projects in creation order.
func (s *Service) ListProjects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Project, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.projects[id].Clone())
	}
	return out
}

// AddMember adds a user to a project or changes their role.
func (s *Service) AddMember(ctx context.Context, projectID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, err
	}

	m := models.Member{UserID: userID, Role: role, AddedAt: s.now()}
	idx := -1
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			idx = i
			m.AddedAt = p.Members[i].AddedAt
		}
	}
	if err := s.repo.SaveMember(ctx, projectID, m); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	if idx >= 0 {
		p.Members[idx] = m
	} else {
		p.Members = append(p.Members, m)
	}
	return &m, nil
}

// RemoveMember removes a user from a project.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return err
	}
	idx := -1
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("member %s: %w", userID, ErrNotFound)
	}
	if err := s.repo.DeleteMember(ctx, projectID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	p.Members = append(p.Members[:idx], p.Members[idx+1:]...)
	return nil
}

// MemberRole returns the role userID holds in a project.
func (s *Service) MemberRole(projectID, userID uuid.UUID) (models.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return "", false
	}
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

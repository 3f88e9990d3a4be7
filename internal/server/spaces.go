package server

import (
	"net/http"

	"github.com/thinkspaces/thinkspaces"
)

const spaceNotFound = "Space not found"

type spaceCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type spaceUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type spaceDetail struct {
	thinkspaces.Space
	Artifacts []thinkspaces.Artifact `json:"artifacts"`
	Agents    []thinkspaces.Agent    `json:"agents"`
}

func (s *Server) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := s.store.ListSpaces(r.Context())
	if err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, spaces)
}

func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var body spaceCreate
	if err := readJSON(w, r, &body); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	if err := required("name", body.Name, maxSpaceName); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}

	sp := thinkspaces.Space{
		ID:          thinkspaces.NewID(),
		Name:        body.Name,
		Description: body.Description,
		CreatedAt:   thinkspaces.NowUnix(),
	}
	if err := s.store.CreateSpace(r.Context(), sp); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (s *Server) handleGetSpace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sp, err := s.store.GetSpace(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	artifacts, err := s.store.ListArtifacts(ctx, sp.ID)
	if err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	agents, err := s.store.ListAgents(ctx, sp.ID)
	if err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, spaceDetail{Space: sp, Artifacts: artifacts, Agents: agents})
}

func (s *Server) handleUpdateSpace(w http.ResponseWriter, r *http.Request) {
	var body spaceUpdate
	if err := readJSON(w, r, &body); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	if err := optional("name", body.Name, maxSpaceName); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}

	sp, err := s.store.GetSpace(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	if body.Name != nil {
		sp.Name = *body.Name
	}
	if body.Description != nil {
		sp.Description = *body.Description
	}
	if err := s.store.UpdateSpace(r.Context(), sp); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) handleDeleteSpace(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSpace(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"net/http"
	"strings"

	"github.com/thinkspaces/thinkspaces"
)

const (
	artifactNotFound   = "Artifact not found"
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type artifactCreate struct {
	SpaceID  string   `json:"space_id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FileName string   `json:"file_name"`
	MimeType string   `json:"mime_type"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
}

type artifactUpdate struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	FileName *string   `json:"file_name"`
	MimeType *string   `json:"mime_type"`
	Summary  *string   `json:"summary"`
	Tags     *[]string `json:"tags"`
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	var (
		artifacts []thinkspaces.Artifact
		err       error
	)
	if spaceID := r.URL.Query().Get("space_id"); spaceID != "" {
		artifacts, err = s.store.ListArtifacts(r.Context(), spaceID)
	} else {
		artifacts, err = s.store.AllArtifacts(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	writeJSON(w, http.StatusOK, artifacts)
}

func (s *Server) handleCreateArtifact(w http.ResponseWriter, r *http.Request) {
	var body artifactCreate
	if err := readJSON(w, r, &body); err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	if err := required("title", body.Title, maxArtifactTitle); err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}

	ctx := r.Context()
	if _, err := s.store.GetSpace(ctx, body.SpaceID); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}

	a := thinkspaces.Artifact{
		ID:        thinkspaces.NewID(),
		SpaceID:   body.SpaceID,
		Title:     body.Title,
		Content:   body.Content,
		FileName:  body.FileName,
		MimeType:  body.MimeType,
		Summary:   body.Summary,
		Tags:      cleanTags(body.Tags),
		CreatedAt: thinkspaces.NowUnix(),
	}
	if err := s.store.CreateArtifact(ctx, a); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleSearchArtifacts(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeDetail(w, http.StatusBadRequest, "q: must not be empty")
		return
	}
	limit, err := queryLimit(r, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	found, err := s.store.SearchArtifacts(r.Context(), q, r.URL.Query().Get("space_id"), limit)
	if err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetArtifact(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateArtifact(w http.ResponseWriter, r *http.Request) {
	var body artifactUpdate
	if err := readJSON(w, r, &body); err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	if err := optional("title", body.Title, maxArtifactTitle); err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}

	a, err := s.store.GetArtifact(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	setIf(&a.Title, body.Title)
	setIf(&a.Content, body.Content)
	setIf(&a.FileName, body.FileName)
	setIf(&a.MimeType, body.MimeType)
	setIf(&a.Summary, body.Summary)
	if body.Tags != nil {
		a.Tags = cleanTags(*body.Tags)
	}
	if err := s.store.UpdateArtifact(r.Context(), a); err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteArtifact(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteArtifact(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, artifactNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// cleanTags trims tags and drops empty ones. The result is never nil.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

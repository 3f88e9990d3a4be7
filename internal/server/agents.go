package server

import (
	"net/http"
	"strings"

	"github.com/thinkspaces/thinkspaces"
	"github.com/thinkspaces/thinkspaces/internal/render"
)

const (
	agentNotFound            = "Agent not found"
	defaultInteractionsLimit = 20
	maxInteractionsLimit     = 100
)

type agentCreate struct {
	SpaceID      string `json:"space_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	SystemPrompt string `json:"system_prompt"`
}

type agentUpdate struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Model        *string `json:"model"`
	Provider     *string `json:"provider"`
	SystemPrompt *string `json:"system_prompt"`
}

type interactRequest struct {
	Prompt       string  `json:"prompt"`
	System       *string `json:"system"`
	ContextLimit *int    `json:"context_limit"`
}

type interactResponse struct {
	InteractionID string                      `json:"interaction_id"`
	Output        string                      `json:"output"`
	Provider      string                      `json:"provider"`
	Model         string                      `json:"model"`
	Metadata      map[string]any              `json:"metadata"`
	Context       thinkspaces.ContextSnapshot `json:"context"`
}

type interactionView struct {
	thinkspaces.Interaction
	ResponseHTML string `json:"response_html"`
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.store.ListAgents(r.Context(), r.URL.Query().Get("space_id"))
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var body agentCreate
	if err := readJSON(w, r, &body); err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	if strings.TrimSpace(body.Provider) == "" {
		body.Provider = thinkspaces.DefaultProvider
	}
	if err := firstErr(
		required("name", body.Name, maxAgentName),
		required("model", body.Model, maxAgentModel),
		maxLen("provider", body.Provider, maxAgentProvider),
	); err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}

	ctx := r.Context()
	if _, err := s.store.GetSpace(ctx, body.SpaceID); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}

	a := thinkspaces.Agent{
		ID:           thinkspaces.NewID(),
		SpaceID:      body.SpaceID,
		Name:         body.Name,
		Description:  body.Description,
		Model:        body.Model,
		Provider:     body.Provider,
		SystemPrompt: body.SystemPrompt,
		CreatedAt:    thinkspaces.NowUnix(),
	}
	if err := s.store.CreateAgent(ctx, a); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAgent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var body agentUpdate
	if err := readJSON(w, r, &body); err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	if err := firstErr(
		optional("name", body.Name, maxAgentName),
		optional("model", body.Model, maxAgentModel),
		optional("provider", body.Provider, maxAgentProvider),
	); err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}

	a, err := s.store.GetAgent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	setIf(&a.Name, body.Name)
	setIf(&a.Description, body.Description)
	setIf(&a.Model, body.Model)
	setIf(&a.Provider, body.Provider)
	setIf(&a.SystemPrompt, body.SystemPrompt)
	if err := s.store.UpdateAgent(r.Context(), a); err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAgent(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agent, err := s.store.GetAgent(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}

	var body interactRequest
	if err := readJSON(w, r, &body); err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	req := thinkspaces.InteractionRequest{
		Prompt:       body.Prompt,
		System:       body.System,
		ContextLimit: thinkspaces.DefaultContextLimit,
	}
	if body.ContextLimit != nil {
		req.ContextLimit = *body.ContextLimit
	}

	rec, result, err := s.executor.Interact(ctx, agent, req, s.store)
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, interactResponse{
		InteractionID: rec.ID,
		Output:        result.Output,
		Provider:      result.Provider,
		Model:         result.Model,
		Metadata:      result.Metadata,
		Context:       rec.Context,
	})
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultInteractionsLimit, maxInteractionsLimit)
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	ctx := r.Context()
	agent, err := s.store.GetAgent(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	recent, err := s.store.RecentInteractions(ctx, agent.ID, limit)
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	out := make([]interactionView, len(recent))
	for i, in := range recent {
		out[i] = interactionView{Interaction: in, ResponseHTML: render.MarkdownToHTML(in.Response)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agent, err := s.store.GetAgent(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}
	summary, err := s.executor.Summarize(ctx, agent)
	if err != nil {
		s.writeError(w, r, err, agentNotFound)
		return
	}

	sp, err := s.store.GetSpace(ctx, agent.SpaceID)
	if err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	sp.MemorySummary = summary
	if err := s.store.UpdateSpace(ctx, sp); err != nil {
		s.writeError(w, r, err, spaceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

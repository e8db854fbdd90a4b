package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/http/respond"
	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/models/dto"
	"github.com/hongminglow/skillpath-be/internal/service"
)

// RoadmapHandler serves roadmap generation, storage and progress tracking.
type RoadmapHandler struct {
	roadmaps *service.Roadmaps
	log      *zap.Logger
}

func NewRoadmapHandler(roadmaps *service.Roadmaps, log *zap.Logger) *RoadmapHandler {
	return &RoadmapHandler{roadmaps: roadmaps, log: log.Named("roadmaps")}
}

// Register attaches roadmap routes. AI-backed routes go behind limited.
func (h *RoadmapHandler) Register(mux *http.ServeMux, guard, limited Guard) {
	mux.Handle("POST /roadmaps/generate", limited(http.HandlerFunc(h.handleGenerate)))
	mux.Handle("POST /roadmaps", guard(http.HandlerFunc(h.handleSave)))
	mux.Handle("GET /roadmaps", guard(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /roadmaps/{id}", guard(http.HandlerFunc(h.handleGet)))
	mux.Handle("DELETE /roadmaps/{id}", guard(http.HandlerFunc(h.handleDelete)))
	mux.Handle("PATCH /roadmaps/{id}/items", guard(http.HandlerFunc(h.handleToggle)))
	mux.Handle("POST /roadmaps/{id}/refine", limited(http.HandlerFunc(h.handleRefine)))
}

func (h *RoadmapHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRoadmapRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	phases, err := h.roadmaps.Generate(r.Context(), service.GenerateInput{
		CareerPath:      req.CareerPath,
		SkillLevel:      req.SkillLevel,
		ExistingRoadmap: req.ExistingRoadmap,
		UpdateRequest:   req.UpdateRequest,
	})
	if err != nil {
		writeError(w, h.log, err, "Failed to generate roadmap. Please try again.")
		return
	}
	respond.JSON(w, http.StatusOK, "Roadmap generated.", dto.GenerateRoadmapResponse{
		CareerPath: req.CareerPath,
		SkillLevel: req.SkillLevel,
		Roadmap:    phases,
	})
}

func (h *RoadmapHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.SaveRoadmapRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	saved, err := h.roadmaps.Save(r.Context(), userID, req.CareerPath, req.SkillLevel, req.Roadmap)
	if err != nil {
		writeError(w, h.log, err, "Failed to save roadmap.")
		return
	}
	respond.JSON(w, http.StatusCreated, "Roadmap saved.", dto.NewRoadmapView(saved))
}

func (h *RoadmapHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.roadmaps.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err, "Failed to load roadmaps.")
		return
	}
	views := make([]dto.RoadmapView, len(list))
	for i, rm := range list {
		views[i] = dto.NewRoadmapView(rm)
	}
	respond.JSON(w, http.StatusOK, "ok", views)
}

func (h *RoadmapHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rm, err := h.roadmaps.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err, "Failed to load roadmap.")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.NewRoadmapView(rm))
}

func (h *RoadmapHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.roadmaps.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, h.log, err, "Failed to delete roadmap.")
		return
	}
	respond.JSON(w, http.StatusOK, "Roadmap deleted.", nil)
}

func (h *RoadmapHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var ref models.ItemRef
	if !decodeJSON(w, r, maxBodyBytes, &ref) {
		return
	}
	rm, completed, err := h.roadmaps.Toggle(r.Context(), userID, r.PathValue("id"), ref)
	if err != nil {
		writeError(w, h.log, err, "Failed to update progress.")
		return
	}
	respond.JSON(w, http.StatusOK, "Progress updated.", dto.ToggleItemResponse{
		Completed: completed,
		Roadmap:   dto.NewRoadmapView(rm),
	})
}

func (h *RoadmapHandler) handleRefine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.RefineRoadmapRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	rm, err := h.roadmaps.Refine(r.Context(), userID, r.PathValue("id"), req.UpdateRequest)
	if err != nil {
		writeError(w, h.log, err, "Failed to update roadmap. Please try again.")
		return
	}
	respond.JSON(w, http.StatusOK, "Roadmap updated.", dto.NewRoadmapView(rm))
}

package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/server/authz"
	"github.com/mzarins/invsync/internal/server/inventory"
	"github.com/mzarins/invsync/internal/server/reports"
	"github.com/mzarins/invsync/internal/server/users"
)

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (s *Server) handleCreateInventory(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !authz.CanPerform(actor, authz.ActionCreateInventory, nil) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	var record inventory.Record
	if err := decodeJSON(r, &record); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.inventory.Create(r.Context(), &record)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), "inventory create failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]int64{"id": id})
}

// handleListInventory serves the shared listing endpoint. Staff and admin
// see everything; clients get the list silently restricted to records
// assigned to them. An optional status query combines with the role filter.
func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	filter := inventory.Filter{Status: r.URL.Query().Get("status")}
	if actor.Role == users.RoleClient {
		filter.AssignedTo = &actor.ID
	} else if !authz.CanPerform(actor, authz.ActionListAllInventory, nil) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	records, err := s.inventory.List(r.Context(), filter)
	if err != nil {
		s.logger.Error(r.Context(), "inventory list failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []inventory.Record{}
	}
	jsonResponse(w, http.StatusOK, records)
}

func (s *Server) handleListAssigned(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor.Role != users.RoleClient {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	records, err := s.inventory.List(r.Context(), inventory.Filter{AssignedTo: &actor.ID})
	if err != nil {
		s.logger.Error(r.Context(), "assigned inventory list failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []inventory.Record{}
	}
	jsonResponse(w, http.StatusOK, records)
}

func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	record, err := s.inventory.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "Item not found")
			return
		}
		s.logger.Error(r.Context(), "inventory get failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !authz.CanPerform(actor, authz.ActionReadInventory, record) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	jsonResponse(w, http.StatusOK, record)
}

func (s *Server) handleUpdateInventory(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	record, err := s.inventory.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "Item not found")
			return
		}
		s.logger.Error(r.Context(), "inventory get failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !authz.CanPerform(actor, authz.ActionUpdateInventory, record) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	var update inventory.Update
	if err := decodeJSON(r, &update); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.inventory.Update(r.Context(), id, &update); err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			jsonError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrNotFound):
			jsonError(w, http.StatusNotFound, "Item not found")
		default:
			s.logger.Error(r.Context(), "inventory update failed", "error", err)
			jsonError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteInventory(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !authz.CanPerform(actor, authz.ActionDeleteInventory, nil) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.inventory.Delete(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "Item not found")
			return
		}
		s.logger.Error(r.Context(), "inventory delete failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !authz.CanPerform(actor, authz.ActionExportReports, nil) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	records, err := s.inventory.List(r.Context(), inventory.Filter{})
	if err != nil {
		s.logger.Error(r.Context(), "report query failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=inventory_report.csv")
	if err := reports.WriteInventoryCSV(w, records); err != nil {
		s.logger.Error(r.Context(), "report write failed", "error", err)
	}
}

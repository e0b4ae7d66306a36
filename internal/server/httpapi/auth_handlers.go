package httpapi

import (
	"errors"
	"net/http"

	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/server/authz"
	"github.com/mzarins/invsync/internal/server/users"
)

// userJSON is the wire shape of an account. Permissions serialize as null
// for non-client roles.
type userJSON struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Permissions *string `json:"permissions"`
}

func toUserJSON(u *users.User) userJSON {
	out := userJSON{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     string(u.Role),
	}
	if u.Permissions != "" {
		p := string(u.Permissions)
		out.Permissions = &p
	}
	return out
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			jsonError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"user":  toUserJSON(user),
		"token": token,
	})
}

// handleLogout exists for wire compatibility; tokens are stateless, so the
// client simply discards its copy.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

type newUserRequest struct {
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	Permissions *string `json:"permissions"`
}

func (r newUserRequest) permissions() users.Permissions {
	if r.Permissions == nil {
		return ""
	}
	return users.Permissions(*r.Permissions)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req newUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := s.users.Register(r.Context(), req.Username, req.Name, req.Password, users.Role(req.Role), req.permissions())
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), "registration failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.users.ResetPassword(r.Context(), req.Username, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			jsonError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrNotFound):
			jsonError(w, http.StatusNotFound, "User not found")
		default:
			s.logger.Error(r.Context(), "password reset failed", "error", err)
			jsonError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.users.ChangePassword(r.Context(), actor.ID, req.NewPassword); err != nil {
		if errors.Is(err, common.ErrValidation) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), "password change failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !authz.CanPerform(actor, authz.ActionManageUsers, nil) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	list, err := s.users.List(r.Context(), users.Role(r.URL.Query().Get("role")))
	if err != nil {
		s.logger.Error(r.Context(), "user list failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]userJSON, 0, len(list))
	for i := range list {
		out = append(out, toUserJSON(&list[i]))
	}
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !authz.CanPerform(actor, authz.ActionManageUsers, nil) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	var req newUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := s.users.Register(r.Context(), req.Username, req.Name, req.Password, users.Role(req.Role), req.permissions())
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), "user creation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !authz.CanPerform(actor, authz.ActionManageUsers, nil) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error(r.Context(), "user deletion failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/plyr-settlement/internal/api/middleware"
	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// UserHandler handles directory endpoints
type UserHandler struct {
	platform *platform.Platform
}

// NewUserHandler creates a new user handler
func NewUserHandler(p *platform.Platform) *UserHandler {
	return &UserHandler{platform: p}
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.CreateUserRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	var (
		user *model.User
		err  error
	)
	if req.Mirror != nil {
		user, err = h.platform.CreateUserWithMirror(r.Context(), caller, req.Owner, *req.Mirror, req.Username, req.Tier)
	} else {
		user, err = h.platform.CreateUser(r.Context(), caller, req.Owner, req.Username, req.Tier)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.UserFromModel(user))
}

// Get handles GET /api/v1/users/{username}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.platform.LookupUser(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Delete handles DELETE /api/v1/users/{username}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	if err := h.platform.DeleteUser(r.Context(), caller, mux.Vars(r)["username"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Mirror handles GET /api/v1/mirrors/{username}. The address is derived
// whether or not the user exists.
func (h *UserHandler) Mirror(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	mirror, err := h.platform.ComputeMirrorAddress(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Mirror{Username: username, Mirror: mirror})
}

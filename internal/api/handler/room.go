package handler

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/plyr-settlement/internal/api/middleware"
	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// maxDurationSeconds keeps the deadline representable as a time.Duration
const maxDurationSeconds = math.MaxInt64 / uint64(time.Second)

// RoomHandler handles game room endpoints
type RoomHandler struct {
	platform *platform.Platform
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(p *platform.Platform) *RoomHandler {
	return &RoomHandler{platform: p}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.CreateRoomRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.DurationSeconds > maxDurationSeconds {
		WriteError(w, invalid("duration %d exceeds the maximum", req.DurationSeconds))
		return
	}

	room, err := h.platform.CreateRoom(r.Context(), caller, req.GameID, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RoomFromModel(room))
}

// Count handles GET /api/v1/rooms/{game}
func (h *RoomHandler) Count(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["game"]
	n, err := h.platform.GameRoomCount(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomCount{GameID: gameID, Count: n})
}

// Get handles GET /api/v1/rooms/{game}/{room}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeRoom(w, r, http.StatusOK)
}

// Address handles GET /api/v1/rooms/{game}/{room}/address. The address is
// derived whether or not the room exists yet.
func (h *RoomHandler) Address(w http.ResponseWriter, r *http.Request) {
	gameID, n, err := pathRoom(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	addr, err := h.platform.ComputeRoomAddress(r.Context(), gameID, n)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomAddress{GameID: gameID, RoomNumber: n, Address: addr})
}

// Join handles POST /api/v1/rooms/{game}/{room}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.platform.Join)
}

// Leave handles POST /api/v1/rooms/{game}/{room}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.platform.Leave)
}

// Pay handles POST /api/v1/rooms/{game}/{room}/pay
func (h *RoomHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.platform.Pay)
}

// Earn handles POST /api/v1/rooms/{game}/{room}/earn
func (h *RoomHandler) Earn(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.platform.Earn)
}

// End handles POST /api/v1/rooms/{game}/{room}/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())
	gameID, n, err := pathRoom(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.End(r.Context(), caller, gameID, n); err != nil {
		WriteError(w, err)
		return
	}
	h.writeRoom(w, r, http.StatusOK)
}

// Close handles POST /api/v1/rooms/{game}/{room}/close
func (h *RoomHandler) Close(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())
	gameID, n, err := pathRoom(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.CloseRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.platform.Close(r.Context(), caller, gameID, n, req.Recipient); err != nil {
		WriteError(w, err)
		return
	}
	h.writeRoom(w, r, http.StatusOK)
}

type membershipFunc = func(ctx context.Context, caller model.Address, gameID string, roomNumber uint64, usernames []string) error

func (h *RoomHandler) membership(w http.ResponseWriter, r *http.Request, fn membershipFunc) {
	caller := middleware.MustGetCaller(r.Context())
	gameID, n, err := pathRoom(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.UsernamesRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := fn(r.Context(), caller, gameID, n, req.Usernames); err != nil {
		WriteError(w, err)
		return
	}
	h.writeRoom(w, r, http.StatusOK)
}

type settleFunc = func(ctx context.Context, caller model.Address, gameID string, roomNumber uint64, username string, asset model.Address, amount model.Amount) error

func (h *RoomHandler) settle(w http.ResponseWriter, r *http.Request, fn settleFunc) {
	caller := middleware.MustGetCaller(r.Context())
	gameID, n, err := pathRoom(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.SettleRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := fn(r.Context(), caller, gameID, n, req.Username, req.Asset, req.Amount); err != nil {
		WriteError(w, err)
		return
	}
	h.writeRoom(w, r, http.StatusOK)
}

func (h *RoomHandler) writeRoom(w http.ResponseWriter, r *http.Request, status int) {
	gameID, n, err := pathRoom(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	view, err := h.platform.Room(r.Context(), gameID, n)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, status, response.RoomFromView(view))
}

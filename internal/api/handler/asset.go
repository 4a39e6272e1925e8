package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/plyr-settlement/internal/api/middleware"
	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/platform"
)

// AssetHandler handles ledger endpoints
type AssetHandler struct {
	platform *platform.Platform
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(p *platform.Platform) *AssetHandler {
	return &AssetHandler{platform: p}
}

// List handles GET /api/v1/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.platform.Assets(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.List(w, assets, response.AssetFromModel)
}

// Register handles POST /api/v1/assets
func (h *AssetHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetCaller(r.Context())

	var req request.RegisterAssetRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	asset, err := h.platform.RegisterAsset(r.Context(), caller, req.Symbol, req.Decimals)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.AssetFromModel(asset))
}

// Mint handles POST /api/v1/assets/{asset}/mint
func (h *AssetHandler) Mint(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.platform.Mint)
}

// Transfer handles POST /api/v1/assets/{asset}/transfer
func (h *AssetHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.platform.Transfer)
}

// Balances handles GET /api/v1/balances/{account}: one entry per registered
// asset
func (h *AssetHandler) Balances(w http.ResponseWriter, r *http.Request) {
	account, err := pathAddress(r, "account")
	if err != nil {
		WriteError(w, err)
		return
	}
	assets, err := h.platform.Assets(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := make([]response.Balance, 0, len(assets))
	for _, a := range assets {
		bal, err := h.platform.Balance(r.Context(), a.Address, account)
		if err != nil {
			WriteError(w, err)
			return
		}
		resp = append(resp, response.Balance{Asset: a.Address, Balance: bal})
	}
	response.JSON(w, http.StatusOK, resp)
}

type moveFunc = func(ctx context.Context, caller, asset, to model.Address, amount model.Amount) error

func (h *AssetHandler) move(w http.ResponseWriter, r *http.Request, fn moveFunc) {
	caller := middleware.MustGetCaller(r.Context())
	asset, err := pathAsset(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.AmountRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := fn(r.Context(), caller, asset, req.To, req.Amount); err != nil {
		WriteError(w, err)
		return
	}

	bal, err := h.platform.Balance(r.Context(), asset, req.To)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Balance{Asset: asset, Balance: bal})
}

// pathAsset accepts "native" as an alias for the native currency
func pathAsset(r *http.Request) (model.Address, error) {
	if strings.EqualFold(mux.Vars(r)["asset"], "native") {
		return model.NativeAsset, nil
	}
	return pathAddress(r, "asset")
}

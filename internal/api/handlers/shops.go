package handlers

import (
	"net/http"

	"route-dispatch-service/internal/api/dto"
	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/services"
)

// ShopHandler exposes shop registration and removal.
type ShopHandler struct {
	Registrar *services.ShopRegistrar
}

func (h *ShopHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.RegisterShopRequest
	if !decodeBody(w, r, &req) {
		return
	}

	shop, err := h.Registrar.Register(r.Context(), services.RegisterShopRequest{
		Name:     req.Name,
		Address:  req.Address,
		WardCode: req.WardCode,
	}, actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, shopToResponse(shop))
}

func (h *ShopHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.Registrar.Remove(r.Context(), r.PathValue("id"), actor); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func shopToResponse(shop *domain.Shop) dto.ShopResponse {
	return dto.ShopResponse{
		ID:        shop.ID,
		Name:      shop.Name,
		Address:   shop.Address,
		WardCode:  shop.WardCode,
		Lat:       shop.Location.Lat,
		Lon:       shop.Location.Lon,
		CreatedAt: shop.CreatedAt,
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/service"
)

type CatalogHandler struct {
	svc service.CatalogService
}

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	var v domain.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.svc.AddVehicle(r.Context(), actorFrom(r), &v); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *CatalogHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *CatalogHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	list, total, err := h.svc.ListVehicles(r.Context(), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total})
}

func (h *CatalogHandler) SetVehicleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.svc.SetVehicleStatus(r.Context(), actorFrom(r), id, domain.VehicleStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

func (h *CatalogHandler) VehicleSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	schedule, err := h.svc.VehicleSchedule(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: schedule, Total: int32(len(schedule))})
}

func (h *CatalogHandler) AddRide(w http.ResponseWriter, r *http.Request) {
	var rd domain.Ride
	if err := json.NewDecoder(r.Body).Decode(&rd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.svc.AddRide(r.Context(), actorFrom(r), &rd); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rd)
}

func (h *CatalogHandler) GetRide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rd, remaining, err := h.svc.GetRide(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rideResponse{Ride: rd, SeatsRemaining: remaining})
}

func (h *CatalogHandler) ListUpcomingRides(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	list, total, err := h.svc.ListUpcomingRides(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total})
}

func (h *CatalogHandler) CancelRide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.svc.CancelRide(r.Context(), actorFrom(r), id, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ride cancelled"})
}

func (h *CatalogHandler) CompleteRide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.CompleteRide(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ride completed"})
}

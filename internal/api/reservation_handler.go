package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/service"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.svc.Submit(r.Context(), actorFrom(r), service.SubmitRequest{
		ResourceKind: domain.ResourceKind(req.ResourceKind),
		ResourceID:   req.ResourceID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Seats:        req.Seats,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int32) (*domain.Reservation, error) {
		return h.svc.Approve(r.Context(), actorFrom(r), id)
	})
}

func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	h.transition(w, r, func(id int32) (*domain.Reservation, error) {
		return h.svc.Reject(r.Context(), actorFrom(r), id, req.Reason)
	})
}

func (h *ReservationHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int32) (*domain.Reservation, error) {
		return h.svc.Pay(r.Context(), actorFrom(r), id)
	})
}

func (h *ReservationHandler) BeginUse(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int32) (*domain.Reservation, error) {
		return h.svc.BeginUse(r.Context(), actorFrom(r), id)
	})
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int32) (*domain.Reservation, error) {
		return h.svc.Complete(r.Context(), actorFrom(r), id)
	})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	h.transition(w, r, func(id int32) (*domain.Reservation, error) {
		return h.svc.Cancel(r.Context(), actorFrom(r), id, req.Reason)
	})
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	list, total, err := h.svc.ListMine(r.Context(), actorFrom(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total})
}

func (h *ReservationHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	list, total, err := h.svc.ListOwned(r.Context(), actorFrom(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total})
}

func (h *ReservationHandler) transition(w http.ResponseWriter, r *http.Request, fn func(id int32) (*domain.Reservation, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := fn(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func pathID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return int32(id), true
}

func pageParams(r *http.Request) (int32, int32) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return int32(page), int32(pageSize)
}

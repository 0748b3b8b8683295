package api

import (
	"github.com/gorilla/mux"
)

// NewRouter wires the HTTP surface. Signup, login, and catalog browsing are
// public; everything that acts on a reservation requires a bearer token.
func NewRouter(
	auth *AuthHandler,
	reservations *ReservationHandler,
	catalog *CatalogHandler,
	notifications *NotificationHandler,
	authMW *AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/signup", auth.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", auth.Login).Methods("POST")
	r.HandleFunc("/api/vehicles", catalog.ListVehicles).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", catalog.GetVehicle).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}/schedule", catalog.VehicleSchedule).Methods("GET")
	r.HandleFunc("/api/rides", catalog.ListUpcomingRides).Methods("GET")
	r.HandleFunc("/api/rides/{id}", catalog.GetRide).Methods("GET")

	// Authenticated endpoints
	s := r.PathPrefix("/api").Subrouter()
	s.Use(authMW.Handler)

	s.HandleFunc("/vehicles", catalog.AddVehicle).Methods("POST")
	s.HandleFunc("/vehicles/{id}/status", catalog.SetVehicleStatus).Methods("PUT")
	s.HandleFunc("/rides", catalog.AddRide).Methods("POST")
	s.HandleFunc("/rides/{id}/cancel", catalog.CancelRide).Methods("POST")
	s.HandleFunc("/rides/{id}/complete", catalog.CompleteRide).Methods("POST")

	s.HandleFunc("/reservations", reservations.Submit).Methods("POST")
	s.HandleFunc("/reservations", reservations.ListMine).Methods("GET")
	s.HandleFunc("/reservations/owned", reservations.ListOwned).Methods("GET")
	s.HandleFunc("/reservations/{id}", reservations.Get).Methods("GET")
	s.HandleFunc("/reservations/{id}/approve", reservations.Approve).Methods("POST")
	s.HandleFunc("/reservations/{id}/reject", reservations.Reject).Methods("POST")
	s.HandleFunc("/reservations/{id}/pay", reservations.Pay).Methods("POST")
	s.HandleFunc("/reservations/{id}/start", reservations.BeginUse).Methods("POST")
	s.HandleFunc("/reservations/{id}/complete", reservations.Complete).Methods("POST")
	s.HandleFunc("/reservations/{id}/cancel", reservations.Cancel).Methods("POST")

	s.HandleFunc("/notifications", notifications.List).Methods("GET")
	s.HandleFunc("/notifications/{id}/read", notifications.MarkAsRead).Methods("POST")

	return r
}

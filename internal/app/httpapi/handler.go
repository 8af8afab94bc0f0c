// Package httpapi exposes the REST API. It is a thin adapter: request
// shaping and status mapping only, with all behavior behind the
// application services.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	app "github.com/tunegrid/service_layer/internal/app"
	"github.com/tunegrid/service_layer/internal/app/domain/catalog"
	"github.com/tunegrid/service_layer/internal/app/domain/profile"
	"github.com/tunegrid/service_layer/internal/app/domain/wallet"
	"github.com/tunegrid/service_layer/internal/errors"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a router exposing the core REST API.
func NewHandler(application *app.Application) *mux.Router {
	h := &handler{app: application}

	r := mux.NewRouter()
	r.HandleFunc("/genres", h.listGenres).Methods(http.MethodGet)
	r.HandleFunc("/genres", h.createGenre).Methods(http.MethodPost)
	r.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{user_id}", h.getUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id}", h.updateUser).Methods(http.MethodPut)
	r.HandleFunc("/users/{user_id}/history", h.getHistory).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id}/history", h.appendHistory).Methods(http.MethodPost)
	r.HandleFunc("/users/{user_id}/wallet", h.getWallet).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id}/wallet/transfer", h.transferCredits).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	return r
}

// Wire payloads mirror the JSON field names of the public API.

type genreJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Listeners int32  `json:"listeners"`
}

type userProfileJSON struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	SubscriptionLevel int32  `json:"subscription_level"`
}

type walletJSON struct {
	CoinBalance   int32 `json:"coin_balance"`
	CreditBalance int32 `json:"credit_balance"`
}

type historyJSON struct {
	GenreIDs []string `json:"genre_ids"`
}

type transferRequest struct {
	Amount int32 `json:"amount"`
}

func toGenreJSON(g catalog.Genre) genreJSON {
	return genreJSON{ID: g.ID, Name: g.Name, Listeners: g.Listeners}
}

func toProfileJSON(p profile.UserProfile) userProfileJSON {
	return userProfileJSON{
		ID:                p.ID,
		Username:          p.Username,
		Email:             p.Email,
		SubscriptionLevel: int32(p.SubscriptionLevel),
	}
}

func toWalletJSON(w wallet.CreditWallet) walletJSON {
	return walletJSON{CoinBalance: w.CoinBalance, CreditBalance: w.CreditBalance}
}

func (h *handler) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.app.Catalog.ListGenres(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]genreJSON, 0, len(genres))
	for _, g := range genres {
		out = append(out, toGenreJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createGenre(w http.ResponseWriter, r *http.Request) {
	var payload genreJSON
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidArgument(err.Error()))
		return
	}

	created, err := h.app.Catalog.CreateGenre(r.Context(), catalog.Genre{
		ID:        payload.ID,
		Name:      payload.Name,
		Listeners: payload.Listeners,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGenreJSON(created))
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var payload userProfileJSON
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidArgument(err.Error()))
		return
	}

	created, err := h.app.Profiles.Create(r.Context(), profile.UserProfile{
		ID:                payload.ID,
		Username:          payload.Username,
		Email:             payload.Email,
		SubscriptionLevel: profile.SubscriptionLevel(payload.SubscriptionLevel),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Every new user starts with a funded wallet.
	if _, err := h.app.Wallets.Create(r.Context(), created.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfileJSON(created))
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	p, err := h.app.Profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileJSON(p))
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	var payload userProfileJSON
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidArgument(err.Error()))
		return
	}

	// The path, not the body, names the record being updated.
	updated, err := h.app.Profiles.Update(r.Context(), profile.UserProfile{
		ID:                userID,
		Username:          payload.Username,
		Email:             payload.Email,
		SubscriptionLevel: profile.SubscriptionLevel(payload.SubscriptionLevel),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileJSON(updated))
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	history, err := h.app.Profiles.History(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyJSON{GenreIDs: history.GenreIDs})
}

func (h *handler) appendHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	var payload historyJSON
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidArgument(err.Error()))
		return
	}

	history, err := h.app.Profiles.AppendHistory(r.Context(), userID, payload.GenreIDs...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyJSON{GenreIDs: history.GenreIDs})
}

func (h *handler) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	wlt, err := h.app.Wallets.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletJSON(wlt))
}

func (h *handler) transferCredits(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	var payload transferRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.InvalidArgument(err.Error()))
		return
	}

	wlt, err := h.app.Wallets.TransferCredit(r.Context(), userID, payload.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletJSON(wlt))
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps a service error to its HTTP status and a JSON body with
// the stable error code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(errors.CodeInternal)
	message := err.Error()

	if se := errors.GetServiceError(err); se != nil {
		status = se.Status
		code = string(se.Code)
		message = se.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}

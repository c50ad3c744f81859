// Package httpapi exposes the console over net/http.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/commands"
	"github.com/goliatone/go-admin-console/components/console/queries"
	"github.com/goliatone/go-admin-console/components/otp"
)

// ViewerFunc resolves the viewer of a request.
type ViewerFunc func(r *http.Request) console.ViewerContext

// Handlers exposes HTTP endpoints backed by an Executor.
type Handlers struct {
	API       Executor
	Broadcast *otp.BroadcastHook
	Viewer    ViewerFunc
}

// Routes returns a mux with every handler mounted under base.
func (h *Handlers) Routes(base string) *http.ServeMux {
	base = strings.TrimSuffix(base, "/")
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/api/overview", h.HandleOverview)
	mux.HandleFunc("GET "+base+"/api/navigation", h.HandleNavigation)
	mux.HandleFunc("GET "+base+"/api/lists/{screen}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleList(w, r, r.PathValue("screen"))
	})
	mux.HandleFunc("DELETE "+base+"/api/lists/{screen}/state", func(w http.ResponseWriter, r *http.Request) {
		h.HandleResetList(w, r, r.PathValue("screen"))
	})
	mux.HandleFunc("POST "+base+"/api/products", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSaveProduct(w, r, "")
	})
	mux.HandleFunc("PUT "+base+"/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSaveProduct(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE "+base+"/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDeleteProduct(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/otp/sessions", h.HandleStart)
	mux.HandleFunc("GET "+base+"/api/otp/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSession(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE "+base+"/api/otp/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleClose(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/otp/sessions/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
		h.HandleEdit(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/otp/sessions/{id}/submit", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSubmit(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/otp/sessions/{id}/resend", func(w http.ResponseWriter, r *http.Request) {
		h.HandleResend(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET "+base+"/api/otp/sessions/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		h.HandleEvents(w, r, r.PathValue("id"))
	})
	return mux
}

func (h *Handlers) viewer(r *http.Request) console.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return console.ViewerContext{
		UserID: r.Header.Get("X-User-ID"),
		Locale: r.URL.Query().Get("locale"),
	}
}

func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request, screen string) {
	view, err := h.API.List(r.Context(), queries.ListInput{
		Viewer: h.viewer(r),
		Screen: console.Screen(screen),
		Query:  console.ParseListQuery(r.URL.Query()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleResetList(w http.ResponseWriter, r *http.Request, screen string) {
	err := h.API.ResetList(r.Context(), commands.ResetListInput{
		Viewer: h.viewer(r),
		Screen: console.Screen(screen),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.API.Overview(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handlers) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	items, err := h.API.Navigation(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleSaveProduct creates a product when id is empty (201) and replaces
// its fields otherwise (200).
func (h *Handlers) HandleSaveProduct(w http.ResponseWriter, r *http.Request, id string) {
	var payload console.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	product, err := h.API.SaveProduct(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, product)
}

func (h *Handlers) HandleDeleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.API.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	var payload console.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, err := h.API.StartVerification(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := h.API.Session(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request, id string) {
	var payload commands.EditCodeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.SessionID = id
	snap, err := h.API.EditCode(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleSubmit starts verification. With ?wait=true it responds with the
// resolved snapshot, otherwise with 202 and the submitting snapshot.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request, id string) {
	wait := r.URL.Query().Get("wait") == "true"
	snap, err := h.API.SubmitCode(r.Context(), commands.SubmitCodeInput{SessionID: id, Wait: wait})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusAccepted
	if wait {
		status = http.StatusOK
	}
	writeJSON(w, status, snap)
}

func (h *Handlers) HandleResend(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := h.API.ResendCode(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) HandleClose(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.API.CloseSession(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvents streams session updates over WebSocket when the client asks
// for an upgrade and as Server-Sent Events otherwise.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request, id string) {
	if h.Broadcast == nil {
		http.Error(w, "event stream not configured", http.StatusNotImplemented)
		return
	}
	if _, err := h.API.Session(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		h.Broadcast.ServeWebSocket(w, r, id)
		return
	}
	h.Broadcast.ServeSSE(w, r, id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := console.HTTPStatus(err)
	if errors.Is(err, errNotConfigured) {
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// GetEventQR serves a PNG QR code linking to the event's page in the browser client.
func (h *Handler) GetEventQR(w http.ResponseWriter, r *http.Request) {
	ev, err := h.EventService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	png, err := qrcode.Encode(h.EventURL(ev.ID), qrcode.Medium, qrSize)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("generate QR for %s: %w", ev.ID, err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) EventURL(id string) string {
	return h.PublicBaseURL + "/events/" + id
}

package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"trivia-party-service/internal/app"
	"trivia-party-service/internal/domain"
)

const qrSize = 320

// NewRouter wires the HTTP surface of the service. publicURL is the base of
// the join links in QR codes; when empty it is derived from the request.
func NewRouter(service *app.GameService, ws *WSHandler, publicURL string) *httprouter.Router {
	mux := httprouter.New()
	mux.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandlerFunc(http.MethodGet, "/ws", ws.ServeWS)
	mux.GET("/games/:pin/qr", qrHandler(service, publicURL))
	return mux
}

// qrHandler renders a PNG QR code of the join link of a live game.
func qrHandler(service *app.GameService, publicURL string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pin := domain.NormalizePIN(ps.ByName("pin"))
		if !domain.ValidPIN(pin) {
			http.Error(w, "invalid pin", http.StatusBadRequest)
			return
		}
		if _, err := service.Lookup(r.Context(), pin); err != nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		png, err := qrcode.Encode(joinURL(r, publicURL, pin), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func joinURL(r *http.Request, publicURL, pin string) string {
	base := strings.TrimSuffix(publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?" + url.Values{"pin": {pin}}.Encode()
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brocante/brocante-api/internal/middleware"
	"github.com/brocante/brocante-api/internal/service"
)

// MediaPath is where locally stored pictures are served.
const MediaPath = "/media/"

// Deps holds everything the router needs.
type Deps struct {
	Auth     *service.AuthService
	Offers   *service.OfferService
	Payments *service.PaymentService

	CORSOrigins    []string
	AuthRateRPS    float64
	AuthRateBurst  int
	MaxUploadBytes int64

	// MediaDir, when set, is served under MediaPath.
	MediaDir string
}

// NewRouter wires the HTTP routes.
func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Auth)
	offerHandler := NewOfferHandler(d.Offers, d.MaxUploadBytes)
	paymentHandler := NewPaymentHandler(d.Payments)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, messageResponse("Page not found"))
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(d.AuthRateRPS, d.AuthRateBurst))
		r.Post("/user/signup", authHandler.HandleSignup)
		r.Post("/user/login", authHandler.HandleLogin)
	})

	r.Get("/offers", offerHandler.HandleList)
	r.Get("/offer/{id}", offerHandler.HandleGet)
	r.Post("/payment", paymentHandler.HandleCharge)

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(d.Auth))
		r.Post("/offer/publish", offerHandler.HandlePublish)
		r.Put("/offer/update/{id}", offerHandler.HandleUpdate)
		r.Delete("/offer/delete/{id}", offerHandler.HandleDelete)
	})

	if d.MediaDir != "" {
		r.Handle(MediaPath+"*", http.StripPrefix(MediaPath, mediaFiles(d.MediaDir, notFound)))
	}

	return r
}

// mediaFiles serves regular files under dir. Directories are reported as
// not found so folder contents are never listed.
func mediaFiles(dir string, notFound http.HandlerFunc) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := root.Open(r.URL.Path)
		if err != nil {
			notFound(w, r)
			return
		}
		info, err := f.Stat()
		f.Close()
		if err != nil || info.IsDir() {
			notFound(w, r)
			return
		}

		files.ServeHTTP(w, r)
	})
}

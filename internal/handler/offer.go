package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brocante/brocante-api/internal/media"
	"github.com/brocante/brocante-api/internal/middleware"
	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/service"
)

const pictureField = "picture"

// OfferHandler handles HTTP requests for offers.
type OfferHandler struct {
	service        *service.OfferService
	maxUploadBytes int64
}

// NewOfferHandler creates a new OfferHandler. Multipart bodies larger than
// maxUploadBytes are rejected.
func NewOfferHandler(svc *service.OfferService, maxUploadBytes int64) *OfferHandler {
	return &OfferHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// HandlePublish handles POST /offer/publish requests.
func (h *OfferHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrUnauthorized)
		return
	}

	in, picture, err := h.readOfferForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	offer, err := h.service.Publish(r.Context(), owner, in, picture)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, offer)
}

// HandleList handles GET /offers requests.
func (h *OfferHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := service.ParseOfferQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.service.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if list.Offers == nil {
		list.Offers = []model.OfferSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /offer/{id} requests.
func (h *OfferHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, offer)
}

// HandleUpdate handles PUT /offer/update/{id} requests.
func (h *OfferHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	in, picture, err := h.readOfferForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in, picture); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("Offer modified successfully"))
}

// HandleDelete handles DELETE /offer/delete/{id} requests.
func (h *OfferHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("Offer deleted successfully"))
}

// readOfferForm reads the offer fields and the optional picture from a
// multipart or url-encoded body.
func (h *OfferHandler) readOfferForm(w http.ResponseWriter, r *http.Request) (model.OfferInput, *media.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	err := r.ParseMultipartForm(h.maxUploadBytes)
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			return model.OfferInput{}, nil, formError(err)
		}
	case err != nil:
		return model.OfferInput{}, nil, formError(err)
	}

	in := model.OfferInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Brand:       r.FormValue("brand"),
		Size:        r.FormValue("size"),
		Condition:   r.FormValue("condition"),
		Color:       r.FormValue("color"),
		City:        r.FormValue("city"),
	}

	picture, err := readPicture(r)
	if err != nil {
		return model.OfferInput{}, nil, formError(err)
	}
	return in, picture, nil
}

func readPicture(r *http.Request) (*media.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[pictureField]
	if len(headers) == 0 {
		return nil, nil
	}

	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func formError(err error) error {
	msg := "invalid form body"
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		msg = "request body too large"
	}
	return &service.Error{Kind: service.KindOperationFailed, Message: msg, Err: err}
}

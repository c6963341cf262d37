package message

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kukuri-chat/internal/middleware"
	"kukuri-chat/internal/web"
)

// Uploads stores a message image and returns its relative URL path.
type Uploads interface {
	SaveMessageImage(file multipart.File, header *multipart.FileHeader) (string, error)
}

type Handler struct {
	Service *Service
	Uploads Uploads
	// MaxUploadBytes bounds multipart request bodies; zero leaves them
	// unbounded.
	MaxUploadBytes int64
}

// Send handles POST /messages with a JSON text payload.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.UserID(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "missing authentication token")
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Service.SendText(r.Context(), senderID, req.ReceiverID, req.Content)
	if err != nil {
		h.sendError(w, err, "could not send message")
		return
	}

	web.JSON(w, http.StatusCreated, msg)
}

// SendImage handles POST /messages/image with a multipart payload. The
// image hits disk before the insert; a failed insert leaves the file
// behind.
func (h *Handler) SendImage(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.UserID(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "missing authentication token")
		return
	}

	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}

	receiverID, _ := strconv.Atoi(r.FormValue("receiverId"))

	imageURL := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		path, err := h.Uploads.SaveMessageImage(file, header)
		if err != nil {
			web.Error(w, http.StatusInternalServerError, "could not store image")
			return
		}
		imageURL = path
	}

	msg, err := h.Service.SendImage(r.Context(), senderID, receiverID, imageURL)
	if err != nil {
		h.sendError(w, err, "could not send image")
		return
	}

	web.JSON(w, http.StatusCreated, msg)
}

// Conversation handles GET /messages/{userID}, returning the full
// two-party history newest first.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "missing authentication token")
		return
	}

	otherID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || otherID <= 0 {
		web.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	messages, err := h.Service.Conversation(r.Context(), callerID, otherID)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not load messages")
		return
	}

	web.JSON(w, http.StatusOK, messages)
}

func (h *Handler) sendError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMissingContent), errors.Is(err, ErrMissingImage), errors.Is(err, ErrUnknownReceiver):
		web.Error(w, http.StatusBadRequest, err.Error())
	default:
		web.Error(w, http.StatusInternalServerError, fallback)
	}
}

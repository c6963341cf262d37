package user

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"kukuri-chat/internal/middleware"
	"kukuri-chat/internal/web"
)

// TokenIssuer mints session tokens for fresh registrations and logins.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// Uploads stores a profile picture and returns its relative URL path.
type Uploads interface {
	SaveProfilePicture(file multipart.File, header *multipart.FileHeader) (string, error)
}

type Handler struct {
	Service *Service
	Tokens  TokenIssuer
	Uploads Uploads
	// MaxUploadBytes bounds multipart request bodies; zero leaves them
	// unbounded.
	MaxUploadBytes int64
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	displayName := strings.TrimSpace(r.FormValue("displayName"))
	bio := r.FormValue("bio")
	password := r.FormValue("password")

	// the picture hits disk before any database work
	profilePicture := ""
	if file, header, err := r.FormFile("profile_picture"); err == nil {
		defer file.Close()
		path, err := h.Uploads.SaveProfilePicture(file, header)
		if err != nil {
			web.Error(w, http.StatusInternalServerError, "could not store profile picture")
			return
		}
		profilePicture = path
	}

	u, err := h.Service.Register(r.Context(), username, displayName, bio, profilePicture, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			web.Error(w, http.StatusBadRequest, ErrMissingFields.Error())
		case errors.Is(err, ErrUsernameTaken):
			web.Error(w, http.StatusBadRequest, ErrUsernameTaken.Error())
		default:
			web.Error(w, http.StatusInternalServerError, "could not register user")
		}
		return
	}

	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	web.JSON(w, http.StatusCreated, AuthResponse{
		Message: "registration successful",
		Token:   tok,
		User:    u,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			web.Error(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		} else {
			web.Error(w, http.StatusInternalServerError, "could not log in")
		}
		return
	}

	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	web.JSON(w, http.StatusOK, AuthResponse{
		Message: "login successful",
		Token:   tok,
		User:    u,
	})
}

// List serves the user directory minus the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "missing authentication token")
		return
	}

	users, err := h.Service.ListOthers(r.Context(), callerID)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not list users")
		return
	}

	web.JSON(w, http.StatusOK, users)
}

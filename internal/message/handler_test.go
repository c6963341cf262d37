package message

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"kukuri-chat/internal/middleware"
	"kukuri-chat/internal/token"
)

type fakeUploads struct {
	saved int
}

func (f *fakeUploads) SaveMessageImage(multipart.File, *multipart.FileHeader) (string, error) {
	f.saved++
	return "/uploads/messages/message-image-test.jpg", nil
}

type messageTestEnv struct {
	router  *chi.Mux
	store   *fakeStore
	issuer  *token.Issuer
	uploads *fakeUploads
}

func setupMessageEnv(t *testing.T) *messageTestEnv {
	t.Helper()

	store := newFakeStore(testUsers())
	issuer := token.NewIssuer("test-secret", time.Hour)
	uploads := &fakeUploads{}
	handler := &Handler{
		Service: NewService(store),
		Uploads: uploads,
	}

	auth := middleware.NewAuth(issuer)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Handle)
		r.Get("/messages/{userID}", handler.Conversation)
		r.Post("/messages", handler.Send)
		r.Post("/messages/image", handler.SendImage)
	})

	return &messageTestEnv{router: r, store: store, issuer: issuer, uploads: uploads}
}

func (env *messageTestEnv) authed(t *testing.T, userID int, req *http.Request) *http.Request {
	t.Helper()
	tok, err := env.issuer.Issue(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func sendBody(t *testing.T, receiverID int, content string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(SendRequest{ReceiverID: receiverID, Content: content})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestSendEndpoint(t *testing.T) {
	env := setupMessageEnv(t)

	req := env.authed(t, 1, httptest.NewRequest(http.MethodPost, "/messages", sendBody(t, 2, "hi bob")))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var msg Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, TypeText, msg.Type)
	require.Equal(t, 1, msg.SenderID)
	require.Equal(t, 2, msg.ReceiverID)
	require.Equal(t, "alice", msg.SenderUsername)
	require.NotContains(t, rec.Body.String(), "image_url")
}

func TestSendEndpointEmptyContent(t *testing.T) {
	env := setupMessageEnv(t)

	req := env.authed(t, 1, httptest.NewRequest(http.MethodPost, "/messages", sendBody(t, 2, "")))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, env.store.messages)
}

func TestSendEndpointUnknownReceiver(t *testing.T) {
	env := setupMessageEnv(t)

	req := env.authed(t, 1, httptest.NewRequest(http.MethodPost, "/messages", sendBody(t, 99, "anyone there?")))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendEndpointRequiresToken(t *testing.T) {
	env := setupMessageEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/messages", sendBody(t, 2, "hi"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func imageForm(t *testing.T, receiverID string, withImage bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("receiverId", receiverID))
	if withImage {
		part, err := w.CreateFormFile("image", "cat.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/messages/image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSendImageEndpoint(t *testing.T) {
	env := setupMessageEnv(t)

	req := env.authed(t, 1, imageForm(t, "2", true))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, env.uploads.saved)

	var msg Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, TypeImage, msg.Type)
	require.Equal(t, "/uploads/messages/message-image-test.jpg", msg.ImageURL)
	require.NotContains(t, rec.Body.String(), `"content"`)
}

func TestSendImageEndpointMissingFile(t *testing.T) {
	env := setupMessageEnv(t)

	req := env.authed(t, 1, imageForm(t, "2", false))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, env.store.messages)
}

func TestConversationEndpoint(t *testing.T) {
	env := setupMessageEnv(t)

	svc := NewService(env.store)
	for _, m := range []struct {
		sender, receiver int
		content          string
	}{
		{1, 2, "first"},
		{2, 1, "second"},
		{3, 1, "noise from carol"},
	} {
		_, err := svc.SendText(context.Background(), m.sender, m.receiver, m.content)
		require.NoError(t, err)
	}

	req := env.authed(t, 1, httptest.NewRequest(http.MethodGet, "/messages/2", nil))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var msgs []Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 2)
	require.Equal(t, "second", msgs[0].Content)
	require.Equal(t, "first", msgs[1].Content)
}

func TestConversationEndpointInvalidID(t *testing.T) {
	env := setupMessageEnv(t)

	req := env.authed(t, 1, httptest.NewRequest(http.MethodGet, "/messages/abc", nil))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationEndpointEmptyIsArray(t *testing.T) {
	env := setupMessageEnv(t)

	req := env.authed(t, 1, httptest.NewRequest(http.MethodGet, "/messages/2", nil))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]\n", rec.Body.String())
}

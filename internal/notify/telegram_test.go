package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, time.Second)
	err := tg.SendMessage(context.Background(), "token123", "chat456", "hello")
	require.NoError(t, err)

	assert.Equal(t, "/bottoken123/sendMessage", gotPath)
	assert.Equal(t, "chat456", gotBody["chat_id"])
	assert.Equal(t, "hello", gotBody["text"])
	assert.Equal(t, "Markdown", gotBody["parse_mode"])
}

func TestSendMessage_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, time.Second)
	err := tg.SendMessage(context.Background(), "t", "c", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendPhotoURL(t *testing.T) {
	var gotPath string
	var gotPhoto, gotCaption string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPhoto = r.FormValue("photo")
		gotCaption = r.FormValue("caption")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, time.Second)
	err := tg.SendPhotoURL(context.Background(), "tok", "chat", "Item: Honey", "https://cdn.example.com/honey.jpg")
	require.NoError(t, err)

	assert.Equal(t, "/bottok/sendPhoto", gotPath)
	assert.Equal(t, "https://cdn.example.com/honey.jpg", gotPhoto)
	assert.Equal(t, "Item: Honey", gotCaption)
}

func TestSendPhotoFile(t *testing.T) {
	var gotFile []byte
	var gotName string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer f.Close()
		gotName = header.Filename
		buf := make([]byte, 64)
		n, _ := f.Read(buf)
		gotFile = buf[:n]
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, time.Second)
	err := tg.SendPhotoFile(context.Background(), "tok", "chat", "cap", "honey.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)

	assert.Equal(t, "honey.jpg", gotName)
	assert.Equal(t, "jpegbytes", string(gotFile))
}

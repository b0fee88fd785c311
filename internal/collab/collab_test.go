package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestFlavorStylesLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in textBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(textBody{Text: strings.ToUpper(in.Text) + "!"})
	}))
	defer srv.Close()

	f := NewFlavorer(srv.URL, quietLogger())
	assert.Equal(t, "ADA PLAYS K♠!", f.Flavor(context.Background(), "Ada plays K♠"))
}

func TestFlavorFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "boom", http.StatusInternalServerError) }},
		{"garbage", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) }},
		{"empty text", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"text":"  "}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			f := NewFlavorer(srv.URL, quietLogger())
			assert.Equal(t, "seat 2 votes 3", f.Flavor(context.Background(), "seat 2 votes 3"))
		})
	}

	var nilFlavorer *Flavorer
	assert.Equal(t, "line", nilFlavorer.Flavor(context.Background(), "line"))
}

func TestFlavorTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFlavorer(srv.URL, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.Equal(t, "slow", f.Flavor(ctx, "slow"))
	assert.Less(t, time.Since(start), FlavorTimeout)
}

func TestAvatarURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "https://img.example/" + r.URL.Query().Get("prompt")})
	}))
	defer srv.Close()

	a := NewAvatars(srv.URL, quietLogger())
	assert.Equal(t, "https://img.example/fox", a.URL(context.Background(), "fox"))
}

func TestAvatarPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := NewAvatars(srv.URL, quietLogger())
	got := a.URL(context.Background(), "fox")
	assert.Equal(t, Placeholder("fox"), got)
	assert.True(t, strings.HasPrefix(got, "/avatars/"))
	assert.Equal(t, Placeholder("fox"), Placeholder("fox"), "placeholder is deterministic")
	assert.NotEqual(t, Placeholder("fox"), Placeholder("owl"))

	var none *Avatars
	assert.Equal(t, Placeholder("owl"), none.URL(context.Background(), "owl"))
}

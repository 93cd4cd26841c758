package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"slashtree/pkg/appcmd"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAPI struct {
	created int
}

func (s *stubAPI) ApplicationCommands(string, string, ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return nil, nil
}

func (s *stubAPI) ApplicationCommandCreate(_ string, _ string, def *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	s.created++
	return def, nil
}

func (s *stubAPI) ApplicationCommandEdit(_ string, _ string, _ string, def *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	return def, nil
}

func (s *stubAPI) ApplicationCommandDelete(string, string, string, ...discordgo.RequestOption) error {
	return nil
}

func (s *stubAPI) ApplicationCommandBulkOverwrite(_ string, _ string, defs []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return defs, nil
}

func testServer(t *testing.T, api *stubAPI) *Server {
	t.Helper()

	tree := appcmd.NewTree("test")
	ping := appcmd.NewSlashCommand("ping", "Pong?")
	require.NoError(t, tree.Add(ping))

	return NewServer(Config{
		Tree:         tree,
		Syncer:       appcmd.NewSyncer(api),
		AppID:        "app-1",
		Addr:         ":0",
		ServiceToken: "secret",
		Logger:       zap.NewNop(),
	})
}

func TestStatusIsUnauthenticated(t *testing.T) {
	server := testServer(t, &stubAPI{})

	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCommandsRequiresServiceToken(t *testing.T) {
	server := testServer(t, &stubAPI{})

	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/commands", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/commands", nil)
	req.Header.Set("Service-Token", "wrong")
	rec = httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/commands", nil)
	req.Header.Set("Service-Token", "secret")
	rec = httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Global []json.RawMessage `json:"global"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Global, 1)
}

func TestSyncTrigger(t *testing.T) {
	api := &stubAPI{}
	server := testServer(t, api)

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	req.Header.Set("Service-Token", "secret")
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, api.created)
}

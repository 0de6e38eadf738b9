package main

import (
	"bytes"
	"context"
	"github.com/daehan00/omechoo/api/controllers"
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/client"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/poller"
	"github.com/daehan00/omechoo/session"
	"github.com/daehan00/omechoo/storage"
	"github.com/daehan00/omechoo/token"
	"github.com/daehan00/omechoo/voting"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func setupServer(t *testing.T) string {
	t.Helper()
	logging.Log = logrus.New()
	logging.Log.SetOutput(io.Discard)

	db, err := storage.OpenSQL("sqlite", ":memory:")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	controllers.NewRoomController(
		&storage.SQLRoomStorage{DB: db},
		&storage.SQLParticipantStorage{DB: db},
		&storage.SQLVoteStorage{DB: db},
		token.NewIssuer("cli-test", time.Hour),
		"http://share.test",
	).RegisterRoutes(engine)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv.URL
}

type result struct {
	out    string
	errOut string
	err    error
}

// run executes one command line against a, which keeps its token store between runs.
func run(a *app, base string, args ...string) result {
	var out, errOut bytes.Buffer
	a.out, a.errOut = &out, &errOut
	if a.tokens == nil {
		a.tokens = session.NewMemoryStore()
	}

	cmd := newRootCmd(a)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--api-url", base))
	err := cmd.Execute()
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

var createdRe = regexp.MustCompile(`room (\S+) created`)

func TestRoomCommands(t *testing.T) {
	base := setupServer(t)
	host, guest := &app{}, &app{}

	created := run(host, base, "room", "create", "--name", "점심", "--host", "방장",
		"--candidate", "짜장면", "--candidate", "짬뽕=얼큰 짬뽕")
	require.NoError(t, created.err, created.errOut)
	match := createdRe.FindStringSubmatch(created.out)
	require.Len(t, match, 2)
	id := match[1]
	shareURL := "http://share.test/rooms/" + id
	assert.Contains(t, created.out, shareURL)

	t.Run("Unhappy path - voting before joining asks to join", func(t *testing.T) {
		res := run(guest, base, "room", "vote", id, "짜장면")
		assert.ErrorIs(t, res.err, voting.ErrJoinRequired)
		assert.Equal(t, "! "+voting.ErrJoinRequired.Error()+"\n", res.errOut)
	})

	t.Run("Happy path - join through the share url", func(t *testing.T) {
		res := run(guest, base, "room", "join", shareURL, "--nickname", "  손님 ")
		require.NoError(t, res.err, res.errOut)
		assert.Equal(t, "joined 점심 as 손님\n", res.out)
	})

	t.Run("Unhappy path - guest cannot start", func(t *testing.T) {
		res := run(guest, base, "room", "start", id)
		assert.ErrorIs(t, res.err, voting.ErrNotHost)
	})

	t.Run("Happy path - host starts", func(t *testing.T) {
		res := run(host, base, "room", "start", id)
		require.NoError(t, res.err, res.errOut)
		assert.Equal(t, "voting started\n", res.out)
	})

	t.Run("Happy path - votes by value and display name, then change", func(t *testing.T) {
		res := run(host, base, "room", "vote", id, "짜장면")
		require.NoError(t, res.err, res.errOut)
		assert.Contains(t, res.out, "vote cast")

		res = run(guest, base, "room", "vote", id, "얼큰 짬뽕")
		require.NoError(t, res.err, res.errOut)
		assert.Contains(t, res.out, "vote cast")

		res = run(guest, base, "room", "vote", id, "짜장면")
		require.NoError(t, res.err, res.errOut)
		assert.Contains(t, res.out, "vote changed")
	})

	t.Run("Unhappy path - unknown candidate", func(t *testing.T) {
		res := run(guest, base, "room", "vote", id, "탕수육")
		assert.ErrorIs(t, res.err, voting.ErrUnknownCandidate)
	})

	t.Run("Happy path - show marks my vote", func(t *testing.T) {
		res := run(guest, base, "room", "show", id)
		require.NoError(t, res.err, res.errOut)
		assert.Contains(t, res.out, "점심 [voting] 2/10")
		assert.Contains(t, res.out, "방장 (host)")
		assert.Regexp(t, `\* 짜장면\s+2`, res.out)
		assert.Contains(t, res.out, "you can: vote\n")
	})

	t.Run("Happy path - host closes with a winner", func(t *testing.T) {
		res := run(host, base, "room", "close", id)
		require.NoError(t, res.err, res.errOut)
		assert.Contains(t, res.out, "winner: 짜장면\n")
	})

	t.Run("Unhappy path - closed room rejects votes", func(t *testing.T) {
		res := run(guest, base, "room", "vote", id, "짜장면")
		assert.ErrorIs(t, res.err, voting.ErrRoomClosed)
	})

	t.Run("Happy path - forget drops the token", func(t *testing.T) {
		res := run(guest, base, "room", "forget", id)
		require.NoError(t, res.err)
		_, ok := guest.tokens.Get(id)
		assert.False(t, ok)
	})

	t.Run("Unhappy path - missing room shows a retry hint", func(t *testing.T) {
		res := run(guest, base, "room", "show", "00000000-0000-0000-0000-000000000000")
		assert.Error(t, res.err)
		assert.Contains(t, res.errOut, "could not load room")
		assert.Contains(t, res.errOut, "retry with: omechoo room show")
	})
}

func TestRoomCreateNeedsTwoCandidates(t *testing.T) {
	base := setupServer(t)
	res := run(&app{}, base, "room", "create", "--name", "점심", "--host", "방장", "--candidate", "짜장면", "--candidate", " ")
	assert.Error(t, res.err)
	assert.Contains(t, res.errOut, "at least 2 candidates")
}

func TestGacha(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/menu/all", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":[
			{"id":"m1","name":"김치찌개","category":"korean"},
			{"id":"m2","name":"라멘","category":"japanese"},
			{"id":"m3","name":"비빔밥","category":"korean"}
		]}`)
	}))
	defer srv.Close()

	t.Run("Happy path - picks with the injected draw", func(t *testing.T) {
		a := &app{pick: func(n int) int { return n - 1 }}
		res := run(a, srv.URL, "gacha")
		require.NoError(t, res.err, res.errOut)
		assert.True(t, strings.HasPrefix(res.out, "비빔밥 (korean)\n"))
	})

	t.Run("Happy path - category filter narrows the draw", func(t *testing.T) {
		a := &app{pick: func(n int) int {
			assert.Equal(t, 1, n)
			return 0
		}}
		res := run(a, srv.URL, "gacha", "--include", "japanese")
		require.NoError(t, res.err, res.errOut)
		assert.Contains(t, res.out, "라멘")
	})

	t.Run("Unhappy path - nothing left to draw", func(t *testing.T) {
		res := run(&app{pick: func(int) int { return 0 }}, srv.URL, "gacha", "--include", "buffet")
		assert.ErrorIs(t, res.err, client.ErrNoMenus)
	})
}

func TestRecommendRequest(t *testing.T) {
	t.Run("Happy path - attributes parse as booleans", func(t *testing.T) {
		req, err := recommendRequest([]string{"korean"}, []string{"cafe"}, []string{"is_spicy", "is_soup=false"}, 3)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"is_spicy": true, "is_soup": false}, req.Attributes)
		assert.Equal(t, 3, req.Limit)
	})

	t.Run("Unhappy path - bad input is rejected before any call", func(t *testing.T) {
		_, err := recommendRequest([]string{"pizza"}, nil, nil, 5)
		assert.Error(t, err)
		_, err = recommendRequest(nil, nil, []string{"is_spicy=maybe"}, 5)
		assert.Error(t, err)
		_, err = recommendRequest(nil, nil, nil, 11)
		assert.Error(t, err)
	})
}

func TestCandidateInputs(t *testing.T) {
	in := candidateInputs([]string{"짜장면", " 짬뽕 = 얼큰 짬뽕 ", "", "탕수육="})
	require.Len(t, in, 3)
	assert.Nil(t, in[0].DisplayName)
	assert.Equal(t, "짬뽕", in[1].Value)
	assert.Equal(t, "얼큰 짬뽕", *in[1].DisplayName)
	assert.Nil(t, in[2].DisplayName)
}

func TestOpenStore(t *testing.T) {
	store, err := openStore(cliConfig{SessionBackend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, store)

	store, err = openStore(cliConfig{SessionBackend: "file", SessionPath: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &session.FileStore{}, store)

	_, err = openStore(cliConfig{SessionBackend: "etcd"})
	assert.Error(t, err)
}

type closedFetcher struct{}

func (closedFetcher) GetRoom(_ context.Context, roomID string) (*models.RoomDetailResponse, error) {
	return &models.RoomDetailResponse{Room: models.RoomResponse{ID: roomID, Status: "closed"}}, nil
}

func TestWatchStopsOnClosedRoom(t *testing.T) {
	logging.Log.SetOutput(io.Discard)
	updates := 0
	p := poller.New(closedFetcher{}, "r1", poller.OnUpdate(func(*models.RoomDetailResponse) { updates++ }))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, watch(ctx, p, strings.NewReader("\n\n")))
	assert.Equal(t, 1, updates)
}

func TestWatchReturnsWhileStdinBlocks(t *testing.T) {
	logging.Log.SetOutput(io.Discard)
	p := poller.New(closedFetcher{}, "r1")

	in, w := io.Pipe()
	defer w.Close()

	done := make(chan error, 1)
	go func() { done <- watch(context.Background(), p, in) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch stayed blocked on stdin after the room closed")
	}
	// closing the writer ends the parked reader
	require.NoError(t, w.Close())
}

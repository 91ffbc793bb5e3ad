package syncer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/writegeist/writegeist.go/internal/writegeist/business"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
)

type remoteMirror struct {
	mu          sync.Mutex
	lastUpdated string
	markdown    string
	uploads     []string
	authHeaders []string
}

func (m *remoteMirror) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/last-updated", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		w.Write([]byte(m.lastUpdated))
	})
	mux.HandleFunc("/api/project", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"markdown": m.markdown})
	})
	mux.HandleFunc("/api/upload-project", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Markdown string `json:"markdown"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.uploads = append(m.uploads, payload.Markdown)
		m.authHeaders = append(m.authHeaders, r.Header.Get("Authorization"))
		m.mu.Unlock()
	})
	return mux
}

func setupSyncer(t *testing.T, mirror *remoteMirror) (*Syncer, *business.Business) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))

	bl, err := business.NewBL(db)
	require.NoError(t, err)

	srv := httptest.NewServer(mirror.handler())
	t.Cleanup(srv.Close)

	remote, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return NewSyncer(bl, remote, "test-token"), bl
}

func TestPush(t *testing.T) {
	mirror := &remoteMirror{lastUpdated: "0"}
	s, _ := setupSyncer(t, mirror)

	require.NoError(t, s.Push("# My Project\n"))

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	require.Len(t, mirror.uploads, 1)
	assert.Equal(t, "# My Project\n", mirror.uploads[0])
	assert.Equal(t, "Bearer test-token", mirror.authHeaders[0])
}

func TestPullReplacesDocument(t *testing.T) {
	mirror := &remoteMirror{
		lastUpdated: "1700000000",
		markdown:    "# My Project\n\n## Setting\n\nThe lighthouse.\n",
	}
	s, bl := setupSyncer(t, mirror)

	s.Pull()

	markdown, _, err := bl.ProjectDoc()
	require.NoError(t, err)
	assert.Contains(t, markdown, "The lighthouse.")
	assert.False(t, bl.Session().Dirty())
}

func TestPullSkipsStaleTimestamp(t *testing.T) {
	mirror := &remoteMirror{
		lastUpdated: "1700000000",
		markdown:    "# My Project\n\n## Setting\n\nThe lighthouse.\n",
	}
	s, bl := setupSyncer(t, mirror)

	s.Pull()

	// Зеркало меняет документ, но отметка времени остается прежней
	mirror.mu.Lock()
	mirror.markdown = "# My Project\n\n## Setting\n\nThe docks.\n"
	mirror.mu.Unlock()

	s.Pull()

	markdown, _, err := bl.ProjectDoc()
	require.NoError(t, err)
	assert.Contains(t, markdown, "The lighthouse.")
	assert.NotContains(t, markdown, "The docks.")
}

func TestPullZeroTimestamp(t *testing.T) {
	mirror := &remoteMirror{lastUpdated: "0", markdown: "# Other\n"}
	s, bl := setupSyncer(t, mirror)

	before, _, err := bl.ProjectDoc()
	require.NoError(t, err)

	s.Pull()

	after, _, err := bl.ProjectDoc()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPullIdenticalSnapshot(t *testing.T) {
	mirror := &remoteMirror{lastUpdated: "1700000000"}
	s, bl := setupSyncer(t, mirror)

	markdown, _, err := bl.ProjectDoc()
	require.NoError(t, err)

	mirror.mu.Lock()
	mirror.markdown = markdown
	mirror.mu.Unlock()

	var updates int
	sub := bl.Session().Subscribe(func(ev editor.Event) {
		if _, ok := ev.(editor.UpdatedEvent); ok {
			updates++
		}
	})
	defer bl.Session().Unsubscribe(sub)

	s.Pull()

	after, _, err := bl.ProjectDoc()
	require.NoError(t, err)
	assert.Equal(t, markdown, after)
	assert.Zero(t, updates)
}

func TestPullEmitsSingleUpdate(t *testing.T) {
	mirror := &remoteMirror{
		lastUpdated: "1700000000",
		markdown:    "# My Project\n\n## Setting\n\nThe lighthouse.\n",
	}
	s, bl := setupSyncer(t, mirror)

	var updates int
	sub := bl.Session().Subscribe(func(ev editor.Event) {
		if event, ok := ev.(editor.UpdatedEvent); ok {
			updates++
			assert.Equal(t, "remote", event.Source)
		}
	})
	defer bl.Session().Unsubscribe(sub)

	s.Pull()

	// Оповещение о принятой сверке идет только через подписчиков сессии
	assert.Equal(t, 1, updates)
}

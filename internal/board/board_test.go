package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/dyluth/muster/internal/backlog"
	"github.com/dyluth/muster/internal/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call is one request received by the fake board service.
type call struct {
	Path   string
	Params url.Values
}

// fakeService records requests and answers with sequential ids.
type fakeService struct {
	mu     sync.Mutex
	calls  []call
	nextID int
	failOn string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	if q.Get("key") != "k" || q.Get("token") != "t" {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	f.calls = append(f.calls, call{Path: r.URL.Path, Params: q})
	if f.failOn != "" && strings.HasPrefix(r.URL.Path, f.failOn) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return
	}

	f.nextID++
	id := fmt.Sprintf("id%d", f.nextID)
	resp := map[string]string{"id": id, "name": q.Get("name")}
	if r.URL.Path == "/boards/" {
		resp["url"] = "https://boards.example/b/" + id
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeService) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Path)
	}
	return out
}

func newTestClient(t *testing.T) (*Client, *fakeService) {
	t.Helper()
	fake := &fakeService{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/", "k", "t", srv.Client())
	require.NoError(t, err)
	return client, fake
}

func ticket(fields ...string) *backlog.Ticket {
	m := descriptor.NewMap()
	for i := 0; i+1 < len(fields); i += 2 {
		m.Set(fields[i], fields[i+1])
	}
	return backlog.NewTicket(m)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("https://api.example/1", "", "t", nil)
	assert.Error(t, err)
	_, err = NewClient("https://api.example/1", "k", "", nil)
	assert.Error(t, err)
	_, err = NewClient("", "k", "t", nil)
	assert.Error(t, err)

	c, err := NewClient("https://api.example/1/", "k", "t", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example/1", c.baseURL)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestClient_CreateBoard(t *testing.T) {
	client, fake := newTestClient(t)

	board, err := client.CreateBoard(context.Background(), "Growth", "Backlog export", BoardPrefs{
		Background:      "blue",
		PermissionLevel: "private",
	})
	require.NoError(t, err)
	assert.Equal(t, "id1", board.ID)
	assert.Equal(t, "https://boards.example/b/id1", board.URL)

	require.Len(t, fake.calls, 1)
	params := fake.calls[0].Params
	assert.Equal(t, "Growth", params.Get("name"))
	assert.Equal(t, "Backlog export", params.Get("desc"))
	assert.Equal(t, "false", params.Get("defaultLists"))
	assert.Equal(t, "blue", params.Get("prefs_background"))
	assert.Equal(t, "private", params.Get("prefs_permissionLevel"))
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "secret-key", "secret-token", srv.Client())
	require.NoError(t, err)

	_, err = client.CreateList(context.Background(), "b1", "todo", "bottom")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Equal(t, "/lists", statusErr.Path)
	assert.Equal(t, "invalid token", statusErr.Body)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestClient_TransportErrorIsRedacted(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := NewClient(addr, "secret-key", "secret-token", nil)
	require.NoError(t, err)

	err = client.AddChecklistItem(context.Background(), "c1", "step")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestBuildPlan(t *testing.T) {
	tickets := []*backlog.Ticket{
		ticket("id", "A-1", "title", "First", "status", "todo", "priority", "high", "owner", "seo", "path", "backlog/a.yaml"),
		ticket("id", "B-2", "title", "Second", "status", "in_progress"),
		ticket("id", "C-3", "status", "todo"),
		ticket("id", "D-4", "title", "No status"),
	}

	plan := BuildPlan("Growth", "desc", tickets)

	require.Len(t, plan.Lists, 3)
	assert.Equal(t, "todo", plan.Lists[0].Name)
	assert.Equal(t, "in_progress", plan.Lists[1].Name)
	assert.Equal(t, UnsortedList, plan.Lists[2].Name)
	assert.Equal(t, 4, plan.CardCount())

	todo := plan.Lists[0].Cards
	require.Len(t, todo, 2)
	assert.Equal(t, "A-1: First", todo[0].Name)
	assert.Equal(t, "C-3", todo[1].Name)
	assert.Equal(t, "Priority: high\nOwner: seo\nDue: n/a\nSource: backlog/a.yaml", todo[0].Desc)
	assert.Len(t, todo[0].Checklist, 5)
}

func TestBuildPlan_Empty(t *testing.T) {
	plan := BuildPlan("Growth", "", nil)
	assert.Empty(t, plan.Lists)
	assert.Equal(t, 0, plan.CardCount())

	var buf bytes.Buffer
	require.NoError(t, plan.Write(&buf))
	assert.Equal(t, "Board: Growth\n0 lists, 0 cards\n", buf.String())
}

func TestPlan_Write(t *testing.T) {
	plan := BuildPlan("Growth", "", []*backlog.Ticket{
		ticket("id", "A-1", "title", "First", "status", "todo"),
	})

	var buf bytes.Buffer
	require.NoError(t, plan.Write(&buf))
	assert.Equal(t, "Board: Growth\n  List: todo (1)\n    Card: A-1: First\n1 lists, 1 cards\n", buf.String())
}

func TestExporter_Export(t *testing.T) {
	client, fake := newTestClient(t)
	plan := BuildPlan("Growth", "", []*backlog.Ticket{
		ticket("id", "A-1", "title", "First", "status", "todo"),
		ticket("id", "B-2", "title", "Second", "status", "done"),
	})

	var progress []string
	exporter := NewExporter(client, BoardPrefs{Background: "blue"})
	exporter.Progress = func(format string, args ...any) {
		progress = append(progress, fmt.Sprintf(format, args...))
	}

	result, err := exporter.Export(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, &Result{BoardID: "id1", BoardURL: "https://boards.example/b/id1", Lists: 2, Cards: 2}, result)

	paths := fake.paths()
	assert.Equal(t, "/boards/", paths[0])
	assert.Equal(t, "/lists", paths[1])
	assert.Equal(t, "/cards", paths[2])
	assert.Equal(t, "/checklists", paths[3])
	for i := 4; i < 9; i++ {
		assert.True(t, strings.HasSuffix(paths[i], "/checkItems"), paths[i])
	}
	assert.Equal(t, "/lists", paths[9])
	assert.Len(t, paths, 1+2*(1+1+1+5))

	assert.Equal(t, []string{"List todo\n", "  Card A-1: First\n", "List done\n", "  Card B-2: Second\n"}, progress)

	checklistCall := fake.calls[3]
	assert.Equal(t, ChecklistName, checklistCall.Params.Get("name"))
	assert.Equal(t, "Restate objective and success metrics", fake.calls[4].Params.Get("name"))
}

func TestExporter_StopsOnFirstFailure(t *testing.T) {
	client, fake := newTestClient(t)
	fake.failOn = "/cards"
	plan := BuildPlan("Growth", "", []*backlog.Ticket{
		ticket("id", "A-1", "status", "todo"),
		ticket("id", "B-2", "status", "todo"),
	})

	result, err := NewExporter(client, BoardPrefs{}).Export(context.Background(), plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to create card "A-1"`)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)

	require.NotNil(t, result)
	assert.Equal(t, 1, result.Lists)
	assert.Equal(t, 0, result.Cards)
	assert.Equal(t, []string{"/boards/", "/lists", "/cards"}, fake.paths())
}

package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/nikbrunner/tcm/internal/api"
	"github.com/nikbrunner/tcm/internal/api/apitest"
	"github.com/nikbrunner/tcm/internal/form"
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/nikbrunner/tcm/internal/session"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func steps(names ...string) []model.Step {
	out := make([]model.Step, len(names))
	for i, n := range names {
		out[i] = model.Step{Step: n, ExpectedRes: n + " ok"}
	}
	return out
}

// setup returns a loaded state backed by a seeded fake server.
func setup(t *testing.T) (*apitest.Server, *session.Syncer, *session.State) {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.Seed("auth/login.json",
		model.TestCase{ID: "tc_login", Title: "Login works", Author: "qa", Actions: steps("A", "B", "C")},
	)
	srv.Seed("cart.json",
		model.TestCase{ID: "tc_cart", Title: "Cart total", Author: "dev"},
		model.TestCase{ID: "tc_empty_cart", Title: "Empty cart", Author: "dev"},
	)

	client, err := api.NewClient(srv.URL)
	assert.NilError(t, err)
	syncer := session.NewSyncer(client, nil)

	state := session.New()
	state.Apply(syncer.Load(context.Background(), state.Issue()))
	assert.Equal(t, state.Notice.Kind, session.NoticeNone)
	return srv, syncer, state
}

func TestState_SelectAndClear(t *testing.T) {
	state := session.New()
	assert.Check(t, !state.ActionsVisible())

	state.Select(model.TestCase{ID: "tc_1", Title: "One"}, "one.json")
	assert.Check(t, state.ActionsVisible())
	assert.Equal(t, state.Current.ID, "tc_1")
	assert.Equal(t, state.CurrentPath, "one.json")

	state.Clear()
	assert.Check(t, is.Nil(state.Current))
	assert.Equal(t, state.CurrentPath, "")
	assert.Check(t, !state.ActionsVisible())
}

func TestState_SelectCopies(t *testing.T) {
	tc := model.TestCase{ID: "tc_1", Tags: []string{"a"}}
	state := session.New()
	state.Select(tc, "one.json")

	tc.Tags[0] = "changed"
	assert.Equal(t, state.Current.Tags[0], "a")
}

func TestState_Load(t *testing.T) {
	_, _, state := setup(t)

	assert.Equal(t, len(state.Snapshot.Entries), 3)
	assert.Equal(t, len(state.Tree), 2) // auth, cart.json
	assert.Equal(t, state.InFlight, 0)
}

func TestState_SelectFile(t *testing.T) {
	_, _, state := setup(t)

	t.Run("one test case is displayed", func(t *testing.T) {
		state.SelectFile("auth/login.json")
		assert.Equal(t, state.Current.ID, "tc_login")
		assert.Check(t, state.Expanded["auth"])
	})

	t.Run("several are listed", func(t *testing.T) {
		state.SelectFile("cart.json")
		assert.Check(t, is.Nil(state.Current))
		assert.Equal(t, state.ListingPath, "cart.json")
		assert.Equal(t, len(state.Listing), 2)
		assert.Equal(t, state.Listing[0].TestCase.ID, "tc_cart")
	})

	t.Run("unknown file is informational", func(t *testing.T) {
		state.SelectFile("missing.json")
		assert.Equal(t, state.Notice, session.Notice{Kind: session.NoticeInfo, Text: session.EmptyFile})
	})
}

func TestSubmit_ValidationIssuesNoRequest(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		author string
	}{
		{"empty title", "", "qa"},
		{"empty author", "Checkout", "  "},
		{"both empty", " ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, syncer, state := setup(t)
			before := srv.CountRequests("")

			f := form.NewCreate()
			f.Title, f.Author = tt.title, tt.author
			state.Form = f

			o := syncer.Submit(context.Background(), state.Issue(), f)
			state.Apply(o)

			var verr *form.ValidationError
			assert.Check(t, errors.As(o.Err, &verr))
			assert.Equal(t, srv.CountRequests(""), before)
			assert.Equal(t, state.Notice.Kind, session.NoticeError)
			assert.Check(t, state.Form != nil, "form stays open")
		})
	}
}

func TestSubmit_CreateRoundTrip(t *testing.T) {
	srv, syncer, state := setup(t)
	posts := srv.CountRequests(http.MethodPost)

	f := form.NewCreate()
	f.Title, f.Author = "Checkout", "qa"
	f.Steps = steps("pay", "receipt")
	state.Form = f

	state.Apply(syncer.Submit(context.Background(), state.Issue(), f))

	assert.Equal(t, srv.CountRequests(http.MethodPost), posts+1)
	assert.Check(t, is.Nil(state.Form))
	assert.Equal(t, state.Notice, session.Notice{Kind: session.NoticeSuccess, Text: "test case created"})

	assert.Assert(t, state.Current != nil)
	entry := state.Snapshot.EntryByID(state.Current.ID)
	assert.Assert(t, entry != nil)
	assert.Equal(t, entry.TestCase.Title, "Checkout")
	assert.Equal(t, entry.TestCase.Author, "qa")
	assert.Check(t, is.DeepEqual(entry.TestCase.Actions, steps("pay", "receipt")))
	assert.Equal(t, state.CurrentPath, apitest.DefaultFile)
}

func TestSubmit_CreateInFile(t *testing.T) {
	_, syncer, state := setup(t)

	f := form.NewCreate()
	f.Title, f.Author = "Logout", "qa"
	f.FilePath = "auth/login.json"
	state.Apply(syncer.Submit(context.Background(), state.Issue(), f))

	assert.Equal(t, state.CurrentPath, "auth/login.json")
	assert.Equal(t, len(state.Snapshot.EntriesInFile("auth/login.json")), 2)
}

func TestSubmit_Update(t *testing.T) {
	srv, syncer, state := setup(t)
	state.SelectFile("auth/login.json")

	f := form.NewEdit(*state.Current)
	f.Title = "Login still works"
	state.Apply(syncer.Submit(context.Background(), state.Issue(), f))

	stored, _, ok := srv.TestCase("tc_login")
	assert.Assert(t, ok)
	assert.Equal(t, stored.Title, "Login still works")
	assert.Equal(t, state.Current.Title, "Login still works")
	assert.Equal(t, state.Notice.Text, "test case updated")
}

func TestDelete(t *testing.T) {
	t.Run("success clears the display", func(t *testing.T) {
		_, syncer, state := setup(t)
		state.SelectFile("auth/login.json")

		state.Apply(syncer.Delete(context.Background(), state.Issue(), "tc_login"))

		assert.Check(t, is.Nil(state.Current))
		assert.Check(t, !state.ActionsVisible())
		assert.Check(t, is.Nil(state.Snapshot.EntryByID("tc_login")))
		assert.Equal(t, state.Notice.Text, "test case deleted")
	})

	t.Run("failure keeps the selection and shows the message verbatim", func(t *testing.T) {
		srv, syncer, state := setup(t)
		state.SelectFile("auth/login.json")
		before := state.Snapshot
		srv.Fail(http.MethodDelete, "/api/test-case/{id}", http.StatusNotFound, "not found")

		state.Apply(syncer.Delete(context.Background(), state.Issue(), "tc_login"))

		assert.Equal(t, state.Current.ID, "tc_login")
		assert.Check(t, state.ActionsVisible())
		assert.Check(t, state.Snapshot == before)
		assert.Equal(t, state.Notice, session.Notice{Kind: session.NoticeError, Text: "not found"})
		assert.Equal(t, state.InFlight, 0)
	})
}

func TestDuplicate(t *testing.T) {
	_, syncer, state := setup(t)
	state.SelectFile("auth/login.json")

	state.Apply(syncer.Duplicate(context.Background(), state.Issue(), "tc_login"))

	assert.Equal(t, state.Current.Title, "Login works (copy)")
	assert.Equal(t, state.CurrentPath, "auth/login.json")
	assert.Equal(t, len(state.Snapshot.EntriesInFile("auth/login.json")), 2)
}

func TestMove(t *testing.T) {
	_, syncer, state := setup(t)
	state.SelectFile("auth/login.json")

	state.Apply(syncer.Move(context.Background(), state.Issue(), *state.Current, "archive/test_cases.json"))

	assert.Equal(t, state.CurrentPath, "archive/test_cases.json")
	assert.Check(t, state.Expanded["archive"])
	entry := state.Snapshot.EntryByID("tc_login")
	assert.Equal(t, entry.FilePath, "archive/test_cases.json")
}

func TestReorder_RedisplaysConfirmedOrder(t *testing.T) {
	_, syncer, state := setup(t)
	state.SelectFile("auth/login.json")

	state.Apply(syncer.Reorder(context.Background(), state.Issue(), "tc_login", steps("C", "A", "B")))

	assert.Check(t, is.DeepEqual(state.Current.Actions, steps("C", "A", "B")))
	assert.Equal(t, state.Notice.Text, "steps reordered")
}

func TestReorder_FailureKeepsOrder(t *testing.T) {
	srv, syncer, state := setup(t)
	state.SelectFile("auth/login.json")
	srv.Fail(http.MethodPut, "/api/test-case/{id}/reorder-steps", http.StatusBadRequest, "steps must be an array")

	state.Apply(syncer.Reorder(context.Background(), state.Issue(), "tc_login", steps("C", "A", "B")))

	assert.Check(t, is.DeepEqual(state.Current.Actions, steps("A", "B", "C")))
	assert.Equal(t, state.Notice.Text, "steps must be an array")
}

func TestCreateDirectory(t *testing.T) {
	_, syncer, state := setup(t)

	state.Apply(syncer.CreateDirectory(context.Background(), state.Issue(), " payments "))

	assert.Equal(t, state.Notice.Text, "directory created")
	assert.Check(t, state.Snapshot.Structure["payments"].IsFolder())
}

func TestSearch(t *testing.T) {
	_, syncer, state := setup(t)

	state.Apply(syncer.Search(context.Background(), state.Issue(), "cart"))
	assert.Check(t, state.Searching)
	assert.Equal(t, len(state.Results), 2)
	assert.Equal(t, state.SearchHeader(), `Search results: "cart" (2 found)`)

	state.Apply(syncer.Search(context.Background(), state.Issue(), "nothing-matches"))
	assert.Equal(t, len(state.Results), 0)
	assert.Equal(t, state.Notice.Kind, session.NoticeInfo)

	state.Apply(syncer.Search(context.Background(), state.Issue(), "  "))
	assert.Check(t, !state.Searching)
}

func TestRefetchFailureKeepsSnapshot(t *testing.T) {
	srv, syncer, state := setup(t)
	before := state.Snapshot
	srv.Fail(http.MethodGet, "/api/test-cases", http.StatusInternalServerError, "reload broke")

	state.Apply(syncer.Duplicate(context.Background(), state.Issue(), "tc_cart"))

	assert.Equal(t, state.Current.Title, "Cart total (copy)")
	assert.Check(t, state.Snapshot == before)
	assert.Equal(t, state.Notice, session.Notice{Kind: session.NoticeError, Text: "reload broke"})
}

func TestSetSnapshot_DropsStale(t *testing.T) {
	state := session.New()
	older, newer := state.Issue(), state.Issue()

	fresh := model.NewSnapshot()
	fresh.Entries = []model.Entry{{TestCase: model.TestCase{ID: "tc_new"}, FilePath: "a.json"}}
	stale := model.NewSnapshot()

	assert.Check(t, state.SetSnapshot(newer, fresh))
	assert.Check(t, !state.SetSnapshot(older, stale))
	assert.Check(t, state.Snapshot == fresh)
}

func TestSetSnapshot_ClearsVanishedTestCase(t *testing.T) {
	srv, syncer, state := setup(t)
	state.SelectFile("auth/login.json")
	assert.Check(t, state.ActionsVisible())

	other, err := api.NewClient(srv.URL)
	assert.NilError(t, err)
	assert.NilError(t, other.Delete(context.Background(), "tc_login"))

	state.Apply(syncer.Load(context.Background(), state.Issue()))

	assert.Check(t, is.Nil(state.Snapshot.EntryByID("tc_login")))
	assert.Check(t, is.Nil(state.Current))
	assert.Equal(t, state.CurrentPath, "")
	assert.Check(t, !state.ActionsVisible())
	assert.Equal(t, state.Notice, session.Notice{Kind: session.NoticeInfo, Text: session.Vanished})
}

func TestSetSnapshot_ClearsUnlistedTestCase(t *testing.T) {
	state := session.New()
	listed := model.NewSnapshot()
	listed.Entries = []model.Entry{{TestCase: model.TestCase{ID: "tc_1", Title: "One"}, FilePath: "a.json"}}
	listed.Structure = model.FileStructure{
		"a.json": {Type: model.NodeFile, Path: "a.json", TestCases: []string{"tc_1"}},
	}
	assert.Check(t, state.SetSnapshot(state.Issue(), listed))
	state.SelectFile("a.json")
	assert.Equal(t, state.Current.ID, "tc_1")

	// the entry is still returned but its file no longer lists it
	unlisted := model.NewSnapshot()
	unlisted.Entries = listed.Entries
	unlisted.Structure = model.FileStructure{
		"a.json": {Type: model.NodeFile, Path: "a.json", TestCases: []string{}},
	}
	assert.Check(t, state.SetSnapshot(state.Issue(), unlisted))

	assert.Check(t, is.Nil(state.Current))
	assert.Check(t, !state.ActionsVisible())
	assert.Equal(t, state.Notice.Kind, session.NoticeInfo)
}

func TestSetSnapshot_KeepsCollapsedFolders(t *testing.T) {
	_, syncer, state := setup(t)
	state.SelectFile("auth/login.json")
	assert.Check(t, state.Expanded["auth"])

	state.Expanded["auth"] = false
	state.Apply(syncer.Load(context.Background(), state.Issue()))

	assert.Equal(t, state.Current.ID, "tc_login")
	assert.Check(t, !state.Expanded["auth"])
}

func TestInFlightCounter(t *testing.T) {
	state := session.New()
	a, b := state.Issue(), state.Issue()
	assert.Equal(t, state.InFlight, 2)

	state.Apply(session.Outcome{Seq: b, Action: session.ActionLoad, Snapshot: model.NewSnapshot()})
	state.Apply(session.Outcome{Seq: a, Action: session.ActionLoad, Snapshot: model.NewSnapshot()})
	assert.Equal(t, state.InFlight, 0)
}

// Copyright © 2016, The T Authors.

package debugserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strconv"
	"testing"

	"github.com/gorilla/mux"

	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/mark"
	"github.com/neilbrown/edlib-sub004/websocket"
)

func newTestServer(t *testing.T) (*Server, *mark.Store, *mark.View, *httptest.Server) {
	t.Helper()
	d := doc.NewTextString("hello\nworld\n")
	store := mark.NewStore(d, nil)
	v := store.NewView("test")

	s := New(store)
	s.AddView("test", v)

	r := mux.NewRouter()
	s.RegisterHandlers(r)
	return s, store, v, httptest.NewServer(r)
}

func TestListViews(t *testing.T) {
	_, store, _, srv := newTestServer(t)
	defer store.Close()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/views")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(names) != 1 || names[0] != "test" {
		t.Fatalf("/views = %v, want [test]", names)
	}
}

func TestViewInfoIncludesMarks(t *testing.T) {
	_, store, v, srv := newTestServer(t)
	defer store.Close()
	defer srv.Close()

	m, err := store.NewMark(v)
	if err != nil {
		t.Fatalf("NewMark: %v", err)
	}
	if err := store.MarkToEnd(m, false); err != nil {
		t.Fatalf("MarkToEnd: %v", err)
	}
	if err := m.Attrs().Insert("lines", "0"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	resp, err := http.Get(srv.URL + "/views/test")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	var info ViewInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(info.Marks) != 1 {
		t.Fatalf("ViewInfo.Marks has %d entries, want 1", len(info.Marks))
	}
	if info.Marks[0].Attrs["lines"] != "0" {
		t.Fatalf("mark attrs = %v, want lines=0", info.Marks[0].Attrs)
	}
}

func TestViewInfoNotFound(t *testing.T) {
	_, store, _, srv := newTestServer(t)
	defer store.Close()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/views/missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMarkInfoBySeq(t *testing.T) {
	_, store, v, srv := newTestServer(t)
	defer store.Close()
	defer srv.Close()

	m, err := store.NewMark(v)
	if err != nil {
		t.Fatalf("NewMark: %v", err)
	}
	if err := store.MarkToEnd(m, false); err != nil {
		t.Fatalf("MarkToEnd: %v", err)
	}

	resp, err := http.Get(srv.URL + "/views/test/marks/" + strconv.FormatInt(int64(m.Seq()), 10))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var info MarkInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if info.Seq != int64(m.Seq()) {
		t.Fatalf("MarkInfo.Seq = %d, want %d", info.Seq, m.Seq())
	}
}

func TestMarksCheckReportsNoViolationsOnAHealthyStore(t *testing.T) {
	_, store, v, srv := newTestServer(t)
	defer store.Close()
	defer srv.Close()

	if _, err := store.NewMark(v); err != nil {
		t.Fatalf("NewMark: %v", err)
	}

	resp, err := http.Get(srv.URL + "/marks/check")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	var errs []mark.Inconsistency
	if err := json.NewDecoder(resp.Body).Decode(&errs); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("/marks/check = %v, want none", errs)
	}
}

func TestChangesStreamsReplacedEvents(t *testing.T) {
	_, store, _, srv := newTestServer(t)
	defer store.Close()
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	u.Scheme = "ws"
	u.Path = path.Join(u.Path, "/changes")

	conn, err := websocket.Dial(u)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	d := store.Doc().(*doc.Text)
	if _, err := d.Replace(doc.Ref{}, doc.Ref{}, "xy"); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	var c doc.Change
	if err := conn.Recv(&c); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if c.From != (doc.Ref{}) {
		t.Fatalf("Change.From = %v, want zero Ref", c.From)
	}
}

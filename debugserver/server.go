// Copyright © 2016, The T Authors.

// Package debugserver exposes read-only HTTP+JSON introspection of
// a mark.Store's Views and Marks, and a websocket feed of a Doc's
// change events, for diagnosing the document core from outside the
// process. It registers its routes on a caller-supplied
// *mux.Router, in the idiom of editor.Server.RegisterHandlers; it
// never mutates the Store or Doc it inspects.
package debugserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/neilbrown/edlib-sub004/attr"
	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/mark"
)

// A MarkInfo is the JSON shape of one Mark: its position in the
// Store's total order, its Ref into the Doc, the Group it belongs
// to, and its own attribute set (used by, e.g., linecounter's
// cached-count sentinels).
type MarkInfo struct {
	Seq     int64             `json:"seq"`
	Ref     doc.Ref           `json:"ref"`
	Group   int               `json:"group"`
	Valid   bool              `json:"valid"`
	IsPoint bool              `json:"is_point"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// A ViewInfo is the JSON shape of a named View: its marks in
// traversal order.
type ViewInfo struct {
	Name  string     `json:"name"`
	Marks []MarkInfo `json:"marks"`
}

// A Server serves introspection endpoints over a mark.Store. Views
// of interest are registered with AddView under a caller-chosen
// name; unregistered Stores have nothing to show.
type Server struct {
	sync.Mutex
	store *mark.Store
	views map[string]*mark.View
}

// New returns a Server inspecting store. store must outlive the
// Server.
func New(store *mark.Store) *Server {
	return &Server{store: store, views: make(map[string]*mark.View)}
}

// AddView registers v under name, making it visible at
// /views/{name} and /views/{name}/marks/{seq}. A later call with the
// same name replaces the prior registration.
func (s *Server) AddView(name string, v *mark.View) {
	s.Lock()
	defer s.Unlock()
	s.views[name] = v
}

// RemoveView unregisters the View under name, if any.
func (s *Server) RemoveView(name string) {
	s.Lock()
	defer s.Unlock()
	delete(s.views, name)
}

// RegisterHandlers registers handlers for the following paths and
// methods, all GET, all read-only:
//
//	/views                 the names of the registered Views.
//	/views/{name}          the named View's marks, as ViewInfo.
//	/views/{name}/marks/{seq}  one mark of the View, as MarkInfo.
//	/marks/check           the Store's mark.Inconsistency list, as
//	                        found by mark.Store.Check; an empty
//	                        JSON array means no violation was found.
//	/changes               a websocket feed of the Store's Doc's
//	                        Replaced events, one JSON-encoded
//	                        doc.Change per message.
func (s *Server) RegisterHandlers(r *mux.Router) {
	r.HandleFunc("/views", s.listViews).Methods(http.MethodGet)
	r.HandleFunc("/views/{name}", s.viewInfo).Methods(http.MethodGet)
	r.HandleFunc("/views/{name}/marks/{seq}", s.markInfo).Methods(http.MethodGet)
	r.HandleFunc("/marks/check", s.marksCheck).Methods(http.MethodGet)
	r.HandleFunc("/changes", s.changes).Methods(http.MethodGet)
}

func notFound(w http.ResponseWriter, err error) { http.Error(w, err.Error(), http.StatusNotFound) }

func (s *Server) getView(req *http.Request) (string, *mark.View, error) {
	name := mux.Vars(req)["name"]
	s.Lock()
	defer s.Unlock()
	v, ok := s.views[name]
	if !ok {
		return "", nil, errors.New("/views/" + name)
	}
	return name, v, nil
}

func markInfoOf(m *mark.Mark) MarkInfo {
	info := MarkInfo{
		Seq:     int64(m.Seq()),
		Ref:     m.Ref(),
		Group:   int(m.Group()),
		Valid:   m.Valid(),
		IsPoint: m.IsPoint(),
	}
	if a := m.Attrs(); a.Len() > 0 {
		info.Attrs = attrsToMap(a)
	}
	return info
}

func attrsToMap(a *attr.Set) map[string]string {
	m := make(map[string]string, a.Len())
	for i := 0; i < a.Len(); i++ {
		at := a.At(i)
		m[at.Key] = at.Value
	}
	return m
}

func (s *Server) listViews(w http.ResponseWriter, req *http.Request) {
	s.Lock()
	names := make([]string, 0, len(s.views))
	for name := range s.views {
		names = append(names, name)
	}
	s.Unlock()

	if err := json.NewEncoder(w).Encode(names); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) viewInfo(w http.ResponseWriter, req *http.Request) {
	name, v, err := s.getView(req)
	if err != nil {
		notFound(w, err)
		return
	}

	info := ViewInfo{Name: name}
	for m := mark.VMarkFirst(v); m != nil; m = mark.VMarkNext(v, m) {
		info.Marks = append(info.Marks, markInfoOf(m))
	}
	if err := json.NewEncoder(w).Encode(info); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) marksCheck(w http.ResponseWriter, req *http.Request) {
	errs := s.store.Check()
	if errs == nil {
		errs = []mark.Inconsistency{}
	}
	if err := json.NewEncoder(w).Encode(errs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) markInfo(w http.ResponseWriter, req *http.Request) {
	_, v, err := s.getView(req)
	if err != nil {
		notFound(w, err)
		return
	}
	seqStr := mux.Vars(req)["seq"]
	seq, err := strconv.ParseInt(seqStr, 10, 64)
	if err != nil {
		http.Error(w, "bad seq: "+seqStr, http.StatusBadRequest)
		return
	}

	var found *mark.Mark
	for m := mark.VMarkFirst(v); m != nil; m = mark.VMarkNext(v, m) {
		if int64(m.Seq()) == seq {
			found = m
			break
		}
	}
	if found == nil {
		notFound(w, errors.New("mark seq "+seqStr))
		return
	}
	if err := json.NewEncoder(w).Encode(markInfoOf(found)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gorilla/mux"
)

type likeResponse struct {
	Msg   string `json:"msg"`
	Liked bool   `json:"liked"`
}

func (s *HTTPServer) createPost(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.posts.Create(r.Context(), currentUser(r), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *HTTPServer) findPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.posts.Get(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) userPosts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.posts.ListByUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *HTTPServer) timeline(w http.ResponseWriter, r *http.Request) {
	ps, err := s.posts.Timeline(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *HTTPServer) updatePost(w http.ResponseWriter, r *http.Request) {
	var in services.UpdatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.posts.Update(r.Context(), currentUser(r), mux.Vars(r)["postId"], in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), currentUser(r), mux.Vars(r)["postId"]); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Msg: "Post successfully deleted"})
}

func (s *HTTPServer) toggleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := s.posts.ToggleLike(r.Context(), currentUser(r), mux.Vars(r)["postId"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{Msg: "Toggle like success", Liked: liked})
}

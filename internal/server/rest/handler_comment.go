package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gorilla/mux"
)

func (s *HTTPServer) createComment(w http.ResponseWriter, r *http.Request) {
	var in services.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.comments.Create(r.Context(), currentUser(r), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *HTTPServer) postComments(w http.ResponseWriter, r *http.Request) {
	cs, err := s.comments.ListByPost(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *HTTPServer) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.comments.Delete(r.Context(), currentUser(r), mux.Vars(r)["commentId"]); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Msg: "Comment successfully deleted"})
}

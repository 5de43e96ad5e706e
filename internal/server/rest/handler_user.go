package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gorilla/mux"
)

type followResponse struct {
	Msg       string `json:"msg"`
	Following bool   `json:"following"`
}

type bookmarkResponse struct {
	Msg        string `json:"msg"`
	Bookmarked bool   `json:"bookmarked"`
}

// currentUser returns the id placed in the context by the access token stage.
func currentUser(r *http.Request) string {
	id, _ := UserIDFromContext(r.Context())
	return id
}

func (s *HTTPServer) suggestedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.Suggested(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) friends(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.Friends(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) findUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *HTTPServer) findAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.users.Update(r.Context(), currentUser(r), mux.Vars(r)["userId"], in); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Msg: "Successfully updated the user"})
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), currentUser(r), mux.Vars(r)["userId"]); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Msg: "User successfully deleted"})
}

func (s *HTTPServer) toggleFollow(w http.ResponseWriter, r *http.Request) {
	following, err := s.users.ToggleFollow(r.Context(), currentUser(r), mux.Vars(r)["otherUserId"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, followResponse{Msg: "Toggle follow success", Following: following})
}

func (s *HTTPServer) bookmark(w http.ResponseWriter, r *http.Request) {
	bookmarked, err := s.users.ToggleBookmark(r.Context(), currentUser(r), mux.Vars(r)["postId"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarkResponse{Msg: "Toggle bookmark success", Bookmarked: bookmarked})
}

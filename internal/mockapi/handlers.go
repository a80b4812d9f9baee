package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vango-dev/usershell/pkg/api"
)

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	info, ok := s.User(currentUserID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// putInfo overlays the request fields onto the stored record. The ID
// cannot change.
func (s *Server) putInfo(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	delete(patch, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[currentUserID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	current, err := json.Marshal(a.info)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for k, v := range patch {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var next api.UserInfo
	if err := json.Unmarshal(data, &next); err != nil {
		writeError(w, http.StatusBadRequest, "invalid field: "+err.Error())
		return
	}
	if strings.TrimSpace(next.Username) == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	a.info = next
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) postAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+1<<10)
	file, header, err := r.FormFile(api.AvatarField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing avatar file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(data) > MaxAvatarSize {
		writeError(w, http.StatusRequestEntityTooLarge, "avatar too large")
		return
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	url := "/static/avatars/" + name

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[currentUserID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.avatars[name] = avatar{contentType: http.DetectContentType(data), data: data}
	a.info.Avatar = url
	writeJSON(w, http.StatusOK, api.AvatarResult{URL: url})
}

func (s *Server) serveAvatar(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	img, ok := s.avatars[chi.URLParam(r, "name")]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", img.contentType)
	w.Write(img.data)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req api.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "new password must be at least 6 characters")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[currentUserID(r)]
	var hash []byte
	if ok {
		hash = a.passwordHash
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(req.OldPassword)) != nil {
		writeError(w, http.StatusBadRequest, "old password is incorrect")
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	a.passwordHash = newHash
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), 1)
	pageSize := positiveInt(q.Get("pageSize"), 10)
	keyword := strings.ToLower(strings.TrimSpace(q.Get("keyword")))

	s.mu.Lock()
	var matched []api.UserInfo
	for _, a := range s.sortedAccounts() {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(a.info.Username), keyword) &&
			!strings.Contains(strings.ToLower(a.info.Email), keyword) {
			continue
		}
		matched = append(matched, a.info.Clone())
	}
	s.mu.Unlock()

	list := api.UserList{List: []api.UserInfo{}, Total: len(matched)}
	start := (page - 1) * pageSize
	if start < len(matched) {
		end := min(start+pageSize, len(matched))
		list.List = matched[start:end]
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	info, ok := s.User(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	caller := s.accounts[currentUserID(r)]
	if caller == nil || caller.info.Role != "admin" {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	if _, ok := s.accounts[id]; !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	delete(s.accounts, id)
	for token, owner := range s.tokens {
		if owner == id {
			delete(s.tokens, token)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// positiveInt parses s, returning def for anything below 1.
func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

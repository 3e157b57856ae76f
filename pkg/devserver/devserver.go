// Package devserver is an in-memory stand-in for the production backend. It
// serves the same HTTP surface the client speaks (sessions, CSRF, chunked
// chat replies) with canned Hebrew responses, for demo mode and integration
// tests.
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/yonatanbot/yonatan/pkg/logger"
)

const csrfHeader = "X-CSRFToken"

// startSentinel triggers the canned greeting instead of a turn reply.
const startSentinel = "START_CONVERSATION"

type child struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	AgeRange string `json:"age_range"`
}

type session struct {
	id            string
	questionnaire map[string]any
	children      []child
	parentName    string
	parentGender  string
	turns         int
}

// Server holds the in-memory backend state. All handlers are safe for
// concurrent use.
type Server struct {
	log zerolog.Logger

	// ChunkDelay paces streamed chat replies. Zero means no pacing, which
	// is what tests want.
	ChunkDelay time.Duration

	mu        sync.Mutex
	csrfToken string
	sessions  map[string]*session
}

func New() *Server {
	return &Server{
		log:       logger.Component("devserver"),
		csrfToken: uuid.NewString(),
		sessions:  make(map[string]*session),
	}
}

// Handler returns the routed HTTP surface.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/api/csrf-token", s.handleCsrfToken).Methods("GET")
	router.HandleFunc("/api/init", s.handleInit).Methods("POST")
	router.HandleFunc("/api/questionnaire", s.handleQuestionnaire).Methods("POST")
	router.HandleFunc("/api/chat", s.handleChat).Methods("POST")
	router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/api/reset_session", s.handleReset).Methods("POST")
	router.HandleFunc("/api/children", s.handleChildrenList).Methods("GET")
	router.HandleFunc("/api/children", s.handleChildrenAdd).Methods("POST")
	router.HandleFunc("/api/session", s.handleSaveProfile).Methods("POST")
	return router
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("dev backend listening")
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

// checkCsrf enforces the double-submit token on mutating requests, mirroring
// the production backend's rejection body.
func (s *Server) checkCsrf(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	token := s.csrfToken
	s.mu.Unlock()
	if r.Header.Get(csrfHeader) != token {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "The CSRF token is missing or invalid.",
		})
		return false
	}
	return true
}

func (s *Server) lookupSession(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Server) handleCsrfToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	token := s.csrfToken
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	if !s.checkCsrf(w, r) {
		return
	}

	sess := &session{id: uuid.NewString()}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	token := s.csrfToken
	s.mu.Unlock()

	s.log.Info().Str("session_id", sess.id).Msg("session created")
	s.writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sess.id,
		"csrf_token": token,
		"status":     "new",
	})
}

func (s *Server) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if !s.checkCsrf(w, r) {
		return
	}

	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	id, _ := req["session_id"].(string)
	sess := s.lookupSession(id)
	if sess == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	delete(req, "session_id")
	s.mu.Lock()
	sess.questionnaire = req
	if name, ok := req["child_name"].(string); ok && name != "" {
		gender, _ := req["child_gender"].(string)
		sess.children = append(sess.children, child{
			ID:       len(sess.children) + 1,
			Name:     name,
			Gender:   gender,
			AgeRange: "13-18",
		})
	}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// cannedReplies cycle per session turn, exercising the markup renderer.
var cannedReplies = []string{
	"אני שומע אותך. זה נשמע **מאתגר** באמת.\n\nCARD[מה אפשר לנסות|לבחור רגע רגוע, בלי מסכים, ולשאול שאלה פתוחה אחת.]\n\n[רוצה דוגמה לשאלה כזו?] [זה לא עובד אצלנו]",
	"חשוב לזכור: התנהגות של מתבגרים היא לרוב **תקשורת**, לא התרסה.\n\n[איך מגיבים בזמן אמת?] [ספר לי עוד]",
	"נסו להתחיל מהקשבה בלי פתרונות. לפעמים **נוכחות שקטה** עושה יותר מכל משפט.\n\nCARD[תרגיל קטן|חמש דקות ביום, בלי טלפון, במרחב של הילד. בלי מטרה.]",
}

const cannedGreeting = "שלום! אני **יונתן**, וכאן בשבילך.\n\nCARD[איך זה עובד|אפשר לשאול אותי כל דבר על הקשר עם המתבגר/ת שלך. אני כאן בלי שיפוטיות.]\n\n[הבן שלי לא מדבר איתי] [ריבים על מסכים] [משהו אחר]"

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.checkCsrf(w, r) {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	sess := s.lookupSession(req.SessionID)
	if sess == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	reply := cannedGreeting
	if req.Message != startSentinel {
		s.mu.Lock()
		reply = cannedReplies[sess.turns%len(cannedReplies)]
		sess.turns++
		s.mu.Unlock()
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	s.streamReply(w, reply)
}

// streamReply writes the reply word by word with flushes, so clients see it
// arrive incrementally the way the production model streams.
func (s *Server) streamReply(w http.ResponseWriter, reply string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		fmt.Fprint(w, reply)
		return
	}
	words := strings.SplitAfter(reply, " ")
	for _, word := range words {
		fmt.Fprint(w, word)
		flusher.Flush()
		if s.ChunkDelay > 0 {
			time.Sleep(s.ChunkDelay)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":                    "healthy",
		"database_connected":        true,
		"ai_model_working":          true,
		"fallback_system_available": true,
		"quota_exceeded":            false,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !s.checkCsrf(w, r) {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	s.mu.Lock()
	delete(s.sessions, req.SessionID)
	s.mu.Unlock()
	s.log.Info().Str("session_id", req.SessionID).Msg("session reset")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleChildrenList(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(r.URL.Query().Get("session_id"))
	if sess == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	s.mu.Lock()
	children := append([]child(nil), sess.children...)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"children": children})
}

func (s *Server) handleChildrenAdd(w http.ResponseWriter, r *http.Request) {
	if !s.checkCsrf(w, r) {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Name      string `json:"name"`
		Gender    string `json:"gender"`
		AgeRange  string `json:"age_range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	sess := s.lookupSession(req.SessionID)
	if sess == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if req.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	s.mu.Lock()
	c := child{ID: len(sess.children) + 1, Name: req.Name, Gender: req.Gender, AgeRange: req.AgeRange}
	sess.children = append(sess.children, c)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"child": c})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if !s.checkCsrf(w, r) {
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Name      string `json:"name"`
		Gender    string `json:"gender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	sess := s.lookupSession(req.SessionID)
	if sess == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	s.mu.Lock()
	sess.parentName = req.Name
	sess.parentGender = req.Gender
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.id,
		"name":       req.Name,
		"gender":     req.Gender,
	})
}

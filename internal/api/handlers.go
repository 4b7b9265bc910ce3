package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solacelabs/solace/internal/mood"
	"github.com/solacelabs/solace/internal/profile"
	"github.com/solacelabs/solace/internal/transcript"
)

type conversationRow struct {
	ConversationID   string `json:"conversation_id"`
	AgentName        string `json:"agent_name"`
	Status           string `json:"status"`
	CallDurationSecs int    `json:"call_duration_secs"`
	Processed        bool   `json:"processed"`
}

// listConversations mirrors the upstream conversation list, annotated
// with whether each conversation has already been processed locally.
func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.source.ListConversations(r.Context(), s.agentID, s.pageSize)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	rows := make([]conversationRow, len(summaries))
	for i, sum := range summaries {
		rows[i] = conversationRow{
			ConversationID:   sum.ConversationID,
			AgentName:        sum.AgentName,
			Status:           sum.Status,
			CallDurationSecs: sum.CallDurationSecs,
			Processed:        s.ledger.Contains(sum.ConversationID),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": rows})
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.source.GetConversation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conv.ID,
		"status":          conv.Status,
		"processed":       s.ledger.Contains(conv.ID),
		"turns":           conv.Turns,
		"transcript":      transcript.Format(conv.Turns),
	})
}

func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.source.DeleteConversation(r.Context(), id); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// moodTrends scores the stored profiles oldest first and reports the
// short-term insight and the degradation check. The Postgres index is
// preferred; without one the profile artifacts on disk are scored
// directly.
func (s *Server) moodTrends(w http.ResponseWriter, r *http.Request) {
	var scores []float64

	if s.index != nil {
		rows, err := s.index.RecentProfiles(r.Context(), 50)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		for i := len(rows) - 1; i >= 0; i-- {
			scores = append(scores, rows[i].MoodScore)
		}
	} else {
		paths, err := profile.ListDir(s.profilesDir)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		for _, path := range paths {
			rec, err := profile.Load(path)
			if err != nil {
				continue
			}
			scores = append(scores, mood.Score(rec))
		}
	}

	degraded, assessment := mood.Degradation(scores)
	writeJSON(w, http.StatusOK, map[string]any{
		"scores":      scores,
		"insight":     mood.Insight(scores),
		"degradation": degraded,
		"assessment":  assessment,
	})
}

// republish replays every stored profile into the knowledge base. This is
// the recovery path for uploads that failed during pipeline runs.
func (s *Server) republish(w http.ResponseWriter, r *http.Request) {
	published, failed, err := s.publisher.RepublishAll(r.Context(), s.profilesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"published": published,
		"failed":    failed,
	})
}

// internal/httpserver/routes_wish.go
//
// HTTP routes for the Daily Wish frame.
// Exposes four endpoints under /api:
//   - GET  /api/wish → entry frame ("Tell me" button)
//   - POST /api/wish → reveal today's wish for the caller, with live stats
//   - POST /api/vote → record one like/dislike per identity per day
//   - GET  /api/og   → SVG card for the frame image
//
// Each identity can vote once per day per wish (enforced by the voter set in
// the key-value store). Wish selection is deterministic on (fid, date).

package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/dailywish/go-server/internal/daily"
	"github.com/dailywish/go-server/internal/frame"
	"github.com/dailywish/go-server/internal/render"
)

const (
	contentHTML = "text/html; charset=utf-8"
	contentSVG  = "image/svg+xml"

	noticeRecorded    = "Your vote has been recorded. Come back tomorrow for a new wish!"
	noticeDuplicate   = "You've already voted today. Come back tomorrow!"
	noticeUnavailable = "Votes are not being stored right now."
	noticeFailed      = "We couldn't record your vote. Please try again later."
)

// mountWish registers all /api routes.
func (s *Server) mountWish(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/wish", s.handleEntry)
		r.Post("/wish", s.handleReveal)
		r.Post("/vote", s.handleVote)
		r.Get("/og", s.handleCard)
	})
}

// today returns the current UTC day key.
func (s *Server) today() string { return daily.DateKey(s.now()) }

// pick returns today's wish index and text for id.
func (s *Server) pick(id daily.Identity, day string) (int, string) {
	idx := daily.Index(id, day, s.wishes.Len())
	return idx, s.wishes.At(idx)
}

// stats reads counters for (day, idx). Store failures degrade to zero stats.
func (s *Server) stats(r *http.Request, day string, idx int) daily.Stats {
	st, err := s.votes.Stats(r.Context(), day, idx)
	if err != nil {
		s.metrics.KVErrors.WithLabelValues("stats").Inc()
		hlog.FromRequest(r).Warn().Err(err).Str("date", day).Int("idx", idx).Msg("read vote stats")
		return daily.Percentages(0, 0)
	}
	return st
}

// -----------------------------------------------------------------------------
// GET /api/wish

// handleEntry serves the entry frame.
func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	body, err := s.render.Entry(render.EntryPage{
		Meta: frame.Meta{
			Image:         render.ImageURL(s.baseURL, "", "", false),
			PostURL:       s.baseURL + "/api/wish",
			Buttons:       []frame.Button{{Label: "Tell me"}},
			OGTitle:       "Get your daily wish",
			OGDescription: "Tap the button to reveal a personalized wish for today.",
		},
	})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render entry")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.metrics.Frames.WithLabelValues("entry").Inc()
	writeBody(w, http.StatusOK, contentHTML, body)
}

// -----------------------------------------------------------------------------
// POST /api/wish

// handleReveal shows today's wish for the caller.
// - Anonymous callers get the date-only wish and no vote buttons.
// - Callers who already voted get the wish and stats, without buttons.
// - Everyone else gets Like / Dislike buttons and a signed state token.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	fr := frame.ParseRequest(r)
	day := s.today()
	idx, wish := s.pick(fr.Identity, day)
	st := s.stats(r, day, idx)

	voted, err := s.votes.HasVoted(r.Context(), day, idx, fr.Identity)
	if err != nil {
		s.metrics.KVErrors.WithLabelValues("has_voted").Inc()
		hlog.FromRequest(r).Warn().Err(err).Str("date", day).Int("idx", idx).Str("fid", fr.Identity.String()).Msg("check voter")
		voted = false
	}
	canVote := fr.Identity.Present() && !voted

	meta := frame.Meta{
		Image:         render.ImageURL(s.baseURL, wish, st.Summary(), voted),
		OGTitle:       "Today's Wish",
		OGDescription: wish,
	}
	if canVote {
		meta.PostURL = s.baseURL + "/api/vote"
		meta.Buttons = []frame.Button{{Label: "👍 Like"}, {Label: "👎 Dislike"}}
		token, err := s.state.Sign(frame.State{FID: fr.Identity.String(), Date: day, Index: idx})
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("sign frame state")
		}
		meta.State = token
	}

	page := render.WishPage{
		Meta:     meta,
		Date:     day,
		Wish:     wish,
		Stats:    st,
		SignedIn: fr.Identity.Present(),
	}
	if voted {
		page.Notice = noticeDuplicate
	}
	s.writeWish(w, r, "reveal", page)
}

// -----------------------------------------------------------------------------
// POST /api/vote

// voteTarget resolves which (day, idx) a vote applies to. A verified state
// token issued to the same identity pins the day the wish was shown;
// otherwise the vote goes to today's wish.
func (s *Server) voteTarget(r *http.Request, fr frame.Request) (string, int) {
	if fr.State != "" {
		st, err := s.state.Verify(fr.State)
		switch {
		case err != nil:
			hlog.FromRequest(r).Debug().Err(err).Msg("ignoring frame state")
		case st.FID != fr.Identity.String():
			hlog.FromRequest(r).Warn().Str("fid", fr.Identity.String()).Str("state_fid", st.FID).Msg("frame state issued to another fid")
		case st.Index >= s.wishes.Len():
			hlog.FromRequest(r).Warn().Int("idx", st.Index).Msg("frame state index out of range")
		default:
			return st.Date, st.Index
		}
	}
	day := s.today()
	return day, daily.Index(fr.Identity, day, s.wishes.Len())
}

// handleVote validates and records a vote, then renders the thank-you frame.
func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	fr := frame.ParseRequest(r)
	if !fr.Identity.Present() {
		writeError(w, http.StatusBadRequest, "FID is required")
		return
	}
	choice := fr.Choice()
	if !choice.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid button selection")
		return
	}

	day, idx := s.voteTarget(r, fr)
	outcome, err := s.votes.Record(r.Context(), day, idx, fr.Identity, choice)

	page := render.WishPage{
		Date:     day,
		Wish:     s.wishes.At(idx),
		SignedIn: true,
		Thanks:   err == nil,
	}
	switch {
	case err != nil:
		s.metrics.KVErrors.WithLabelValues("record").Inc()
		s.metrics.Votes.WithLabelValues("error", string(choice)).Inc()
		hlog.FromRequest(r).Error().Err(err).Str("date", day).Int("idx", idx).Str("fid", fr.Identity.String()).Msg("record vote")
		page.Notice = noticeFailed
	case outcome == daily.VoteRecorded:
		page.Notice = noticeRecorded
	case outcome == daily.VoteDuplicate:
		page.Notice = noticeDuplicate
	default:
		page.Notice = noticeUnavailable
	}
	if err == nil {
		s.metrics.Votes.WithLabelValues(string(outcome), string(choice)).Inc()
		hlog.FromRequest(r).Info().Str("date", day).Int("idx", idx).Str("fid", fr.Identity.String()).
			Str("choice", string(choice)).Str("outcome", string(outcome)).Msg("vote")
	}

	page.Stats = s.stats(r, day, idx)
	page.Meta = frame.Meta{
		Image:         render.ImageURL(s.baseURL, page.Wish, page.Stats.Summary(), page.Thanks),
		OGTitle:       "Daily Wish",
		OGDescription: page.Wish,
	}
	s.writeWish(w, r, "vote", page)
}

// writeWish renders a WishPage or falls back to a JSON 500.
func (s *Server) writeWish(w http.ResponseWriter, r *http.Request, route string, page render.WishPage) {
	body, err := s.render.Wish(page)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("route", route).Msg("render wish")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.metrics.Frames.WithLabelValues(route).Inc()
	writeBody(w, http.StatusOK, contentHTML, body)
}

// -----------------------------------------------------------------------------
// GET /api/og

// handleCard draws the SVG card from ?text=, ?stats= and ?voted=.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	card := render.Card{
		Text:  q.Get("text"),
		Stats: q.Get("stats"),
		Voted: truthy(q.Get("voted")),
	}
	body, err := s.render.Card(card)
	if err != nil {
		s.metrics.CardFails.Inc()
		hlog.FromRequest(r).Error().Err(err).Msg("render card")
		writeBody(w, http.StatusOK, contentSVG, []byte(render.FallbackCard))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeBody(w, http.StatusOK, contentSVG, body)
}

// truthy treats any non-empty value other than false/0/no as set.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "no":
		return false
	}
	return true
}

package daily

import "fmt"

// Stats holds like/dislike counters for one wish on one day,
// plus the derived percentages shown to voters.
type Stats struct {
	Likes       int64 `json:"likes"`
	Dislikes    int64 `json:"dislikes"`
	Total       int64 `json:"totalVotes"`
	LikesPct    int64 `json:"likesPct"`
	DislikesPct int64 `json:"dislikesPct"`
}

// Percentages derives vote percentages. Negative counters are clamped to 0.
// With no votes both percentages are 0; otherwise likes are rounded half up
// and dislikes take the remainder so the pair always sums to 100.
func Percentages(likes, dislikes int64) Stats {
	if likes < 0 {
		likes = 0
	}
	if dislikes < 0 {
		dislikes = 0
	}
	s := Stats{Likes: likes, Dislikes: dislikes, Total: likes + dislikes}
	if s.Total == 0 {
		return s
	}
	s.LikesPct = (likes*200 + s.Total) / (2 * s.Total)
	s.DislikesPct = 100 - s.LikesPct
	return s
}

// Summary is the one-line stats text rendered under a wish.
func (s Stats) Summary() string {
	if s.Total == 0 {
		return "Be the first to vote!"
	}
	return fmt.Sprintf("Likes %d%% • Dislikes %d%% • %d votes", s.LikesPct, s.DislikesPct, s.Total)
}

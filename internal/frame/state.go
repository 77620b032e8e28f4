package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidState is returned for frame state that fails verification.
var ErrInvalidState = errors.New("frame: invalid state")

// State is carried from the reveal frame to the vote action so a vote lands
// on the wish that was actually shown, even across a UTC midnight.
type State struct {
	FID   string
	Date  string
	Index int
}

// StateSigner issues and verifies HS256 tokens for fc:frame:state.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner returns a signer; ttl bounds how long a revealed frame may
// still be voted on.
func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the signer's time source.
func (s *StateSigner) WithClock(now func() time.Time) *StateSigner {
	s.now = now
	return s
}

// Sign encodes st as a compact JWT.
func (s *StateSigner) Sign(st State) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"fid":  st.FID,
		"date": st.Date,
		"idx":  st.Index,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	})
	ss, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("frame: sign state: %w", err)
	}
	return ss, nil
}

// Verify checks signature and expiry and decodes the state.
func (s *StateSigner) Verify(token string) (State, error) {
	if token == "" {
		return State{}, ErrInvalidState
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	fid, _ := claims["fid"].(string)
	date, _ := claims["date"].(string)
	idx, ok := claims["idx"].(float64)
	if date == "" || !ok || idx < 0 {
		return State{}, fmt.Errorf("%w: missing claims", ErrInvalidState)
	}
	return State{FID: fid, Date: date, Index: int(idx)}, nil
}

package registry

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/gudapepratik/tictactoe-online/internal/apperror"
)

const codeLength = 6

// codeCharset leaves out 0/O/1/I/l so codes stay unambiguous when read
// aloud or typed from a screenshot.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

const maxCodeAttempts = 10

var ErrCodeSpaceExhausted = errors.New("could not generate a unique join code")

type codeEntry struct {
	matchID     string
	claimant    string
	claimExpiry time.Time
}

func (that *codeEntry) claimLive(now time.Time) bool {
	return that.claimant != "" && now.Before(that.claimExpiry)
}

// CodeRegistry maps short human-shareable codes to pending matches. A
// time-boxed exclusive claim serializes the check-then-join window so two
// concurrent joiners cannot both see the same open slot and race for it.
type CodeRegistry struct {
	mu       sync.Mutex
	codes    map[string]*codeEntry
	claimTTL time.Duration
}

func NewCodeRegistry(claimTTL time.Duration) *CodeRegistry {
	return &CodeRegistry{
		codes:    make(map[string]*codeEntry),
		claimTTL: claimTTL,
	}
}

// Create generates a code unique among live codes and maps it to matchID.
// The code itself never expires; only claims on it do.
func (that *CodeRegistry) Create(matchID string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}

		if _, exists := that.codes[code]; exists {
			continue
		}

		that.codes[code] = &codeEntry{matchID: matchID}

		return code, nil
	}

	return "", ErrCodeSpaceExhausted
}

// Claim resolves code and grants claimant an exclusive lease until the
// returned expiry. A lease held by the same claimant is refreshed; a live
// lease held by anyone else fails with ErrCodeClaimed.
func (that *CodeRegistry) Claim(code, claimant string) (string, time.Time, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.codes[code]
	if !ok {
		return "", time.Time{}, apperror.ErrCodeNotFound
	}

	now := time.Now()
	if entry.claimLive(now) && entry.claimant != claimant {
		return "", time.Time{}, apperror.ErrCodeClaimed
	}

	entry.claimant = claimant
	entry.claimExpiry = now.Add(that.claimTTL)

	return entry.matchID, entry.claimExpiry, nil
}

// ReleaseClaim drops claimant's lease, for when a post-claim validation
// step rejects the join. A lease held by someone else is left alone.
func (that *CodeRegistry) ReleaseClaim(code, claimant string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.codes[code]
	if !ok || entry.claimant != claimant {
		return
	}

	entry.claimant = ""
	entry.claimExpiry = time.Time{}
}

// Resolve returns the match a code points at without touching its claim.
func (that *CodeRegistry) Resolve(code string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.codes[code]
	if !ok {
		return "", apperror.ErrCodeNotFound
	}

	return entry.matchID, nil
}

// Holder reports who currently holds a live claim on code, if anyone.
func (that *CodeRegistry) Holder(code string) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.codes[code]
	if !ok || !entry.claimLive(time.Now()) {
		return "", false
	}

	return entry.claimant, true
}

// Consume removes the code mapping, making codes single-use: a successful
// join deletes the code.
func (that *CodeRegistry) Consume(code string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.codes, code)
}

// DropMatch removes every code pointing at matchID, for janitor eviction.
func (that *CodeRegistry) DropMatch(matchID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for code, entry := range that.codes {
		if entry.matchID == matchID {
			delete(that.codes, code)
		}
	}
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		buf[i] = codeCharset[n.Int64()]
	}

	return string(buf), nil
}

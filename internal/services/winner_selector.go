package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoParticipants is returned when winner selection runs against an empty
// participant list.
var ErrNoParticipants = errors.New("no confirmed participants found")

// NewRandomSeed draws a fresh 256-bit seed from a cryptographically secure
// source and returns it hex-encoded. A seed is generated once per completion,
// after all bets are in, so no participant can predict or bias placement.
func NewRandomSeed() (string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to generate random seed: %w", err)
	}
	return hex.EncodeToString(seed), nil
}

// SelectWinner maps an ordered participant list and a random seed to a winner
// index: sha256(seed || raffleID) interpreted as an unsigned big integer,
// modulo the participant count. Deterministic given its inputs, so anyone
// holding the published seed and the placement order can replay the draw.
func SelectWinner(participants []*models.Participation, randomSeed string, raffleID primitive.ObjectID) (int, error) {
	if len(participants) == 0 {
		return 0, ErrNoParticipants
	}

	digest := sha256.Sum256([]byte(randomSeed + raffleID.Hex()))
	n := new(big.Int).SetBytes(digest[:])
	index := new(big.Int).Mod(n, big.NewInt(int64(len(participants))))
	return int(index.Int64()), nil
}

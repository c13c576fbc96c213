package models

import "errors"

// Expected domain outcomes. These are valid results the caller branches on,
// not failures of the engine; handlers map them to 4xx responses.
var (
	// ErrAlreadyParticipated is returned when a user already holds a
	// participation in the raffle.
	ErrAlreadyParticipated = errors.New("user already participated in this raffle")

	// ErrRaffleFull is returned when the raffle has reached its configured
	// participant capacity.
	ErrRaffleFull = errors.New("raffle is full")

	// ErrRaffleNotActive is returned by admission when the raffle is no
	// longer active.
	ErrRaffleNotActive = errors.New("raffle is not active")

	// ErrRaffleTerminal is the exactly-once guard: completion or
	// cancellation found the raffle already in a terminal state.
	ErrRaffleTerminal = errors.New("raffle is already completed or cancelled")

	// ErrRaffleNotFound is returned when no raffle exists for the given ID.
	ErrRaffleNotFound = errors.New("raffle not found")
)

// Configuration errors. Fatal to raffle creation; they must surface to an
// operator-visible alert rather than be papered over with defaults.
var (
	// ErrNoActiveSettings is returned when no active settings row exists.
	ErrNoActiveSettings = errors.New("no active raffle settings found")

	// ErrInvalidSettings is returned when a settings row fails validation.
	ErrInvalidSettings = errors.New("invalid raffle settings")
)

// ErrActiveRaffleExists is returned by raffle creation when the unique
// active-raffle constraint rejects the insert: a concurrent caller created
// the raffle first and the loser should re-read and use it.
var ErrActiveRaffleExists = errors.New("an active raffle already exists")

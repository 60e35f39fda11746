// Package memory holds the in-process registries behind the relay
// service: one room store per variant plus the file-transfer ticket
// store. Nothing here survives a restart.
package memory

import (
	"errors"
	"math/rand"
	"strconv"
)

var (
	ErrRoomNotFound   = errors.New("room is not found")
	ErrTicketNotFound = errors.New("ticket is not found")
)

// NewRoomCode returns a 4-digit numeric code. Codes are generated
// independently per variant and are not checked for collisions, matching
// the room-id contract.
func NewRoomCode() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}

package multiplayer

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomcoolpxl/tank-wars/internal/lockstep"
)

// Wire names for each message type.
const (
	typeShot           = "shot"
	typeHash           = "hash"
	typeSync           = "sync"
	typeAbort          = "abort"
	typeMatchInit      = "match_init"
	typePlayAgainReady = "play_again_ready"
	typePlayAgainStart = "play_again_start"
)

// Envelope is the framing of every message on the wire.
type Envelope struct {
	Type string             `msgpack:"t"`
	Body msgpack.RawMessage `msgpack:"b"`
}

// Encode serializes a lockstep message.
func Encode(msg lockstep.Message) ([]byte, error) {
	var name string
	switch msg.(type) {
	case lockstep.Shot:
		name = typeShot
	case lockstep.Hash:
		name = typeHash
	case lockstep.Sync:
		name = typeSync
	case lockstep.Abort:
		name = typeAbort
	case lockstep.MatchInit:
		name = typeMatchInit
	case lockstep.PlayAgainReady:
		name = typePlayAgainReady
	case lockstep.PlayAgainStart:
		name = typePlayAgainStart
	default:
		return nil, fmt.Errorf("multiplayer: cannot encode %T", msg)
	}

	body, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: encode %s: %w", name, err)
	}
	return msgpack.Marshal(&Envelope{Type: name, Body: body})
}

// Decode parses a message produced by Encode.
func Decode(data []byte) (lockstep.Message, error) {
	var env Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("multiplayer: decode envelope: %w", err)
	}

	switch env.Type {
	case typeShot:
		return decodeBody[lockstep.Shot](env)
	case typeHash:
		return decodeBody[lockstep.Hash](env)
	case typeSync:
		return decodeBody[lockstep.Sync](env)
	case typeAbort:
		return decodeBody[lockstep.Abort](env)
	case typeMatchInit:
		return decodeBody[lockstep.MatchInit](env)
	case typePlayAgainReady:
		return decodeBody[lockstep.PlayAgainReady](env)
	case typePlayAgainStart:
		return decodeBody[lockstep.PlayAgainStart](env)
	default:
		return nil, fmt.Errorf("multiplayer: unknown message type %q", env.Type)
	}
}

func decodeBody[T lockstep.Message](env Envelope) (lockstep.Message, error) {
	var msg T
	if err := msgpack.Unmarshal(env.Body, &msg); err != nil {
		return nil, fmt.Errorf("multiplayer: decode %s: %w", env.Type, err)
	}
	return msg, nil
}

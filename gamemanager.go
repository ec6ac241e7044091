// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"net/url"
	"sync"

	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-gameshim/internal/jsnum"
)

const (
	// GameManagerEventType is the type of the window event dispatched by
	// [GameManager.TriggerEvent].
	GameManagerEventType = `gameManagerEvent`

	// GameReadyEvent is triggered by [GameManager.Initialize].
	GameReadyEvent = `gameReady`

	// DefaultUsername is used when the page has no user_name parameter.
	DefaultUsername = `Player`

	queryUsername = `user_name`
	queryBalance  = `balance`
)

// GameState is the coarse lifecycle state of a [GameManager].
type GameState string

const (
	GameStateLoading GameState = `loading`
	GameStateReady   GameState = `ready`
)

type (
	// PlayerData is the player identity, as provided by the page.
	PlayerData struct {
		Username string  `json:"username"`
		Balance  float64 `json:"balance"`
	}

	// GameManagerEventDetail is the detail of every [GameManagerEventType]
	// event.
	GameManagerEventDetail struct {
		Data  *GameManager `json:"data"`
		Event string       `json:"event"`
	}

	// EventDispatcher dispatches window events, e.g. *eventloop.EventTarget.
	EventDispatcher interface {
		DispatchEvent(event *eventloop.Event) bool
	}

	// GameManager is a local stand-in for the runtime's own manager object,
	// satisfying the minimal initialization contract the rest of the page
	// depends on.
	GameManager struct {
		dispatcher EventDispatcher
		logger     *Logger
		state      GameState
		player     PlayerData
		mu         sync.Mutex
	}
)

// ParsePlayerData extracts the player identity from page query parameters.
// A missing or malformed balance is 0, it never fails.
func ParsePlayerData(query url.Values) PlayerData {
	data := PlayerData{
		Username: query.Get(queryUsername),
		Balance:  jsnum.OrZero(jsnum.ParseFloat(query.Get(queryBalance))),
	}
	if data.Username == `` {
		data.Username = DefaultUsername
	}
	return data
}

// NewGameManager returns a [GameManager] in the loading state.
// The dispatcher may be nil, in which case events are dropped.
func NewGameManager(player PlayerData, dispatcher EventDispatcher, logger *Logger) *GameManager {
	return &GameManager{
		dispatcher: dispatcher,
		logger:     logger,
		state:      GameStateLoading,
		player:     player,
	}
}

// IsInitialized is always true, the fallback is usable on construction.
func (x *GameManager) IsInitialized() bool { return true }

// State returns the current lifecycle state.
func (x *GameManager) State() GameState {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state
}

// PlayerData returns the player identity.
func (x *GameManager) PlayerData() PlayerData {
	return x.player
}

// Initialize marks the manager as ready, and triggers [GameReadyEvent].
func (x *GameManager) Initialize() {
	x.mu.Lock()
	x.state = GameStateReady
	x.mu.Unlock()
	x.logger.Info().
		Str(`username`, x.player.Username).
		Log(`fallback game manager initialized`)
	x.TriggerEvent(GameReadyEvent)
}

// TriggerEvent dispatches a [GameManagerEventType] event on the window,
// carrying the event name and the manager itself.
func (x *GameManager) TriggerEvent(name string) {
	if x.dispatcher == nil {
		return
	}
	event := eventloop.NewCustomEvent(GameManagerEventType, GameManagerEventDetail{
		Event: name,
		Data:  x,
	})
	x.dispatcher.DispatchEvent(event.EventPtr())
}

package tui

type state int

const (
	historyState state = iota
	openState
	playerState
	errorState
)

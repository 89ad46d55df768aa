// Package display projects the live document into what the audience
// screen shows. It never reads anything but the document and never writes.
package display

import (
	"lie-hard-be/internal/service/game"
)

const (
	SCREEN_LOBBY  = "Lobby"
	SCREEN_ROUND1 = "Round1"
	SCREEN_ROUND2 = "Round2"
	SCREEN_ROUND3 = "Round3"
	SCREEN_ROUND4 = "Round4"
	SCREEN_WINNER = "Winner"
)

const (
	VERDICT_TRUTH = "TRUTH"
	VERDICT_LIE   = "LIE"
)

// Screen is one of the per-round views. Kind names the variant on the
// wire.
type Screen interface {
	Kind() string
}

type Frame struct {
	Round  game.Round `json:"round"`
	Kind   string     `json:"kind"`
	Intro  bool       `json:"intro"`
	Screen Screen     `json:"screen"`

	Scoreboard  []ScoreRow    `json:"scoreboard,omitempty"`
	Leaderboard []game.Player `json:"leaderboard,omitempty"`
}

type ScoreRow struct {
	Player      game.Player `json:"player"`
	Storyteller bool        `json:"storyteller"`
	// Round 1 guess, empty for the storyteller.
	Guess game.Guess `json:"guess,omitempty"`
}

type LobbyScreen struct {
	Players []game.Player `json:"players"`
}

func (LobbyScreen) Kind() string { return SCREEN_LOBBY }

type Round1Screen struct {
	Waiting     bool         `json:"waiting"`
	Missing     bool         `json:"missing"`
	Storyteller *game.Player `json:"storyteller,omitempty"`
	Statement   string       `json:"statement,omitempty"`
	VotingOpen  bool         `json:"votingOpen"`
	Verdict     string       `json:"verdict,omitempty"`
}

func (Round1Screen) Kind() string { return SCREEN_ROUND1 }

type Estimate struct {
	Player game.Player `json:"player"`
	Value  *float64    `json:"value"`
	Winner bool        `json:"winner"`
}

type Round2Screen struct {
	Part        string       `json:"part"`
	Statements  []string     `json:"statements"`
	Estimates   []Estimate   `json:"estimates"`
	ActualValue *float64     `json:"actualValue,omitempty"`
	Winner      *game.Player `json:"winner,omitempty"`
}

func (Round2Screen) Kind() string { return SCREEN_ROUND2 }

type Choice struct {
	Number    int    `json:"number"`
	Statement string `json:"statement"`
	// Set only once the result is shown.
	IsTrue *bool `json:"isTrue,omitempty"`
}

type Round3Screen struct {
	Waiting     bool          `json:"waiting"`
	Storyteller *game.Player  `json:"storyteller,omitempty"`
	Choices     []Choice      `json:"choices"`
	VotingOpen  bool          `json:"votingOpen"`
	ShowResult  bool          `json:"showResult"`
	Remaining   []game.Player `json:"remaining"`
}

func (Round3Screen) Kind() string { return SCREEN_ROUND3 }

type Round4Screen struct {
	ObjectTitle string       `json:"objectTitle"`
	ObjectImage string       `json:"objectImage"`
	Winner      *game.Player `json:"winner,omitempty"`
	RealOwner   *game.Player `json:"realOwner,omitempty"`
}

func (Round4Screen) Kind() string { return SCREEN_ROUND4 }

type WinnerScreen struct {
	Winners []game.Player `json:"winners"`
}

func (WinnerScreen) Kind() string { return SCREEN_WINNER }

// Project renders gs. It is a pure function of the document.
func Project(gs game.GameState) Frame {
	var screen Screen

	switch gs.CurrentRound {
	case game.ROUND_R1:
		screen = projectRound1(gs)
	case game.ROUND_R2:
		screen = projectRound2(gs)
	case game.ROUND_R3:
		screen = projectRound3(gs)
	case game.ROUND_R4:
		screen = projectRound4(gs)
	case game.ROUND_WINNER:
		screen = WinnerScreen{Winners: game.Leaders(gs.Players)}
	default:
		screen = LobbyScreen{Players: gs.Players}
	}

	frame := Frame{
		Round:  gs.CurrentRound,
		Kind:   screen.Kind(),
		Intro:  gs.CurrentRound.Playable() && !gs.RoundStarted,
		Screen: screen,
	}

	if gs.ShowScoreboard {
		frame.Scoreboard = scoreboard(gs)
	}

	if gs.ShowLeaderboardModal {
		frame.Leaderboard = game.Standings(gs.Players)
	}

	return frame
}

func playerRef(gs game.GameState, id *int) *game.Player {
	if id == nil {
		return nil
	}

	p, ok := gs.Player(*id)
	if !ok {
		return nil
	}

	return &p
}

func projectRound1(gs game.GameState) Round1Screen {
	r1 := gs.Round1

	if r1.CurrentStorytellerID == nil {
		return Round1Screen{Waiting: true}
	}

	storyteller := playerRef(gs, r1.CurrentStorytellerID)
	stmt, ok := r1.StatementFor(*r1.CurrentStorytellerID)
	if storyteller == nil || !ok {
		return Round1Screen{Missing: true}
	}

	screen := Round1Screen{
		Storyteller: storyteller,
		Statement:   stmt.Statement,
		VotingOpen:  r1.VotingOpen,
	}

	if r1.ShowResult {
		screen.Verdict = VERDICT_LIE
		if stmt.IsTruth {
			screen.Verdict = VERDICT_TRUTH
		}
	}

	return screen
}

func projectRound2(gs game.GameState) Round2Screen {
	r2 := gs.Round2

	statements := make([]string, 0, len(r2.RevealOrder))
	for _, i := range r2.RevealOrder {
		if i >= 0 && i < len(r2.Statements) {
			statements = append(statements, r2.Statements[i])
		}
	}

	estimates := make([]Estimate, 0, len(gs.Players))
	for _, p := range gs.Players {
		estimates = append(estimates, Estimate{
			Player: p,
			Value:  r2.Guesses[p.ID],
			Winner: r2.WinnerID != nil && *r2.WinnerID == p.ID,
		})
	}

	return Round2Screen{
		Part:        r2.Part,
		Statements:  statements,
		Estimates:   estimates,
		ActualValue: r2.ActualValue,
		Winner:      playerRef(gs, r2.WinnerID),
	}
}

func projectRound3(gs game.GameState) Round3Screen {
	r3 := gs.Round3

	remaining := make([]game.Player, 0, len(gs.Players))
	for _, p := range gs.Players {
		if _, hasSet := r3.SetFor(p.ID); hasSet && !r3.Completed(p.ID) {
			remaining = append(remaining, p)
		}
	}

	storyteller := playerRef(gs, r3.CurrentStorytellerID)
	if storyteller == nil {
		return Round3Screen{Waiting: true, Choices: []Choice{}, Remaining: remaining}
	}

	choices := make([]Choice, 0, len(r3.CurrentStatements))
	for i, s := range r3.CurrentStatements {
		choice := Choice{Number: i + 1, Statement: s}
		if r3.ShowResult && r3.TrueIndex != nil {
			isTrue := i == *r3.TrueIndex
			choice.IsTrue = &isTrue
		}
		choices = append(choices, choice)
	}

	return Round3Screen{
		Storyteller: storyteller,
		Choices:     choices,
		VotingOpen:  r3.VotingOpen,
		ShowResult:  r3.ShowResult,
		Remaining:   remaining,
	}
}

func projectRound4(gs game.GameState) Round4Screen {
	r4 := gs.Round4

	screen := Round4Screen{
		ObjectTitle: r4.ObjectTitle,
		ObjectImage: r4.ObjectImage,
		Winner:      playerRef(gs, r4.WinnerID),
	}

	if r4.ShowRealOwner {
		owner := r4.RealOwnerID
		screen.RealOwner = playerRef(gs, &owner)
	}

	return screen
}

func scoreboard(gs game.GameState) []ScoreRow {
	storytellerID := gs.Round1.CurrentStorytellerID

	rows := make([]ScoreRow, 0, len(gs.Players))
	for _, p := range gs.Players {
		row := ScoreRow{Player: p}

		if storytellerID != nil && *storytellerID == p.ID {
			row.Storyteller = true
		} else {
			row.Guess = gs.Round1.Guesses[p.ID]
		}

		rows = append(rows, row)
	}

	return rows
}

package game

// Content is the preloaded material of a show. It survives a reset to the
// lobby and is replaced wholesale by an import.
type Content struct {
	Round1Statements []Round1Statement `json:"round1Statements"`
	Round2Statements []string          `json:"round2Statements"`
	Round3Sets       []Round3Set       `json:"round3Sets"`
	Round4           Round4Object      `json:"round4"`
}

type Round4Object struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	RealOwnerID int    `json:"realOwnerId"`
}

// DefaultRoster is used when no roster is configured.
func DefaultRoster() []Player {
	return []Player{
		{ID: 1, Name: "Baneet", Photo: "/player1.png"},
		{ID: 2, Name: "Gaurav", Photo: "/player2.png"},
		{ID: 3, Name: "Player 3", Photo: "/player3.png"},
		{ID: 4, Name: "Player 4", Photo: "/player4.png"},
	}
}

func DefaultRound4() Round4Object {
	return Round4Object{
		Title:       "A Well-Loved Stuffed Bear",
		Image:       "/bear.png",
		RealOwnerID: 2,
	}
}

// NewGameState builds the canonical initial document: lobby, every score
// zero, every per-round field cleared, the given content preloaded.
func NewGameState(roster []Player, content Content) GameState {
	players := make([]Player, len(roster))
	r1Guesses := make(map[int]Guess, len(roster))
	r2Guesses := make(map[int]*float64, len(roster))
	r3Guesses := make(map[int]*int, len(roster))

	for i, p := range roster {
		players[i] = Player{ID: p.ID, Name: p.Name, Photo: p.Photo}
		r1Guesses[p.ID] = GUESS_UNSET
		r2Guesses[p.ID] = nil
		r3Guesses[p.ID] = nil
	}

	r1Statements := append(make([]Round1Statement, 0, len(content.Round1Statements)), content.Round1Statements...)
	r2Statements := append(make([]string, 0, len(content.Round2Statements)), content.Round2Statements...)

	r3Sets := make([]Round3Set, 0, len(content.Round3Sets))
	for _, set := range content.Round3Sets {
		r3Sets = append(r3Sets, Round3Set{
			PlayerID:   set.PlayerID,
			Statements: append([]string(nil), set.Statements...),
			TrueIndex:  set.TrueIndex,
		})
	}

	return GameState{
		CurrentRound:         ROUND_LOBBY,
		RoundStarted:         false,
		ShowScoreboard:       true,
		ShowLeaderboardModal: false,
		Players:              players,
		Round1: Round1State{
			Statements: r1Statements,
			Guesses:    r1Guesses,
		},
		Round2: Round2State{
			Statements:         r2Statements,
			RevealedStatements: make([]bool, len(r2Statements)),
			RevealOrder:        []int{},
			Part:               PART_STATEMENTS,
			Guesses:            r2Guesses,
		},
		Round3: Round3State{
			Sets:                  r3Sets,
			CurrentStatements:     []string{},
			NonPlayerGuesses:      r3Guesses,
			CompletedStorytellers: []int{},
		},
		Round4: Round4State{
			ObjectTitle: content.Round4.Title,
			ObjectImage: content.Round4.Image,
			RealOwnerID: content.Round4.RealOwnerID,
		},
	}
}

// Content extracts the preloaded material from a live document.
func (gs *GameState) Content() Content {
	return Content{
		Round1Statements: gs.Round1.Statements,
		Round2Statements: gs.Round2.Statements,
		Round3Sets:       gs.Round3.Sets,
		Round4: Round4Object{
			Title:       gs.Round4.ObjectTitle,
			Image:       gs.Round4.ObjectImage,
			RealOwnerID: gs.Round4.RealOwnerID,
		},
	}
}

// Roster returns the players with their scores cleared.
func (gs *GameState) Roster() []Player {
	roster := make([]Player, len(gs.Players))
	for i, p := range gs.Players {
		roster[i] = Player{ID: p.ID, Name: p.Name, Photo: p.Photo}
	}

	return roster
}

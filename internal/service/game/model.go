package game

// The show runs through six top-level phases:
// 1. Lobby: players are introduced, nothing is scored
// 2. R1 (Lie Hard): a storyteller reads one statement, everyone guesses TRUE or LIE
// 3. R2 (Statement + Estimate): five statements are revealed, players estimate a number
// 4. R3 (Two Truths & a Lie): a storyteller reads three statements, others pick the true one
// 5. R4 (Object Owner): the operator awards the player who identified the owner
// 6. Winner: the final standings
type Round string

const (
	ROUND_LOBBY  Round = "LOBBY"
	ROUND_R1     Round = "R1"
	ROUND_R2     Round = "R2"
	ROUND_R3     Round = "R3"
	ROUND_R4     Round = "R4"
	ROUND_WINNER Round = "WINNER"
)

var roundOrder = []Round{ROUND_LOBBY, ROUND_R1, ROUND_R2, ROUND_R3, ROUND_R4, ROUND_WINNER}

func (r Round) Valid() bool {
	for _, known := range roundOrder {
		if r == known {
			return true
		}
	}

	return false
}

// Playable reports whether the round has round content (R1..R4).
func (r Round) Playable() bool {
	switch r {
	case ROUND_R1, ROUND_R2, ROUND_R3, ROUND_R4:
		return true
	default:
		return false
	}
}

// Next returns the successor in the canonical order.
func (r Round) Next() (Round, bool) {
	for i, known := range roundOrder {
		if r == known && i+1 < len(roundOrder) {
			return roundOrder[i+1], true
		}
	}

	return "", false
}

type Guess string

const (
	GUESS_UNSET Guess = ""
	GUESS_TRUE  Guess = "TRUE"
	GUESS_LIE   Guess = "LIE"
)

func (g Guess) Valid() bool {
	return g == GUESS_UNSET || g == GUESS_TRUE || g == GUESS_LIE
}

const (
	PART_STATEMENTS = "STATEMENTS"
	PART_GUESSING   = "GUESSING"
)

type Player struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Photo string `json:"photo"`
}

type Round1Statement struct {
	PlayerID  int    `json:"playerId"`
	Statement string `json:"statement"`
	IsTruth   bool   `json:"isTruth"`
}

type Round1State struct {
	Statements           []Round1Statement `json:"statements"`
	CurrentStorytellerID *int              `json:"currentStorytellerId"`
	Guesses              map[int]Guess     `json:"guesses"`
	VotingOpen           bool              `json:"votingOpen"`
	ShowResult           bool              `json:"showResult"`
}

type Round2State struct {
	Statements         []string         `json:"statements"`
	RevealedStatements []bool           `json:"revealedStatements"`
	RevealOrder        []int            `json:"revealOrder"`
	Part               string           `json:"part"`
	Guesses            map[int]*float64 `json:"guesses"`
	ActualValue        *float64         `json:"actualValue"`
	WinnerID           *int             `json:"winnerId"`
}

type Round3Set struct {
	PlayerID   int      `json:"playerId"`
	Statements []string `json:"statements"`
	TrueIndex  int      `json:"trueIndex"`
}

type Round3State struct {
	Sets                  []Round3Set  `json:"sets"`
	CurrentStorytellerID  *int         `json:"currentStorytellerId"`
	CurrentStatements     []string     `json:"currentStatements"`
	TrueIndex             *int         `json:"trueIndex"`
	NonPlayerGuesses      map[int]*int `json:"nonPlayerGuesses"`
	VotingOpen            bool         `json:"votingOpen"`
	ShowResult            bool         `json:"showResult"`
	CompletedStorytellers []int        `json:"completedStorytellers"`
}

type Round4State struct {
	ObjectTitle   string `json:"objectTitle"`
	ObjectImage   string `json:"objectImage"`
	RealOwnerID   int    `json:"realOwnerId"`
	WinnerID      *int   `json:"winnerId"`
	ShowRealOwner bool   `json:"showRealOwner"`
}

// GameState is the single shared document read by the display and
// mutated by the operator.
type GameState struct {
	CurrentRound         Round       `json:"currentRound"`
	RoundStarted         bool        `json:"roundStarted"`
	ShowScoreboard       bool        `json:"showScoreboard"`
	ShowLeaderboardModal bool        `json:"showLeaderboardModal"`
	Players              []Player    `json:"players"`
	Round1               Round1State `json:"round1"`
	Round2               Round2State `json:"round2"`
	Round3               Round3State `json:"round3"`
	Round4               Round4State `json:"round4"`
}

func (gs *GameState) Player(id int) (Player, bool) {
	for _, p := range gs.Players {
		if p.ID == id {
			return p, true
		}
	}

	return Player{}, false
}

func (gs *GameState) HasPlayer(id int) bool {
	_, ok := gs.Player(id)
	return ok
}

// StatementFor finds the round 1 statement owned by the storyteller.
func (r1 *Round1State) StatementFor(playerID int) (Round1Statement, bool) {
	for _, s := range r1.Statements {
		if s.PlayerID == playerID {
			return s, true
		}
	}

	return Round1Statement{}, false
}

func (r3 *Round3State) SetFor(playerID int) (Round3Set, bool) {
	for _, s := range r3.Sets {
		if s.PlayerID == playerID {
			return s, true
		}
	}

	return Round3Set{}, false
}

func (r3 *Round3State) Completed(playerID int) bool {
	for _, id := range r3.CompletedStorytellers {
		if id == playerID {
			return true
		}
	}

	return false
}

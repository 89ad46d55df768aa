package game

import (
	"math"
	"sort"
)

const (
	ROUND1_POINTS = 1
	ROUND2_POINTS = 4
	ROUND3_POINTS = 3
	ROUND4_POINTS = 8
)

// Deltas maps a player ID to the points it gains. Players that gain
// nothing are absent.
type Deltas map[int]int

// CorrectGuess is the answer that matches the statement's truth.
func CorrectGuess(isTruth bool) Guess {
	if isTruth {
		return GUESS_TRUE
	}

	return GUESS_LIE
}

// ScoreRound1 awards every non-storyteller whose guess matches the
// statement. The storyteller's own guess never counts.
func ScoreRound1(players []Player, storytellerID int, guesses map[int]Guess, isTruth bool) Deltas {
	correct := CorrectGuess(isTruth)
	deltas := make(Deltas)

	for _, p := range players {
		if p.ID == storytellerID {
			continue
		}

		if guesses[p.ID] == correct {
			deltas[p.ID] += ROUND1_POINTS
		}
	}

	return deltas
}

// Round2Winner picks the player whose guess is closest to the actual value.
// Ties go to the earliest player in roster order. Players with no guess
// are skipped.
func Round2Winner(players []Player, guesses map[int]*float64, actual float64) (int, bool) {
	winnerID := 0
	found := false
	minDiff := math.Inf(1)

	for _, p := range players {
		g := guesses[p.ID]
		if g == nil {
			continue
		}

		diff := math.Abs(*g - actual)
		if diff < minDiff {
			minDiff = diff
			winnerID = p.ID
			found = true
		}
	}

	return winnerID, found
}

// ScoreRound3 gives every non-storyteller who picked the true statement
// three points. When nobody did, the storyteller gets three points
// instead.
func ScoreRound3(players []Player, storytellerID int, guesses map[int]*int, trueIndex int) Deltas {
	deltas := make(Deltas)

	for _, p := range players {
		if p.ID == storytellerID {
			continue
		}

		if g := guesses[p.ID]; g != nil && *g == trueIndex {
			deltas[p.ID] += ROUND3_POINTS
		}
	}

	if len(deltas) == 0 {
		deltas[storytellerID] = ROUND3_POINTS
	}

	return deltas
}

func Award(playerID, points int) Deltas {
	return Deltas{playerID: points}
}

// ApplyDeltas returns a copy of players with the deltas added. Order is
// preserved.
func ApplyDeltas(players []Player, deltas Deltas) []Player {
	updated := make([]Player, len(players))
	for i, p := range players {
		p.Score += deltas[p.ID]
		updated[i] = p
	}

	return updated
}

// Leaders returns every player sharing the highest score, in roster order.
func Leaders(players []Player) []Player {
	if len(players) == 0 {
		return nil
	}

	best := players[0].Score
	for _, p := range players[1:] {
		if p.Score > best {
			best = p.Score
		}
	}

	leaders := make([]Player, 0, 1)
	for _, p := range players {
		if p.Score == best {
			leaders = append(leaders, p)
		}
	}

	return leaders
}

// Standings sorts players by score, highest first. Ties keep roster order.
func Standings(players []Player) []Player {
	sorted := append([]Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	return sorted
}

// Package csvimport turns the operator's spreadsheet exports into show
// content. Columns are matched by header name, so their order does not
// matter.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lie-hard-be/internal/service/game"
)

var (
	ErrInvalidImport = errors.New("invalid import")
	ErrMissingFile   = errors.New("missing import file")
)

const round2StatementCount = 5

// Files holds one reader per round. Round2 may be nil.
type Files struct {
	Round1 io.Reader
	Round2 io.Reader
	Round3 io.Reader
}

// Parse reads every file and fails as a whole on the first problem.
func Parse(files Files) (game.Content, error) {
	if files.Round1 == nil {
		return game.Content{}, fmt.Errorf("%w: round 1", ErrMissingFile)
	}
	if files.Round3 == nil {
		return game.Content{}, fmt.Errorf("%w: round 3", ErrMissingFile)
	}

	r1, err := ParseRound1(files.Round1)
	if err != nil {
		return game.Content{}, err
	}

	var r2 []string
	if files.Round2 != nil {
		r2, err = ParseRound2(files.Round2)
		if err != nil {
			return game.Content{}, err
		}
	}

	r3, err := ParseRound3(files.Round3)
	if err != nil {
		return game.Content{}, err
	}

	return game.Content{
		Round1Statements: r1,
		Round2Statements: r2,
		Round3Sets:       r3,
	}, nil
}

// ParseRound1 expects playerId, statement and isTruth. isTruth is true
// only for the literal TRUE in any case.
func ParseRound1(r io.Reader) ([]game.Round1Statement, error) {
	rows, err := readRows(r, "round 1", "playerid", "statement", "istruth")
	if err != nil {
		return nil, err
	}

	statements := make([]game.Round1Statement, 0, len(rows))
	for _, row := range rows {
		playerID, err := row.number("playerid")
		if err != nil {
			return nil, err
		}

		statements = append(statements, game.Round1Statement{
			PlayerID:  playerID,
			Statement: row.get("statement"),
			IsTruth:   strings.EqualFold(row.get("istruth"), "TRUE"),
		})
	}

	return statements, nil
}

// ParseRound2 expects a statement column with exactly five rows.
func ParseRound2(r io.Reader) ([]string, error) {
	rows, err := readRows(r, "round 2", "statement")
	if err != nil {
		return nil, err
	}

	if len(rows) != round2StatementCount {
		return nil, fmt.Errorf("%w: round 2 needs %d statements, got %d", ErrInvalidImport, round2StatementCount, len(rows))
	}

	statements := make([]string, 0, len(rows))
	for _, row := range rows {
		s := row.get("statement")
		if s == "" {
			return nil, fmt.Errorf("%w: round 2 line %d: empty statement", ErrInvalidImport, row.line)
		}
		statements = append(statements, s)
	}

	return statements, nil
}

// ParseRound3 expects playerId, statement_1..3 and true_index (0-2).
func ParseRound3(r io.Reader) ([]game.Round3Set, error) {
	rows, err := readRows(r, "round 3", "playerid", "statement_1", "statement_2", "statement_3", "true_index")
	if err != nil {
		return nil, err
	}

	sets := make([]game.Round3Set, 0, len(rows))
	seen := make(map[int]bool, len(rows))

	for _, row := range rows {
		playerID, err := row.number("playerid")
		if err != nil {
			return nil, err
		}

		if seen[playerID] {
			return nil, fmt.Errorf("%w: round 3 line %d: duplicate set for player %d", ErrInvalidImport, row.line, playerID)
		}
		seen[playerID] = true

		trueIndex, err := row.number("true_index")
		if err != nil {
			return nil, err
		}

		if trueIndex < 0 || trueIndex > 2 {
			return nil, fmt.Errorf("%w: round 3 line %d: true_index %d out of range", ErrInvalidImport, row.line, trueIndex)
		}

		sets = append(sets, game.Round3Set{
			PlayerID:   playerID,
			Statements: []string{row.get("statement_1"), row.get("statement_2"), row.get("statement_3")},
			TrueIndex:  trueIndex,
		})
	}

	return sets, nil
}

type row struct {
	file   string
	line   int
	cols   map[string]int
	fields []string
}

func (r row) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.fields) {
		return ""
	}

	return strings.TrimSpace(r.fields[i])
}

func (r row) number(col string) (int, error) {
	v, err := strconv.Atoi(r.get(col))
	if err != nil {
		return 0, fmt.Errorf("%w: %s line %d: %s is not a number", ErrInvalidImport, r.file, r.line, col)
	}

	return v, nil
}

// readRows reads a headed CSV, skipping blank lines. Header names are
// trimmed and lower-cased.
func readRows(r io.Reader, file string, required ...string) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s file is empty", ErrInvalidImport, file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImport, file, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[key] = i
	}

	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("%w: %s is missing column %s", ErrInvalidImport, file, col)
		}
	}

	var rows []row
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImport, file, err)
		}

		line, _ := reader.FieldPos(0)

		if blank(fields) {
			continue
		}

		rows = append(rows, row{file: file, line: line, cols: cols, fields: fields})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", ErrInvalidImport, file)
	}

	return rows, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}

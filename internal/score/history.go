package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"log"
	"time"

	"github.com/fennelk/keyfall/internal/game"
	_ "github.com/mattn/go-sqlite3"
)

// History is one stored practice session for a chart.
type History struct {
	Sum      string
	PlayedAt time.Time
	Rate     float64
	Stats    Stats
	Inputs   []game.Input
}

// HistoryStore persists finished sessions to a local sqlite database.
type HistoryStore struct {
	db *sql.DB
}

type inputsCompact struct {
	Pitch uint8
	Times []time.Duration
}

func compactInputs(inputs []game.Input) []inputsCompact {
	pitchCount := 0
	for _, in := range inputs {
		if int(in.Pitch) >= pitchCount {
			pitchCount = int(in.Pitch) + 1
		}
	}
	ins := make([]inputsCompact, pitchCount)
	for _, in := range inputs {
		ins[in.Pitch].Pitch = in.Pitch // Repeated but it does not matter
		ins[in.Pitch].Times = append(ins[in.Pitch].Times, in.HitTime)
	}
	return ins
}

func uncompactInputs(ins []inputsCompact) []game.Input {
	inputs := []game.Input{}
	for _, in := range ins {
		for _, t := range in.Times {
			inputs = append(inputs, game.Input{Pitch: in.Pitch, HitTime: t})
		}
	}
	return inputs
}

// ChartSum identifies a chart by its note content, so history survives
// file renames and moves.
func ChartSum(c *game.Chart) string {
	data, err := json.Marshal(c.BeatNotes)
	if nil != err {
		return ""
	}
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *HistoryStore) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	initStatement := `
	create table if not exists sessions
	  (
		  id integer not null primary key,
		  sum text,
		  played_at text,
		  rate real,
		  total integer,
		  perfect integer,
		  great integer,
		  good integer,
		  missed integer,
		  wrong_pitch integer,
		  max_combo integer,
		  score integer,
		  inputs bytearray
	  );
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		return err
	}

	s.db = db
	return nil
}

func (s *HistoryStore) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// Save stores a finalized session. Failures are logged, not fatal; a
// practice run is still worth finishing without its history row.
func (s *HistoryStore) Save(sum string, stats Stats, inputs []game.Input, rate float64) {
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		log.Println("unable to marshal inputs", err)
		return
	}
	_, err = s.db.Exec(
		`insert into sessions
		   (sum, played_at, rate, total, perfect, great, good, missed, wrong_pitch, max_combo, score, inputs)
		 values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum, time.Now().Format(time.RFC3339), rate,
		stats.TotalNotes, stats.Perfect, stats.Great, stats.Good,
		stats.Missed, stats.WrongPitch, stats.MaxCombo, stats.TotalScore,
		data,
	)
	if nil != err {
		log.Println("unable to save session", err)
	}
}

// Load returns every stored session for the chart, oldest first.
func (s *HistoryStore) Load(sum string) []History {
	histories := []History{}
	rows, err := s.db.Query(
		`select played_at, rate, total, perfect, great, good, missed, wrong_pitch, max_combo, score, inputs
		 from sessions where sum = ? order by id`, sum)
	if nil != err {
		if err != sql.ErrNoRows {
			log.Println("unable to load sessions", err)
		}
		return histories
	}
	defer rows.Close()
	for rows.Next() {
		var playedAt string
		var inputs []byte
		h := History{Sum: sum}
		if err := rows.Scan(
			&playedAt, &h.Rate,
			&h.Stats.TotalNotes, &h.Stats.Perfect, &h.Stats.Great, &h.Stats.Good,
			&h.Stats.Missed, &h.Stats.WrongPitch, &h.Stats.MaxCombo, &h.Stats.TotalScore,
			&inputs,
		); nil != err {
			log.Println("unable to scan session", err)
			continue
		}
		if t, err := time.Parse(time.RFC3339, playedAt); nil == err {
			h.PlayedAt = t
		}
		var ins []inputsCompact
		if err := json.Unmarshal(inputs, &ins); nil != err {
			log.Println("unable to unmarshal input history")
			continue
		}
		h.Inputs = uncompactInputs(ins)
		histories = append(histories, h)
	}
	return histories
}

// Best returns the highest stored score for the chart, false when the
// chart has never been played.
func (s *HistoryStore) Best(sum string) (int, bool) {
	var best sql.NullInt64
	err := s.db.QueryRow(`select max(score) from sessions where sum = ?`, sum).Scan(&best)
	if nil != err || !best.Valid {
		return 0, false
	}
	return int(best.Int64), true
}

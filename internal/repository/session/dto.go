package session

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/tagfind/internal/domain/candidate"
	"github.com/kailas-cloud/tagfind/internal/domain/selection"
	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
)

// candidateRow is the JSON representation of one candidate.
type candidateRow struct {
	Ref  string   `json:"ref"`
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

// sessionRow is the JSON snapshot stored per session.
// Visibility is derived and therefore not stored.
type sessionRow struct {
	ID           string         `json:"id"`
	Policy       string         `json:"empty_filter"`
	Candidates   []candidateRow `json:"candidates"`
	RequiredTags []string       `json:"required_tags,omitempty"`
	State        string         `json:"state"`
	ChoiceIndex  *int           `json:"choice_index,omitempty"`
	Revision     int            `json:"revision"`
	CreatedAt    int64          `json:"created_at"`
}

// sessionToRow converts a domain Session to its storage row.
func sessionToRow(s *domsession.Session) sessionRow {
	set := s.Candidates()
	rows := make([]candidateRow, set.Len())
	for i := range rows {
		c := set.At(i)
		rows[i] = candidateRow{Ref: c.Ref(), Name: c.Name(), Tags: c.Tags()}
	}
	row := sessionRow{
		ID:           s.ID(),
		Policy:       s.Policy().String(),
		Candidates:   rows,
		RequiredTags: s.RequiredTags(),
		State:        s.State().String(),
		Revision:     s.Revision(),
		CreatedAt:    s.CreatedAt(),
	}
	if c := s.Choice(); !c.IsNone() {
		idx := c.Index()
		row.ChoiceIndex = &idx
	}
	return row
}

// sessionFromRow hydrates a domain Session from a storage row.
func sessionFromRow(row sessionRow) (*domsession.Session, error) {
	policy, err := tagfilter.ParseEmptyPolicy(row.Policy)
	if err != nil {
		return nil, fmt.Errorf("invalid empty_filter: %w", err)
	}
	state, err := selection.ParseState(row.State)
	if err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}

	cands := make([]candidate.Candidate, len(row.Candidates))
	for i, r := range row.Candidates {
		cands[i] = candidate.New(r.Ref, r.Name, r.Tags)
	}

	choice := selection.None()
	if row.ChoiceIndex != nil {
		idx := *row.ChoiceIndex
		if idx < 0 || idx >= len(cands) {
			return nil, fmt.Errorf("choice_index %d out of range [0, %d)", idx, len(cands))
		}
		choice = selection.Chosen(idx, cands[idx].Ref())
	}
	if state == selection.Resolved && choice.IsNone() {
		return nil, fmt.Errorf("resolved session %s has no choice", row.ID)
	}

	return domsession.Reconstruct(
		row.ID, policy, cands, row.RequiredTags, state, choice, row.Revision, row.CreatedAt,
	), nil
}

func marshalSession(s *domsession.Session) ([]byte, error) {
	data, err := json.Marshal(sessionToRow(s))
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func unmarshalSession(data []byte) (*domsession.Session, error) {
	var row sessionRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return sessionFromRow(row)
}

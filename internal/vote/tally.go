package vote

import (
	"context"
	"sort"

	"election-service/internal/election"
)

func (s *service) resolveForRead(ctx context.Context, electionID int) (*election.Election, error) {
	if electionID == 0 {
		return s.gate.Active(ctx)
	}
	return s.store.Election(ctx, electionID)
}

// sortTally orders rows by position display order, then vote count
// descending, then candidate id. Positions sharing a display order stay
// grouped by id.
func sortTally(rows []TallyRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if a.PositionID != b.PositionID {
			return a.PositionID < b.PositionID
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.CandidateID < b.CandidateID
	})
}

// groupTally folds sorted rows into one entry per position.
func groupTally(rows []TallyRow) []PositionResult {
	positions := []PositionResult{}
	for _, row := range rows {
		if n := len(positions); n == 0 || positions[n-1].PositionID != row.PositionID {
			positions = append(positions, PositionResult{
				PositionID:   row.PositionID,
				PositionName: row.PositionName,
				VoteLimit:    row.VoteLimit,
				Candidates:   []CandidateResult{},
			})
		}
		current := &positions[len(positions)-1]
		current.TotalVotes += row.VoteCount
		current.Candidates = append(current.Candidates, CandidateResult{
			CandidateID:   row.CandidateID,
			CandidateName: row.CandidateName,
			VoteCount:     row.VoteCount,
		})
	}
	return positions
}

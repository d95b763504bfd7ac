// Package schema lists every table of the service in creation order, so the
// server, the CLI and the integration tests migrate the same way.
package schema

import (
	"election-service/internal/admin"
	"election-service/internal/auth"
	"election-service/internal/candidate"
	"election-service/internal/course"
	"election-service/internal/department"
	"election-service/internal/election"
	"election-service/internal/position"
	"election-service/internal/vote"
	"election-service/internal/voter"
	"election-service/internal/votergroup"
)

// Models is ordered so every foreign key points at a table created earlier.
func Models() []interface{} {
	return []interface{}{
		(*department.Department)(nil),
		(*course.Course)(nil),
		(*votergroup.VoterGroup)(nil),
		(*voter.Voter)(nil),
		(*admin.Admin)(nil),
		(*position.Position)(nil),
		(*candidate.Candidate)(nil),
		(*election.Election)(nil),
		(*election.ElectionCandidate)(nil),
		(*vote.Vote)(nil),
		(*auth.RefreshToken)(nil),
	}
}

// Statements are the constraints and indexes bun's CREATE TABLE can't
// express. All of them are idempotent.
func Statements() []string {
	var stmts []string
	stmts = append(stmts, position.SchemaStatements...)
	stmts = append(stmts, election.SchemaStatements...)
	stmts = append(stmts, vote.SchemaStatements...)
	stmts = append(stmts, auth.SchemaStatements...)
	return stmts
}

// Tables lists table names children first, the order TRUNCATE and DROP want.
func Tables() []string {
	return []string{
		"refresh_tokens",
		"votes",
		"election_candidates",
		"elections",
		"candidates",
		"positions",
		"admins",
		"voters",
		"voter_groups",
		"courses",
		"departments",
	}
}

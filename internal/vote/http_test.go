package vote_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"election-service/internal/auth"
	"election-service/internal/logger"
	"election-service/internal/validation"
	"election-service/internal/vote"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	store  *memStore
	router http.Handler
	tokens *auth.TokenManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store, svc, _ := newFixture(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(tokens, logger.Discard()))
		vote.NewHandler(svc, validation.New(), logger.Discard()).RegisterRoutes(r)
	})

	return &apiFixture{store: store, router: router, tokens: tokens}
}

func (f *apiFixture) do(t *testing.T, p auth.Principal, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	token, _, err := f.tokens.Issue(p)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

var (
	voterOne   = auth.Principal{ID: 1, Role: auth.RoleVoter, Name: "Voter 1"}
	admin      = auth.Principal{ID: 1, Role: auth.RoleAdmin, Name: "admin"}
	superAdmin = auth.Principal{ID: 2, Role: auth.RoleSuperAdmin, Name: "root"}
)

func TestCastVoteEndpoint(t *testing.T) {
	t.Run("records for the caller", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes", `{"positionId":1,"candidateId":101,"isLastVote":true}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var receipt vote.VoteReceipt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
		assert.Equal(t, 1, receipt.VoterID)
		assert.True(t, receipt.HasVoted)
	})

	t.Run("cannot vote as someone else", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes", `{"voterId":2,"positionId":1,"candidateId":101}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Zero(t, f.store.voteCount())
	})

	t.Run("admins cannot vote", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, admin, http.MethodPost, "/api/votes", `{"positionId":1,"candidateId":101}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("limit exceeded carries its code", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes", `{"positionId":1,"candidateId":101}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.do(t, voterOne, http.MethodPost, "/api/votes", `{"positionId":1,"candidateId":102}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"PositionVoteLimitExceeded"`)
		assert.Contains(t, w.Body.String(), "President")
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes", `{"positionId":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"InvalidInput"`)
	})

	t.Run("storage down", func(t *testing.T) {
		f := newAPIFixture(t)
		f.store.unavailable = true

		w := f.do(t, voterOne, http.MethodPost, "/api/votes", `{"positionId":1,"candidateId":101}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
	})

	t.Run("storage conflict", func(t *testing.T) {
		f := newAPIFixture(t)
		f.store.insertErr = func(*vote.Vote) error {
			return fmt.Errorf("insert vote: %w", vote.ErrStorageConflict)
		}

		w := f.do(t, voterOne, http.MethodPost, "/api/votes", `{"positionId":1,"candidateId":101}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "StorageConflict")
		assert.Zero(t, f.store.voteCount())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newAPIFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/votes", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCastBallotEndpoint(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes/batch",
			`{"votes":[{"positionId":1,"candidateId":101},{"positionId":2,"candidateId":201}]}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var receipt vote.BatchReceipt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
		assert.True(t, receipt.Committed)
		assert.Equal(t, 2, receipt.Summary.Succeeded)
	})

	t.Run("rejection returns the receipt", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes/batch",
			`{"votes":[{"positionId":1,"candidateId":101},{"positionId":1,"candidateId":102}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body struct {
			Code string `json:"code"`
			vote.BatchReceipt
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "BatchRejected", body.Code)
		assert.False(t, body.Committed)
		assert.Equal(t, 1, body.Summary.Failed)
		assert.Equal(t, vote.ItemRejected, body.Results[1].Status)
		assert.Zero(t, f.store.voteCount())
	})

	t.Run("empty", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes/batch", `{"votes":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"EmptyBatch"`)
	})

	t.Run("already voted", func(t *testing.T) {
		f := newAPIFixture(t)
		f.store.voters[1].HasVoted = true

		w := f.do(t, voterOne, http.MethodPost, "/api/votes/batch", `{"votes":[{"positionId":1,"candidateId":101}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"VoterAlreadyVoted"`)
	})
}

func TestResultsEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, voterOne, http.MethodPost, "/api/votes", `{"positionId":1,"candidateId":102}`)
	require.Equal(t, http.StatusCreated, w.Code)

	for _, path := range []string{"/api/votes/results", "/api/votes/results?electionId=1", "/api/elections/1/results"} {
		t.Run(path, func(t *testing.T) {
			w := f.do(t, admin, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var results vote.Results
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
			assert.Equal(t, 1, results.ElectionID)
			assert.Equal(t, 102, results.Positions[0].Candidates[0].CandidateID)
			assert.Equal(t, 1, results.Positions[0].Candidates[0].VoteCount)
		})
	}

	t.Run("unknown election", func(t *testing.T) {
		w := f.do(t, admin, http.MethodGet, "/api/elections/42/results", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("own votes", func(t *testing.T) {
		w := f.do(t, voterOne, http.MethodGet, "/api/votes/voter/1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var votes []vote.Vote
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &votes))
		require.Len(t, votes, 1)
		assert.Equal(t, 102, votes[0].CandidateID)
	})
}

func TestResetEndpoints(t *testing.T) {
	t.Run("admin resets a voter", func(t *testing.T) {
		f := newAPIFixture(t)
		w := f.do(t, voterOne, http.MethodPost, "/api/votes/batch", `{"votes":[{"positionId":1,"candidateId":101}]}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.do(t, admin, http.MethodPost, "/api/votes/reset/1?electionId=1", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"voterId":1,"votesRemoved":1}`, w.Body.String())
		assert.False(t, f.store.voters[1].HasVoted)
	})

	t.Run("voters cannot reset", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, voterOne, http.MethodPost, "/api/votes/reset/1", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("election reset needs a superadmin", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, admin, http.MethodPost, "/api/elections/1/reset", "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = f.do(t, superAdmin, http.MethodPost, "/api/elections/1/reset", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"electionId":1,"votesRemoved":0}`, w.Body.String())
	})
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"election-service/internal/vote"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResults prints one block per position, candidates in tally order.
func writeResults(w io.Writer, format string, r *vote.Results) error {
	if format == "json" {
		return writeJSON(w, r)
	}

	fmt.Fprintf(w, "%s (election %d, %s)\n", r.ElectionTitle, r.ElectionID, r.Status)
	if len(r.Positions) == 0 {
		_, err := fmt.Fprintln(w, "\nNo candidates or votes.")
		return err
	}

	for _, p := range r.Positions {
		fmt.Fprintf(w, "\n%s: %d vote(s), limit %d per voter\n", p.PositionName, p.TotalVotes, p.VoteLimit)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  CANDIDATE\tVOTES")
		for _, c := range p.Candidates {
			fmt.Fprintf(tw, "  %s\t%d\n", c.CandidateName, c.VoteCount)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var (
	recordVenue   string
	recordTeam1   []string
	recordTeam2   []string
	recordScores  []string
	recordCreator string

	updateID      string
	updateVersion int
	updateScores  []string

	fakeOwnerID     string
	fakeDisplayName string

	linkFakeID   string
	linkTargetID string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(teamRankingsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(compatibilityCmd)
	rootCmd.AddCommand(partnersCmd)
	rootCmd.AddCommand(recommendCmd)

	recordCmd.Flags().StringVar(&recordVenue, "venue", "", "Venue the match was played at")
	recordCmd.Flags().StringSliceVar(&recordTeam1, "team1", nil, "The two player IDs of team 1")
	recordCmd.Flags().StringSliceVar(&recordTeam2, "team2", nil, "The two player IDs of team 2")
	recordCmd.Flags().StringSliceVar(&recordScores, "score", nil, "Set scores as team1:team2 pairs, e.g. 21:15")
	recordCmd.Flags().StringVar(&recordCreator, "created-by", "", "Player ID of the submitter")
	rootCmd.AddCommand(recordCmd)

	updateCmd.Flags().StringVar(&updateID, "id", "", "Match ID to update")
	updateCmd.Flags().IntVar(&updateVersion, "expected-version", 1, "The version the edit is based on")
	updateCmd.Flags().StringSliceVar(&updateScores, "score", nil, "Replacement set scores as team1:team2 pairs")
	rootCmd.AddCommand(updateCmd)

	fakePlayerCmd.Flags().StringVar(&fakeOwnerID, "owner", "", "Player ID of the owner")
	fakePlayerCmd.Flags().StringVar(&fakeDisplayName, "name", "", "Display name for the fake player")
	rootCmd.AddCommand(fakePlayerCmd)

	linkCmd.Flags().StringVar(&linkFakeID, "fake", "", "Fake player ID")
	linkCmd.Flags().StringVar(&linkTargetID, "target", "", "Real player ID to link to")
	rootCmd.AddCommand(linkCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the individual leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var teamRankingsCmd = &cobra.Command{
	Use:   "team-rankings",
	Short: "Show the team leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/team-rankings")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches [playerID]",
	Short: "List the matches a player participated in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches?playerID=" + url.QueryEscape(args[0]))
	},
}

var compatibilityCmd = &cobra.Command{
	Use:   "compatibility [playerA] [playerB]",
	Short: "Show the compatibility score of a pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(fmt.Sprintf("/compatibility?playerA=%s&playerB=%s",
			url.QueryEscape(args[0]), url.QueryEscape(args[1])))
	},
}

var partnersCmd = &cobra.Command{
	Use:   "partners [playerID]",
	Short: "List a player's compatibility with every past partner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/compatibility/partners?playerID=" + url.QueryEscape(args[0]))
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [playerID]",
	Short: "Suggest untried partners for a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/recommendations?playerID=" + url.QueryEscape(args[0]))
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a doubles match result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(recordTeam1) != 2 || len(recordTeam2) != 2 {
			return fmt.Errorf("both --team1 and --team2 need exactly two player IDs")
		}
		scores, err := parseScores(recordScores)
		if err != nil {
			return err
		}
		body := map[string]any{
			"venue_id":      recordVenue,
			"played_at":     time.Now().UTC().Format(time.RFC3339),
			"team1_players": recordTeam1,
			"team2_players": recordTeam2,
			"scores":        scores,
			"created_by":    recordCreator,
		}
		return performJSONRequest("POST", "/matches", body)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Revise the scores of a recorded match",
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateID == "" {
			return fmt.Errorf("--id is required")
		}
		scores, err := parseScores(updateScores)
		if err != nil {
			return err
		}
		body := map[string]any{
			"id":               updateID,
			"expected_version": updateVersion,
			"scores":           scores,
		}
		return performJSONRequest("PATCH", "/matches/update", body)
	},
}

var fakePlayerCmd = &cobra.Command{
	Use:   "fake-player",
	Short: "Create a placeholder player",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{
			"owner_id":     fakeOwnerID,
			"display_name": fakeDisplayName,
		}
		return performJSONRequest("POST", "/players/fake", body)
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link a fake player to a real account",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{
			"fake_player_id":   linkFakeID,
			"target_player_id": linkTargetID,
		}
		return performJSONRequest("POST", "/players/link", body)
	},
}

// parseScores turns "21:15" pairs into score objects.
func parseScores(raw []string) ([]map[string]int, error) {
	scores := make([]map[string]int, 0, len(raw))
	for _, pair := range raw {
		var t1, t2 int
		if _, err := fmt.Sscanf(pair, "%d:%d", &t1, &t2); err != nil {
			return nil, fmt.Errorf("invalid score %q, expected team1:team2: %w", pair, err)
		}
		scores = append(scores, map[string]int{"team1": t1, "team2": t2})
	}
	return scores, nil
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

func performJSONRequest(method, endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

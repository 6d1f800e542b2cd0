// Package cases holds the case management commands of the admin CLI. They
// talk straight to the SQLite database, which lets a firm open intakes and
// inspect cases without going through the web dashboard.
package cases

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tkivisto/legalintake/internal/db"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/repositories"
)

var Group = &cobra.Group{
	ID:    "cases",
	Title: "Case management",
}

func openRepository() (*repositories.CaseRepository, *db.Database, error) {
	url, ok := os.LookupEnv("LEGALINTAKE_SQLITE_URL")
	if !ok {
		url = "./legalintake.sqlite"
	}
	dbs, err := db.NewDatabase(url)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database", slog.String("url", url))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repositories.NewCaseRepository(dbs, logger), dbs, nil
}

var Create = &cobra.Command{
	Use:     "create-case <client-name> [email]",
	Short:   "Open a new intake and print the client's access token",
	GroupID: Group.ID,
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) == 2 {
			email = args[1]
		}

		repo, dbs, err := openRepository()
		if err != nil {
			return err
		}
		defer dbs.Close(slog.Default())

		record, err := repo.Create(cmd.Context(), args[0], email)
		if err != nil {
			return errors.Wrap(err, "create case")
		}
		cmd.Printf("case %d created for %s\naccess token: %s\n", record.ID, record.ClientName, record.AccessToken)
		return nil
	},
}

var List = &cobra.Command{
	Use:     "list-cases",
	Short:   "List all cases, newest first",
	GroupID: Group.ID,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, dbs, err := openRepository()
		if err != nil {
			return err
		}
		defer dbs.Close(slog.Default())

		records, err := repo.List(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "list cases")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tCLIENT\tSTATUS\tREVIEWED\tCREATED")
		for _, record := range records {
			reviewed := ""
			if record.IsReviewed {
				reviewed = record.ReviewedBy
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				record.ID, record.ClientName, record.Status, reviewed,
				record.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var Show = &cobra.Command{
	Use:     "show-case <id>",
	Short:   "Print one case as JSON, including facts and analysis",
	GroupID: Group.ID,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Wrap(err, "parse case id", slog.String("arg", args[0]))
		}

		repo, dbs, err := openRepository()
		if err != nil {
			return err
		}
		defer dbs.Close(slog.Default())

		record, err := repo.Get(cmd.Context(), id)
		if err != nil {
			return errors.Wrap(err, "get case")
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	},
}

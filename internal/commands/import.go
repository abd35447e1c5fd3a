package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/services"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import applications|servers FILE",
	Short: "Reconcile a CSV or YAML inventory file against the store",
	Long: `Import creates or updates records matched by name (applications) or
hostname (servers). Rows that fail are reported and skipped; the rest are
applied. The result is printed as JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, err := parseEntity(args[0])
		if err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := services.DecodeRows(args[1], f)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s, closeBackend, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeBackend()

		importer := services.NewImportService(s, nil)
		var result *models.ImportResult
		if entity == models.EntityApplication {
			result = importer.ImportApplications(ctx, rows)
		} else {
			result = importer.ImportServers(ctx, rows)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var templateCmd = &cobra.Command{
	Use:   "template applications|servers",
	Short: "Print the CSV header for an import file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, err := parseEntity(args[0])
		if err != nil {
			return err
		}
		return services.WriteTemplate(cmd.OutOrStdout(), entity)
	},
}

func parseEntity(arg string) (models.EntityType, error) {
	switch arg {
	case "applications", "application", "apps":
		return models.EntityApplication, nil
	case "servers", "server":
		return models.EntityServer, nil
	default:
		return "", fmt.Errorf("unknown entity %q, expected applications or servers", arg)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cppla/standupbot/config"
	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

var apikeyName string

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage admin API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin API key and print it once",
	Long: `Create an admin API key. The key is printed once and only its hash is stored.

Examples:
  standupbot apikey create --name scheduler`,
	RunE: runAPIKeyCreate,
}

func init() {
	apikeyCreateCmd.Flags().StringVar(&apikeyName, "name", "", "Label for the key")
	_ = apikeyCreateCmd.MarkFlagRequired("name")
	apikeyCmd.AddCommand(apikeyCreateCmd)
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := utils.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, deps, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	// Key creation never signs or revokes tokens.
	issued, err := services.NewAuthService(deps, nil, nil).CreateKey(cmd.Context(), apikeyName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "API key for %q (store it now, it is not shown again):\n", issued.Name)
	fmt.Fprintln(out, issued.Key)
	return nil
}

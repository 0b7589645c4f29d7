package cmd

import (
	"github.com/infini-money/infini-go/clients/infini"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(currenciesCmd)
}

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "list the currencies accepted for new orders",
	Run:   Perform("get supported currencies", currenciesRun),
}

func currenciesRun(cmd *cobra.Command, args []string) error {
	client, err := infini.New(clientContext(cmd))
	if err != nil {
		return err
	}

	currencies, err := client.GetSupportedCurrencies(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(currencies)
}

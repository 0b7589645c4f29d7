package cmd

import (
	"fmt"

	"github.com/infini-money/infini-go/clients/infini"
	"github.com/infini-money/infini-go/validators"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	RootCmd.AddCommand(withdrawCmd)

	withdrawCmd.Flags().String("chain", "",
		"the chain to withdraw over (e.g. ethereum, solana, tron)")
	Must(withdrawCmd.MarkFlagRequired("chain"))
	Must(viper.BindPFlag("chain", withdrawCmd.Flags().Lookup("chain")))

	withdrawCmd.Flags().String("token-type", "",
		"the token to withdraw (e.g. USDC, USDT)")
	Must(withdrawCmd.MarkFlagRequired("token-type"))
	Must(viper.BindPFlag("token-type", withdrawCmd.Flags().Lookup("token-type")))

	withdrawCmd.Flags().String("withdraw-amount", "",
		"the amount to withdraw, a decimal string")
	Must(withdrawCmd.MarkFlagRequired("withdraw-amount"))
	Must(viper.BindPFlag("withdraw-amount", withdrawCmd.Flags().Lookup("withdraw-amount")))

	withdrawCmd.Flags().String("wallet-address", "",
		"the destination wallet address")
	Must(withdrawCmd.MarkFlagRequired("wallet-address"))
	Must(viper.BindPFlag("wallet-address", withdrawCmd.Flags().Lookup("wallet-address")))

	withdrawCmd.Flags().String("note", "", "an optional note for the withdrawal")
	Must(viper.BindPFlag("note", withdrawCmd.Flags().Lookup("note")))
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "withdraw funds to an external wallet",
	Run:   Perform("withdraw", withdrawRun),
}

func withdrawRun(cmd *cobra.Command, args []string) error {
	if !validators.IsDecimalAmount(viper.GetString("withdraw-amount")) {
		return fmt.Errorf("invalid withdraw amount %q: must be a non-negative decimal", viper.GetString("withdraw-amount"))
	}
	amount, err := decimal.NewFromString(viper.GetString("withdraw-amount"))
	if err != nil {
		return fmt.Errorf("invalid withdraw amount: %w", err)
	}

	client, err := infini.New(clientContext(cmd))
	if err != nil {
		return err
	}

	resp, err := client.Withdraw(cmd.Context(), &infini.WithdrawRequest{
		Chain:         viper.GetString("chain"),
		TokenType:     viper.GetString("token-type"),
		Amount:        amount,
		WalletAddress: viper.GetString("wallet-address"),
		Note:          viper.GetString("note"),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

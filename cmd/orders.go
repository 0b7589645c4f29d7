package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/infini-money/infini-go/clients/infini"
	"github.com/infini-money/infini-go/validators"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	ordersCmd.AddCommand(orderCreateCmd)
	ordersCmd.AddCommand(orderGetCmd)
	ordersCmd.AddCommand(orderListCmd)
	ordersCmd.AddCommand(orderReissueTokenCmd)

	RootCmd.AddCommand(ordersCmd)

	// create flags
	orderCreateCmd.Flags().String("amount", "",
		"the order amount, a decimal string")
	Must(orderCreateCmd.MarkFlagRequired("amount"))
	Must(viper.BindPFlag("amount", orderCreateCmd.Flags().Lookup("amount")))

	orderCreateCmd.Flags().String("request-id", "",
		"idempotency key for the order, a fresh uuid is generated when omitted")
	Must(viper.BindPFlag("request-id", orderCreateCmd.Flags().Lookup("request-id")))

	orderCreateCmd.Flags().String("client-reference", "",
		"an opaque reference carried through to the order")
	Must(viper.BindPFlag("client-reference", orderCreateCmd.Flags().Lookup("client-reference")))

	orderCreateCmd.Flags().String("order-desc", "",
		"a human readable description for the order")
	Must(viper.BindPFlag("order-desc", orderCreateCmd.Flags().Lookup("order-desc")))

	orderCreateCmd.Flags().Int64("expires-in", 3600,
		"seconds until the checkout url expires")
	Must(viper.BindPFlag("expires-in", orderCreateCmd.Flags().Lookup("expires-in")))

	orderCreateCmd.Flags().String("success-url", "",
		"url the payer is redirected to after payment")
	Must(viper.BindPFlag("success-url", orderCreateCmd.Flags().Lookup("success-url")))

	orderCreateCmd.Flags().String("failure-url", "",
		"url the payer is redirected to on failure")
	Must(viper.BindPFlag("failure-url", orderCreateCmd.Flags().Lookup("failure-url")))

	// list flags
	orderListCmd.Flags().String("currency", "",
		"filter orders by settlement currency")
	Must(viper.BindPFlag("currency", orderListCmd.Flags().Lookup("currency")))

	orderListCmd.Flags().String("status", "",
		"filter orders by status")
	Must(viper.BindPFlag("status", orderListCmd.Flags().Lookup("status")))

	orderListCmd.Flags().Int("page", 1, "result page")
	Must(viper.BindPFlag("page", orderListCmd.Flags().Lookup("page")))

	orderListCmd.Flags().Int("page-size", 10, "results per page")
	Must(viper.BindPFlag("page-size", orderListCmd.Flags().Lookup("page-size")))
}

var (
	ordersCmd = &cobra.Command{
		Use:   "orders",
		Short: "interact with infini payment orders",
	}

	orderCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "create a new payment order",
		Run:   Perform("create order", orderCreateRun),
	}

	orderGetCmd = &cobra.Command{
		Use:   "get <order-id>",
		Short: "fetch an order by id",
		Args:  cobra.ExactArgs(1),
		Run:   Perform("get order", orderGetRun),
	}

	orderListCmd = &cobra.Command{
		Use:   "list",
		Short: "list orders matching the given filters",
		Run:   Perform("list orders", orderListRun),
	}

	orderReissueTokenCmd = &cobra.Command{
		Use:   "reissue-token <order-id>",
		Short: "reissue the checkout url token for an order",
		Args:  cobra.ExactArgs(1),
		Run:   Perform("reissue order token", orderReissueTokenRun),
	}
)

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func orderCreateRun(cmd *cobra.Command, args []string) error {
	if !validators.IsDecimalAmount(viper.GetString("amount")) {
		return fmt.Errorf("invalid amount %q: must be a non-negative decimal", viper.GetString("amount"))
	}
	amount, err := decimal.NewFromString(viper.GetString("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	requestID := uuid.NewV4()
	if s := viper.GetString("request-id"); s != "" {
		requestID, err = uuid.FromString(s)
		if err != nil {
			return fmt.Errorf("invalid request-id: %w", err)
		}
	}

	client, err := infini.New(clientContext(cmd))
	if err != nil {
		return err
	}

	order, err := client.CreateOrder(cmd.Context(), &infini.CreateOrderRequest{
		RequestID:       requestID,
		Amount:          amount,
		ClientReference: viper.GetString("client-reference"),
		OrderDesc:       viper.GetString("order-desc"),
		ExpiresIn:       viper.GetInt64("expires-in"),
		SuccessURL:      viper.GetString("success-url"),
		FailureURL:      viper.GetString("failure-url"),
	})
	if err != nil {
		return err
	}
	return printJSON(order)
}

func orderGetRun(cmd *cobra.Command, args []string) error {
	client, err := infini.New(clientContext(cmd))
	if err != nil {
		return err
	}

	order, err := client.GetOrder(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(order)
}

func orderListRun(cmd *cobra.Command, args []string) error {
	client, err := infini.New(clientContext(cmd))
	if err != nil {
		return err
	}

	page, err := client.ListOrders(cmd.Context(), &infini.ListOrdersParams{
		Currency: viper.GetString("currency"),
		Status:   viper.GetString("status"),
		Page:     viper.GetInt("page"),
		PageSize: viper.GetInt("page-size"),
	})
	if err != nil {
		return err
	}
	return printJSON(page)
}

func orderReissueTokenRun(cmd *cobra.Command, args []string) error {
	client, err := infini.New(clientContext(cmd))
	if err != nil {
		return err
	}

	resp, err := client.ReissueOrderToken(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(resp)
}

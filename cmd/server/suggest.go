package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hall-booking/internal/pricing"
)

type suggestOutput struct {
	Base           float64 `json:"base_price"`
	At             string  `json:"at"`
	Capacity       int     `json:"capacity"`
	SuggestedPrice float64 `json:"suggested_price"`
	Reason         string  `json:"reason"`
}

// newSuggestPriceCmd evaluates the price engine offline, without a database.
func newSuggestPriceCmd() *cobra.Command {
	var (
		base     float64
		at       string
		capacity int
	)

	cmd := &cobra.Command{
		Use:   "suggest-price",
		Short: "Print the suggested hourly price for a base rate, instant and capacity",
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
				when = t
			}

			sg, err := pricing.Default().Suggest(base, when, capacity)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(suggestOutput{
				Base:           base,
				At:             when.Format(time.RFC3339),
				Capacity:       capacity,
				SuggestedPrice: sg.Price,
				Reason:         sg.Reason,
			})
		},
	}

	cmd.Flags().Float64Var(&base, "base", 0, "base hourly price")
	cmd.Flags().StringVar(&at, "at", "", "event start (RFC3339, defaults to now)")
	cmd.Flags().IntVar(&capacity, "capacity", pricing.DefaultCapacity, "venue capacity")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

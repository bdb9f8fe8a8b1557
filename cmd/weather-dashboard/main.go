package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var cfg *config.AppConfig

func main() {
	rootCmd := &cobra.Command{
		Use:          "weather-dashboard",
		Short:        "Погода по городам России",
		Long:         fmt.Sprintf("Текущая погода, прогноз на %d дней и избранные города с оформлением по погодным условиям", weather.ForecastDays),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newForecastCmd(),
		newSuggestCmd(),
		newThemeCmd(),
		newFavoritesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApplication wires a session, restores it and runs fn under a timeout.
func withApplication(timeout time.Duration, fn func(ctx context.Context, a *application) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.restore(ctx)
	return fn(ctx, a)
}

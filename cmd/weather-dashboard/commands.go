package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/theme"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const cliTimeout = 30 * time.Second

func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast [город]",
		Short: fmt.Sprintf("Текущая погода и прогноз на %d дней", weather.ForecastDays),
		Long:  "Без аргумента показывает активный вид сохранённой сессии",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return withApplication(cliTimeout, func(ctx context.Context, a *application) error {
				var err error
				if len(args) == 1 {
					err = a.ctrl.SelectCity(ctx, args[0])
				} else {
					err = a.ctrl.Refresh(ctx)
				}
				if err != nil {
					return err
				}
				st := a.ctrl.State()
				if st.Snapshot == nil {
					return fmt.Errorf("no weather for %q: %w", st.View.ActiveSelector, weather.ErrNotFound)
				}
				if output == "json" {
					return writeJSON(cmd.OutOrStdout(), st)
				}
				printForecast(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Формат вывода (text, json)")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [начало названия]",
		Short: "Подсказки по известным городам",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range geo.NewCatalog(cfg.KnownCities).Suggest(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "theme [код погоды]",
		Short: "Оформление для кода погоды WMO",
		Long:  "Без аргумента выводит оформление для всех известных кодов",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := weather.KnownCodes()
			if len(args) == 1 {
				code, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("weather code must be an integer: %w", weather.ErrInvalidInput)
				}
				codes = []int{code}
			}
			for _, code := range codes {
				c := weather.Describe(code)
				th := theme.Derive(c.BaseColor, c.Description)
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-30s %s -> %s  text=%s\n",
					code, th.Description, th.Gradient[0], th.Gradient[1], th.TextColor)
			}
			return nil
		},
	}
}

func newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Избранные города (не больше трёх)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Показать избранные города",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cliTimeout, func(ctx context.Context, a *application) error {
				printFavorites(cmd.OutOrStdout(), a.ctrl.State())
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add [город]",
		Short: "Добавить город; самый старый удаляется при переполнении",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cliTimeout, func(ctx context.Context, a *application) error {
				err := a.ctrl.AddFavorite(ctx, args[0])
				printFavorites(cmd.OutOrStdout(), a.ctrl.State())
				return err
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove [город]",
		Short: "Удалить город из избранного",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cliTimeout, func(ctx context.Context, a *application) error {
				err := a.ctrl.RemoveFavorite(ctx, args[0])
				printFavorites(cmd.OutOrStdout(), a.ctrl.State())
				return err
			})
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

var shortWeekdays = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// forecastLine renders one forecast day as "Пн ↑5° ↓-2° Ясно".
func forecastLine(d weather.DailyForecast) string {
	return fmt.Sprintf("%s ↑%d° ↓%d° %s",
		shortWeekdays[d.Date.Weekday()],
		roundTemp(d.TempMaxC),
		roundTemp(d.TempMinC),
		weather.Describe(d.WeatherCode).Description)
}

func roundTemp(v float64) int {
	return int(math.Round(v))
}

func printForecast(w io.Writer, st dashboard.State) {
	snap := st.Snapshot
	name := snap.CityName()
	if name == "" && st.Location != nil {
		name = st.Location.Name
	}
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "%d°C / %d°F  %s\n",
		roundTemp(snap.CurrentTemperatureC),
		roundTemp(snap.CurrentTemperatureF()),
		weather.Describe(snap.CurrentWeatherCode).Description)
	fmt.Fprintf(w, "Ветер: %.1f км/ч\n", snap.WindSpeedKmh)
	for _, d := range st.Forecast {
		fmt.Fprintln(w, forecastLine(d))
	}
	if st.Theme != nil {
		fmt.Fprintf(w, "Оформление: %s -> %s, текст %s\n", st.Theme.Gradient[0], st.Theme.Gradient[1], st.Theme.TextColor)
	}
}

func printFavorites(w io.Writer, st dashboard.State) {
	if len(st.Favorites) == 0 {
		fmt.Fprintln(w, "Избранных городов нет")
		return
	}
	for i, f := range st.Favorites {
		marker := " "
		if f.Name == st.View.ActiveSelector {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d. %s\n", marker, i+1, f.Name)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

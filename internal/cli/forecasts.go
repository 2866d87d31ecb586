package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/weaverhq/weaver/internal/client"
	"github.com/weaverhq/weaver/internal/client/query"
	"github.com/weaverhq/weaver/internal/dto"
)

const (
	dateFlag        = "date"
	temperatureFlag = "temperature"
	summaryFlag     = "summary"
)

func (a *App) newForecastsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "forecasts",
		Aliases: []string{"forecast", "wf"},
		Short:   "Manage your weather forecasts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your forecasts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := a.cache.Fetch(cmd.Context(), client.ForecastsKey, a.api.ForecastsQuery())
				if err != nil {
					return err
				}
				return a.printForecasts(data)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one forecast",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := a.api.GetForecast(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printForecasts([]dto.ForecastResponse{*f})
			},
		},
		a.newForecastCreateCommand(),
		a.newForecastUpdateCommand(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a forecast",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.forecastMutation(cmd.Context(), "Forecast deleted", func(ctx context.Context) (any, error) {
					return nil, a.api.DeleteForecast(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "bulk-delete <id>...",
			Short: "Delete several forecasts; ids you do not own are ignored",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.forecastMutation(cmd.Context(), "Forecasts deleted", func(ctx context.Context) (any, error) {
					return nil, a.api.BulkDeleteForecasts(ctx, args)
				})
			},
		},
	)
	return cmd
}

// forecastFlags declares the flags shared by create and update.
func forecastFlags(temperatureUsage string) map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		dateFlag: &cobraflags.StringFlag{
			Name:  dateFlag,
			Value: "",
			Usage: "forecast date, YYYY-MM-DD",
		},
		temperatureFlag: &cobraflags.IntFlag{
			Name:  temperatureFlag,
			Value: 0,
			Usage: temperatureUsage,
		},
		summaryFlag: &cobraflags.StringFlag{
			Name:  summaryFlag,
			Value: "",
			Usage: "short description, at most 100 characters",
		},
	}
}

func (a *App) newForecastCreateCommand() *cobra.Command {
	flags := forecastFlags("temperature in Celsius")
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := dto.CreateForecastRequest{
				Date:         flags[dateFlag].GetString(),
				TemperatureC: flags[temperatureFlag].GetInt(),
				Summary:      optional(flags[summaryFlag].GetString()),
			}
			return a.forecastMutation(cmd.Context(), "Forecast created", func(ctx context.Context) (any, error) {
				return a.api.CreateForecast(ctx, req)
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func (a *App) newForecastUpdateCommand() *cobra.Command {
	flags := forecastFlags("temperature in Celsius, -100 to 100")
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a forecast's date, temperature and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.UpdateForecastRequest{
				Date:         flags[dateFlag].GetString(),
				TemperatureC: flags[temperatureFlag].GetInt(),
				Summary:      optional(flags[summaryFlag].GetString()),
			}
			return a.forecastMutation(cmd.Context(), "Forecast updated", func(ctx context.Context) (any, error) {
				return nil, a.api.UpdateForecast(ctx, args[0], req)
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

// forecastMutation runs fn and prints the forecast list re-fetched after the
// list key is invalidated.
func (a *App) forecastMutation(ctx context.Context, success string, fn func(context.Context) (any, error)) error {
	return a.mutate(ctx, query.Mutation{
		Fn: fn,
		Meta: query.MutationMeta{
			InvalidatesQuery: client.ForecastsKey,
			SuccessMessage:   success,
		},
	}, a.api.ForecastsQuery(), a.printForecasts)
}

func (a *App) printForecasts(data any) error {
	list, ok := data.([]dto.ForecastResponse)
	if !ok {
		return fmt.Errorf("unexpected forecast payload %T", data)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no forecasts")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTEMP (C)\tSUMMARY")
	for _, f := range list {
		summary := ""
		if f.Summary != nil {
			summary = *f.Summary
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.ID, f.Date, f.TemperatureC, summary)
	}
	return w.Flush()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/weaverhq/weaver/internal/client/query"
)

func (a *App) newCultureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "culture",
		Short: "Choose the language of server messages",
	}

	set := &cobra.Command{
		Use:   "set <culture>",
		Short: "Store a culture cookie (en or fr)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.cache.Mutate(cmd.Context(), query.Mutation{
				Fn: func(ctx context.Context) (any, error) { return nil, a.api.SetCulture(ctx, args[0]) },
				// Every cached payload may hold localized text.
				Meta: query.MutationMeta{InvalidatesQuery: query.Key{}, SuccessMessage: "Culture set to " + args[0]},
			})
			if err != nil {
				return err
			}
			a.state.Culture = args[0]
			return a.save()
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the culture cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.cache.Mutate(cmd.Context(), query.Mutation{
				Fn:   func(ctx context.Context) (any, error) { return nil, a.api.ClearCulture(ctx) },
				Meta: query.MutationMeta{InvalidatesQuery: query.Key{}, SuccessMessage: "Culture cleared"},
			})
			if err != nil {
				return err
			}
			a.state.Culture = ""
			return a.save()
		},
	}

	cmd.AddCommand(set, clearCmd)
	return cmd
}

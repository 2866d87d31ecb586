package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/weaverhq/weaver/internal/client"
	"github.com/weaverhq/weaver/internal/client/query"
	"github.com/weaverhq/weaver/internal/dto"
)

func (a *App) newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (Admin role)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := a.cache.Fetch(cmd.Context(), client.UsersKey, a.api.UsersQuery())
				if err != nil {
					return err
				}
				return a.printUsers(data)
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an account with its forecasts",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.userMutation(cmd.Context(), "User deleted", func(ctx context.Context) (any, error) {
					return nil, a.api.DeleteUser(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "bulk-delete <id>...",
			Short: "Delete several accounts; unknown ids are ignored",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.userMutation(cmd.Context(), "Users deleted", func(ctx context.Context) (any, error) {
					return nil, a.api.BulkDeleteUsers(ctx, args)
				})
			},
		},
	)
	return cmd
}

func (a *App) userMutation(ctx context.Context, success string, fn func(context.Context) (any, error)) error {
	return a.mutate(ctx, query.Mutation{
		Fn: fn,
		Meta: query.MutationMeta{
			InvalidatesQuery: client.UsersKey,
			SuccessMessage:   success,
		},
	}, a.api.UsersQuery(), a.printUsers)
}

func (a *App) printUsers(data any) error {
	list, ok := data.([]dto.UserResponse)
	if !ok {
		return fmt.Errorf("unexpected user payload %T", data)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLES\tCONFIRMED")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", u.ID, u.Email, strings.Join(u.Roles, ","), u.IsEmailConfirmed)
	}
	return w.Flush()
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weaverhq/weaver/internal/client"
	"github.com/weaverhq/weaver/internal/client/query"
	"github.com/weaverhq/weaver/internal/dto"
)

func (a *App) newLoginCommand() *cobra.Command {
	var (
		email, password, twoFactor string
		bearer                     bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req := dto.LoginRequest{Email: email, Password: password, TwoFactorCode: twoFactor}
			err := a.mutate(ctx, query.Mutation{
				Fn: func(ctx context.Context) (any, error) {
					tokens, err := a.api.Login(ctx, req, !bearer)
					if err == nil && tokens != nil {
						a.state.RefreshToken = tokens.RefreshToken
					}
					return tokens, err
				},
				Meta: query.MutationMeta{InvalidatesQuery: client.MeKey, SuccessMessage: "Connected"},
			}, a.api.MeQuery(), a.printMe)
			if err != nil {
				return err
			}
			return a.save()
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&twoFactor, "code", "", "two-factor code, when enabled")
	cmd.Flags().BoolVar(&bearer, "bearer", false, "use a bearer token instead of a session cookie")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.cache.Mutate(cmd.Context(), query.Mutation{
				Fn: func(ctx context.Context) (any, error) { return nil, a.api.Logout(ctx) },
				// Nothing cached under the old identity may be shown again.
				OnSuccess: func(any) { a.cache.Clear() },
				Meta:      query.MutationMeta{InvalidatesQuery: client.MeKey, SuccessMessage: "Logged out"},
			})
			if err != nil {
				return err
			}
			a.state.RefreshToken = ""
			return a.save()
		},
	}
}

func (a *App) newRegisterCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; a confirmation link is mailed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.cache.Mutate(cmd.Context(), query.Mutation{
				Fn: func(ctx context.Context) (any, error) {
					return nil, a.api.Register(ctx, dto.RegisterRequest{Email: email, Password: password})
				},
				Meta: query.MutationMeta{SuccessMessage: "Check your inbox to confirm the account"},
			})
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) newForgotPasswordCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.cache.Mutate(cmd.Context(), query.Mutation{
				Fn:   func(ctx context.Context) (any, error) { return nil, a.api.ForgotPassword(ctx, email) },
				Meta: query.MutationMeta{SuccessMessage: "If the account exists, a reset code was sent"},
			})
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) newMeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.cache.Fetch(cmd.Context(), client.MeKey, a.api.MeQuery())
			if err != nil {
				return err
			}
			return a.printMe(data)
		},
	}
}

func (a *App) printMe(data any) error {
	me, ok := data.(*dto.UserResponse)
	if !ok {
		return fmt.Errorf("unexpected profile payload %T", data)
	}
	confirmed := "unconfirmed"
	if me.IsEmailConfirmed {
		confirmed = "confirmed"
	}
	fmt.Fprintf(a.out, "%s (%s) roles=%v\n", me.Email, confirmed, me.Roles)
	return nil
}

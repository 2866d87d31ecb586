// Package cli implements weaverctl, a command line client for the Weaver API.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/weaverhq/weaver/internal/client"
	"github.com/weaverhq/weaver/internal/client/query"
)

const (
	serverFlag    = "server"
	cultureFlag   = "culture"
	tokenFileFlag = "token-file"
)

// App is shared by every command of one weaverctl process.
type App struct {
	out   io.Writer
	v     *viper.Viper
	cache *query.Client

	api   *client.Client
	state *state
}

// NewRootCommand builds the weaverctl command tree writing to out.
// Settings come from flags, then WEAVER_* environment variables, then an
// optional weaverctl.yaml in the working directory or ~/.weaver.
func NewRootCommand(out io.Writer) *cobra.Command {
	app := &App{out: out, v: viper.New()}
	app.cache = query.NewClient(query.WithNotifier(&printNotifier{out: out}))

	root := &cobra.Command{
		Use:           "weaverctl",
		Short:         "Command line client for the Weaver API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.String(serverFlag, "http://localhost:8080", "Weaver server base URL")
	pf.String(cultureFlag, "", "culture sent as Accept-Language (en or fr)")
	pf.String(tokenFileFlag, defaultStatePath(), "file holding the session between runs")
	for _, name := range []string{serverFlag, cultureFlag, tokenFileFlag} {
		_ = app.v.BindPFlag(name, pf.Lookup(name))
	}

	app.v.SetEnvPrefix("WEAVER")
	app.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	app.v.AutomaticEnv()
	app.v.SetConfigName("weaverctl")
	app.v.AddConfigPath(".")
	app.v.AddConfigPath("$HOME/.weaver")

	root.AddCommand(
		app.newLoginCommand(),
		app.newLogoutCommand(),
		app.newRegisterCommand(),
		app.newForgotPasswordCommand(),
		app.newMeCommand(),
		app.newCultureCommand(),
		app.newForecastsCommand(),
		app.newUsersCommand(),
	)
	return root
}

func (a *App) init() error {
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	st, err := loadState(a.v.GetString(tokenFileFlag))
	if err != nil {
		return err
	}
	a.state = st

	culture := a.v.GetString(cultureFlag)
	if culture == "" {
		culture = st.Culture
	}
	api, err := client.New(a.v.GetString(serverFlag),
		client.WithCulture(culture),
		client.WithToken(st.AccessToken),
	)
	if err != nil {
		return err
	}
	if st.Session != "" {
		api.SetSession(st.Session)
	}
	a.api = api
	return nil
}

func (a *App) save() error {
	a.state.Session = a.api.Session()
	a.state.AccessToken = a.api.Token()
	return saveState(a.v.GetString(tokenFileFlag), a.state)
}

// mutate runs m and, when it declares an invalidated key, prints what the
// observer mounted on that key re-fetched.
func (a *App) mutate(ctx context.Context, m query.Mutation, observe query.Fetcher, render func(any) error) error {
	var obs *query.Observer
	if m.Meta.InvalidatesQuery != nil && observe != nil {
		obs = a.cache.Observe(ctx, m.Meta.InvalidatesQuery, observe)
		defer obs.Unmount()
	}

	if _, err := a.cache.Mutate(ctx, m); err != nil {
		return err
	}
	if obs == nil || render == nil {
		return nil
	}
	data, err := obs.Result()
	if err != nil {
		return err
	}
	return render(data)
}

type printNotifier struct {
	out io.Writer
}

func (n *printNotifier) Success(message string) {
	fmt.Fprintln(n.out, message)
}

func (n *printNotifier) Error(message string, err error) {
	fmt.Fprintf(n.out, "%s: %v\n", message, err)
}

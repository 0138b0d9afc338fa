package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marketplace/internal/api"
	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/errors"
)

// Runtime is the wired application for one invocation
type Runtime struct {
	API    api.BusinessAPI
	Config *config.Config
	// Close releases the runtime; it may be nil.
	Close func() error
}

// BootstrapOptions carries what the command line contributes to startup
type BootstrapOptions struct {
	EnvFile   string
	Overrides *config.ConfigOverrides
}

// Bootstrap builds the runtime once flags are parsed
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*Runtime, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd       *cobra.Command
	bootstrap Bootstrap
	runtime   *Runtime
	app       *App

	out io.Writer
	in  io.Reader
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(bootstrap Bootstrap) *RootCommand {
	return NewRootCommandWithIO(bootstrap, os.Stdout, os.Stdin)
}

// NewRootCommandWithIO creates the root command over the given streams
func NewRootCommandWithIO(bootstrap Bootstrap, out io.Writer, in io.Reader) *RootCommand {
	root := &RootCommand{
		bootstrap: bootstrap,
		out:       out,
		in:        in,
	}

	root.cmd = &cobra.Command{
		Use:   "mkt",
		Short: "A command-line client for the services marketplace",
		Long: `mkt is a command-line client for the services marketplace.

FEATURES:
  • Search providers by text, service, city, rating and availability
  • Share and reopen searches as query strings
  • Page through results, or browse them interactively
  • Log in once; the session is kept until the token expires
  • Read provider profiles and reviews, and write your own

EXAMPLES:
  mkt login ana@example.com                    # Log in (password is prompted)
  mkt search plomero                           # Free text search
  mkt search --service 3 --min-rating 4.5      # Filtered search
  mkt search --url 'q=plomero&service=3' -i    # Reopen a shared search interactively
  mkt provider 7                               # Profile and latest reviews
  mkt review create 7 5 "Excelente trabajo"    # Review a provider
  mkt whoami                                   # Show the current session

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > .env file > defaults

  API Configuration:
    MKT_API_URL                      Backend base URL (default: http://localhost:3000/api)
    MKT_API_TIMEOUT                  Request timeout (default: 10s)
    MKT_API_MAX_RETRIES              Retries for failed reads (default: 2)
    MKT_API_RETRY_DELAY              Base retry delay (default: 500ms)
    MKT_API_RATE_LIMIT               Requests per second, 0 disables (default: 10)

  Session Configuration:
    MKT_STORAGE_DIR                  Session store directory (default: ~/.mkt)
    MKT_STORAGE_FILENAME             Session store filename (default: session.db)
    MKT_AUTH_EXPIRY_CHECK_INTERVAL   Token expiry check period (default: 5m)

  Search Configuration:
    MKT_SEARCH_PAGE_SIZE             Providers per page (default: 12)

  Application Configuration:
    MKT_APP_TIMEOUT                  Command timeout (default: 60s)
    MKT_LOG_LEVEL                    debug, info, warn or error (default: warn)
    MKT_LOG_FORMAT                   text or json (default: text)
    MKT_DEBUG                        Force debug logging when set

GETTING HELP:
  mkt [command] --help                         # Get help for any specific command
  mkt completion bash                          # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Build the runtime once flags have been applied to the configuration
			return root.setup(cmd.Context())
		},
	}
	root.cmd.SetOut(out)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// SetArgs replaces the process arguments
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// Close releases the runtime built for this invocation
func (r *RootCommand) Close() error {
	if r.runtime == nil || r.runtime.Close == nil {
		return nil
	}
	return r.runtime.Close()
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("env-file", "", "Read variables from this .env file instead of ./.env")

	// API configuration
	flags.String("api-url", "", "Backend base URL (overrides MKT_API_URL)")
	flags.Duration("api-timeout", 0, "Request timeout (overrides MKT_API_TIMEOUT)")
	flags.Int("max-retries", 0, "Retries for failed reads (overrides MKT_API_MAX_RETRIES)")

	// Storage configuration
	flags.String("storage-dir", "", "Session store directory (overrides MKT_STORAGE_DIR)")
	flags.String("storage-file", "", "Session store filename (overrides MKT_STORAGE_FILENAME)")

	// Search configuration
	flags.Int("page-size", 0, "Providers per page (overrides MKT_SEARCH_PAGE_SIZE)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Command timeout (overrides MKT_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Log at info level (overrides MKT_APP_VERBOSE)")
	flags.String("log-level", "", "Log level (overrides MKT_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text or json (overrides MKT_LOG_FORMAT)")
}

// overridesFromFlags collects the flags that were explicitly set
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	o := &config.ConfigOverrides{}

	if flags.Changed("api-url") {
		v, _ := flags.GetString("api-url")
		o.APIURL = &v
	}
	if flags.Changed("api-timeout") {
		v, _ := flags.GetDuration("api-timeout")
		o.APITimeout = &v
	}
	if flags.Changed("max-retries") {
		v, _ := flags.GetInt("max-retries")
		o.MaxRetries = &v
	}
	if flags.Changed("storage-dir") {
		v, _ := flags.GetString("storage-dir")
		o.StorageDir = &v
	}
	if flags.Changed("storage-file") {
		v, _ := flags.GetString("storage-file")
		o.StorageFilename = &v
	}
	if flags.Changed("page-size") {
		v, _ := flags.GetInt("page-size")
		o.PageSize = &v
	}
	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		o.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		o.Verbose = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	if flags.Changed("log-format") {
		v, _ := flags.GetString("log-format")
		o.LogFormat = &v
	}
	return o
}

// setup runs the bootstrap once per invocation
func (r *RootCommand) setup(ctx context.Context) error {
	if r.app != nil {
		return nil
	}
	if r.bootstrap == nil {
		return fmt.Errorf("application not initialized")
	}

	envFile, _ := r.cmd.PersistentFlags().GetString("env-file")
	rt, err := r.bootstrap(ctx, BootstrapOptions{EnvFile: envFile, Overrides: r.overridesFromFlags()})
	if err != nil {
		return err
	}
	r.runtime = rt
	r.app = NewAppWithIO(rt.API, rt.Config, r.out, r.in)
	return nil
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.app != nil && r.app.config != nil {
		return r.app.config.Application.Timeout
	}
	return 60 * time.Second
}

// withTimeout runs fn under the application timeout. Interactive commands
// pass a zero multiplier and run until the user quits.
func (r *RootCommand) withTimeout(cmd *cobra.Command, multiplier int, fn func(ctx context.Context) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if multiplier > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.getAppTimeout()*time.Duration(multiplier))
		defer cancel()
	}
	return fn(ctx)
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Login command
	loginCmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in to the marketplace",
		Long:  "Log in with your email and password. The password is prompted for unless --password is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Prompting for the password may take a while
			return r.withTimeout(cmd, 2, func(ctx context.Context) error {
				if password, _ := cmd.Flags().GetString("password"); password != "" {
					args = append(args, password)
				}
				return NewLoginCommand(r.app).Execute(ctx, args)
			})
		},
	}
	loginCmd.Flags().String("password", "", "Password (prompted when omitted)")

	// Register command
	registerCmd := &cobra.Command{
		Use:   "register <client|provider|mixto> <email> <full name>",
		Short: "Create an account",
		Long:  "Create an account and log in with it. The password is prompted for twice.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(cmd, 2, func(ctx context.Context) error {
				return NewRegisterCommand(r.app).Execute(ctx, args)
			})
		},
	}

	// Logout command
	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewLogoutCommand(r.app).Execute(ctx, args)
			})
		},
	}

	// Whoami command
	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewWhoamiCommand(r.app).Execute(ctx, args)
			})
		},
	}

	// Search command
	searchCmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search providers",
		Long: `Search providers by free text and filters.

A search can be given as flags or as a query string with --url. The
canonical query string of every search is printed so it can be shared.

Interactive mode (-i) keeps the search open: load more pages, retry a
failed page, or change filters without starting over.

Examples:
  mkt search plomero
  mkt search --service 3,4 --location "La Paz" --min-rating 4 --sort rating
  mkt search --url 'q=plomero&availability=available' --pages 3
  mkt search -i electricista`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := searchRequestFromFlags(cmd, args)
			if err != nil {
				return err
			}
			multiplier := 1
			if req.Interactive {
				multiplier = 0
			}
			return r.withTimeout(cmd, multiplier, func(ctx context.Context) error {
				return NewSearchCommand(r.app).Run(ctx, req)
			})
		},
	}
	searchFlags := searchCmd.Flags()
	searchFlags.String("url", "", "Search from a query string or search address")
	searchFlags.Int64Slice("service", nil, "Service ids (comma separated or repeated)")
	searchFlags.StringArray("location", nil, "City name (repeat for several cities)")
	searchFlags.Float64("min-rating", 0, "Minimum rating, 0 to 5 in steps of 0.5")
	searchFlags.StringSlice("availability", nil, "available, busy or unavailable")
	searchFlags.String("sort", "", "relevance, rating, recent, distance, popularity, name_asc or name_desc")
	searchFlags.Int("page", 1, "Page to start from")
	searchFlags.Int("pages", 1, "Number of pages to load")
	searchFlags.BoolP("interactive", "i", false, "Browse the results interactively")
	searchFlags.Bool("json", false, "Print the results as JSON")

	// Url command
	urlCmd := &cobra.Command{
		Use:   "url <query string>",
		Short: "Print the canonical form of a search query string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewURLCommand(r.app).Execute(ctx, args)
			})
		},
	}

	// Provider command
	providerCmd := &cobra.Command{
		Use:   "provider <id>",
		Short: "Show a provider profile and its latest reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("provider ID", args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("reviews")
			asJSON, _ := cmd.Flags().GetBool("json")
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewProviderCommand(r.app).Show(ctx, id, limit, asJSON)
			})
		},
	}
	providerCmd.Flags().Int("reviews", 0, "Number of reviews to show")
	providerCmd.Flags().Bool("json", false, "Print the profile as JSON")

	// Reviews command
	reviewsCmd := &cobra.Command{
		Use:   "reviews <provider id>",
		Short: "List a provider's reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewReviewsCommand(r.app).Execute(ctx, append(args, pagingArgs(cmd)...))
			})
		},
	}
	addPagingFlags(reviewsCmd)

	// Review command
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Create or delete your reviews",
	}
	reviewCreateCmd := &cobra.Command{
		Use:   "create <provider id> <rating> <comment>",
		Short: "Review a provider",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerID, err := parseID("provider ID", args[0])
			if err != nil {
				return err
			}
			var rating int
			if _, err := fmt.Sscanf(args[1], "%d", &rating); err != nil {
				return errors.NewInvalidInputError("rating", args[1], "must be a whole number of stars")
			}
			photo, _ := cmd.Flags().GetString("photo")
			review := domain.NewReview{
				ProviderID: providerID,
				Rating:     rating,
				Comment:    strings.Join(args[2:], " "),
				PhotoURL:   photo,
			}
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewReviewCommand(r.app).Create(ctx, review)
			})
		},
	}
	reviewCreateCmd.Flags().String("photo", "", "URL of a photo of the work")
	reviewDeleteCmd := &cobra.Command{
		Use:   "delete <review id>",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("review ID", args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			// Confirmation may take a while
			return r.withTimeout(cmd, 2, func(ctx context.Context) error {
				return NewReviewCommand(r.app).Delete(ctx, id, yes)
			})
		},
	}
	reviewDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	reviewCmd.AddCommand(reviewCreateCmd, reviewDeleteCmd)

	// My reviews command
	myReviewsCmd := &cobra.Command{
		Use:   "my-reviews",
		Short: "List the reviews you have written",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewMyReviewsCommand(r.app).Execute(ctx, pagingArgs(cmd))
			})
		},
	}
	addPagingFlags(myReviewsCmd)

	// Health command
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withTimeout(cmd, 1, func(ctx context.Context) error {
				return NewHealthCommand(r.app).Execute(ctx, args)
			})
		},
	}

	r.cmd.AddCommand(
		loginCmd,
		registerCmd,
		logoutCmd,
		whoamiCmd,
		searchCmd,
		urlCmd,
		providerCmd,
		reviewsCmd,
		reviewCmd,
		myReviewsCmd,
		healthCmd,
	)
}

func addPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", 10, "Reviews per page")
}

// pagingArgs turns the paging flags into positional [page] [limit]
func pagingArgs(cmd *cobra.Command) []string {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	return []string{fmt.Sprint(page), fmt.Sprint(limit)}
}

// searchRequestFromFlags builds a search request from the search flags
func searchRequestFromFlags(cmd *cobra.Command, args []string) (SearchRequest, error) {
	flags := cmd.Flags()
	req := SearchRequest{Query: domain.NewSearchQuery()}

	req.RawQuery, _ = flags.GetString("url")
	req.Pages, _ = flags.GetInt("pages")
	req.Interactive, _ = flags.GetBool("interactive")
	req.JSON, _ = flags.GetBool("json")
	if req.Pages < 1 {
		return req, errors.NewInvalidInputError("pages", req.Pages, "must be at least 1")
	}
	if req.RawQuery != "" {
		if len(args) > 0 {
			return req, errors.NewInvalidInputError("search", strings.Join(args, " "), "free text cannot be combined with --url")
		}
		return req, nil
	}

	q := &req.Query
	q.FreeText = strings.Join(args, " ")
	q.ServiceIDs, _ = flags.GetInt64Slice("service")
	q.Cities, _ = flags.GetStringArray("location")
	q.MinRating, _ = flags.GetFloat64("min-rating")
	q.Page, _ = flags.GetInt("page")

	availability, _ := flags.GetStringSlice("availability")
	statuses, err := parseAvailabilityList(strings.Join(availability, ","))
	if err != nil {
		return req, err
	}
	q.AvailabilityStatuses = statuses

	if sortBy, _ := flags.GetString("sort"); sortBy != "" {
		s, ok := domain.ParseSortOption(sortBy)
		if !ok {
			return req, errors.NewInvalidInputError("sort", sortBy, "unknown sort option")
		}
		q.SortBy = s
	}
	return req, nil
}

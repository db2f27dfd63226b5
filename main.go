// autopo fills in missing translations of gettext catalogs with a
// machine-translation provider.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/autopo/config"
	"github.com/minios-linux/autopo/i18n"
	"github.com/minios-linux/autopo/langcode"
	"github.com/minios-linux/autopo/memory"
	"github.com/minios-linux/autopo/provider"
	"github.com/minios-linux/autopo/settings"
	"github.com/minios-linux/autopo/translate"
	"github.com/minios-linux/autopo/walker"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// successField marks an info entry that should render as [OK].
const successField = "success"

var (
	colorInfo    = color.New(color.FgBlue)
	colorSuccess = color.New(color.FgGreen)
	colorWarn    = color.New(color.FgYellow, color.Bold)
	colorError   = color.New(color.FgRed)
	colorDebug   = color.New(color.FgCyan)
	colorHeading = color.New(color.FgBlue, color.Bold)
)

// cliFormatter renders entries as "[LEVEL] message key=value ...".
type cliFormatter struct {
	// ShowFields appends the entry fields; enabled by --verbose.
	ShowFields bool
}

func (f *cliFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(levelPrefix(e))
	b.WriteByte(' ')
	b.WriteString(e.Message)

	if f.ShowFields {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			if k != successField {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
		}
	} else if err, ok := e.Data[logrus.ErrorKey]; ok {
		fmt.Fprintf(&b, ": %v", err)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelPrefix(e *logrus.Entry) string {
	switch e.Level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return colorDebug.Sprint("[DEBUG]")
	case logrus.InfoLevel:
		if ok, _ := e.Data[successField].(bool); ok {
			return colorSuccess.Sprint("[OK]")
		}
		return colorInfo.Sprint("[INFO]")
	case logrus.WarnLevel:
		return colorWarn.Sprint("[WARN]")
	default:
		return colorError.Sprint("[ERROR]")
	}
}

// log is the CLI logger; library packages receive it as a FieldLogger.
var log = newLogger(os.Stderr, false)

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&cliFormatter{ShowFields: verbose})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

func logInfo(format string, args ...any) {
	log.Infof(format, args...)
}

func logSuccess(format string, args ...any) {
	log.WithField(successField, true).Infof(format, args...)
}

func logWarning(format string, args ...any) {
	log.Warnf(format, args...)
}

func logError(format string, args ...any) {
	log.Errorf(format, args...)
}

// stderrIsTerminal reports whether progress bars can be drawn.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configPath string
	verbose    bool

	// uiLang is the language of autopo's own messages.
	uiLang = "en"
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "autopo",
		Short: i18n.T("Fill in missing gettext translations with machine translation"),
		Long: `autopo walks the locale directories of a project and fills in missing
translations in every <lang>/LC_MESSAGES/*.po catalog using a
machine-translation provider.

Commands:
  translate   Translate catalogs
  status      Show per-catalog translation statistics
  languages   List the languages a provider supports
  auth        Manage provider credentials

Providers:
  google         Google Translate (web), no key
  google-cloud   Google Cloud Translation, GOOGLE_TRANSLATE_KEY
  mymemory       MyMemory, optional MYMEMORY_EMAIL
  deepl          DeepL, DEEPL_TRANSLATE_KEY
  libre          LibreTranslate, LIBRE_TRANSLATE_MIRROR_URL
  microsoft      Microsoft Translator, MICROSOFT_TRANSLATE_KEY
  yandex         Yandex Translate, YANDEX_TRANSLATE_KEY
  papago         Naver Papago, PAPAGO_CLIENT_ID + PAPAGO_SECRET_KEY
  qcri           QCRI Machine Translation, QCRI_TRANSLATE_KEY
  openai         OpenAI-compatible chat (also Ollama, Groq)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.NoColor = color.NoColor || !stderrIsTerminal()
			log = newLogger(os.Stderr, verbose)
			log.Debugf("interface language %s (%s)", uiLang, langcode.NativeName(uiLang))
		},
	}

	// Global persistent flags, inherited by all subcommands
	addGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		newTranslateCmd(),
		newStatusCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&rootDir, "root", ".", i18n.T("Project root directory"))
	fs.StringVar(&configPath, "config", "", i18n.T("Config file (default <root>/.autopo.yaml)"))
	fs.BoolVarP(&verbose, "verbose", "v", false, i18n.T("Enable debug logging"))
}

func main() {
	uiLang = i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		for _, e := range splitErrors(err) {
			logError("%v", e)
		}
		stop()
		os.Exit(1)
	}
}

// splitErrors unpacks a joined validation error for one-per-line output.
func splitErrors(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("autopo version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// projectOverrides are the command-line settings layered over the config.
type projectOverrides struct {
	provider    string
	apiKey      string
	localePaths []string
	memory      string
}

// loadProject reads .autopo.yaml and merges every credential source:
// --api-key > environment > .autopo.yaml > auth.json.
func loadProject(o projectOverrides) (*config.Config, error) {
	cfg, err := config.Load(rootDir, configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		log.Debugf("using config %s", cfg.Path)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.FillFromStore(settings.Load())

	if o.provider != "" {
		cfg.Provider = o.provider
	}
	cfg.ApplyAPIKey(cfg.Provider, o.apiKey)

	if len(o.localePaths) > 0 {
		cfg.LocalePaths = o.localePaths
	}
	if len(cfg.LocalePaths) == 0 && cfg.UseI18N {
		if found := config.DetectLocalePathsOS(cfg.Root); len(found) > 0 {
			logInfo(i18n.T("Detected locale paths: %s"), strings.Join(found, ", "))
			cfg.LocalePaths = found
		}
	}
	if o.memory != "" {
		cfg.Memory = o.memory
	}
	return cfg, nil
}

// findJobs validates the locale configuration and lists the catalogs.
func findJobs(cfg *config.Config, locales []string) ([]walker.Job, error) {
	w, err := walker.New(walker.Config{
		UseI18N:     cfg.UseI18N,
		LocalePaths: cfg.ResolvedLocalePaths(),
		Log:         log,
	})
	if err != nil {
		return nil, err
	}
	return w.Jobs(normalizeLocales(locales))
}

// normalizeLocales trims and de-duplicates --locale values, splitting
// comma-separated lists.
func normalizeLocales(locales []string) []string {
	parts := lo.FlatMap(locales, func(s string, _ int) []string {
		return strings.Split(s, ",")
	})
	parts = lo.Map(parts, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}

func providerOptions() provider.Options {
	return provider.Options{Log: log}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	locales        []string
	untranslated   bool
	setFuzzy       bool
	sourceLanguage string
	silent         bool
	throttle       string
	throttleSet    bool
	dryRun         bool
	overrides      projectOverrides
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate",
		Short: i18n.T("Translate catalogs with a machine-translation provider"),
		Long: `Fill in translations of every catalog below the configured locale paths.

Each <locale_path>/<lang>/LC_MESSAGES/*.po file is translated from the
source language into <lang>. Catalogs are saved after every translated
entry, so an interrupted run keeps its progress.

Examples:
  # Translate everything with the default provider
  autopo translate

  # Only fill in what is missing, French and German, mark as fuzzy
  autopo translate -u -f -l fr -l de

  # Use DeepL with a key from the command line
  autopo translate --provider deepl --api-key XXXX

  # Show what would be sent without calling the provider
  autopo translate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("source-language") {
				a.sourceLanguage = ""
			}
			a.throttleSet = cmd.Flags().Changed("throttle")
			return runTranslate(cmd.Context(), a)
		},
	}

	fs := cmd.Flags()
	fs.StringSliceVarP(&a.locales, "locale", "l", nil, i18n.T("Locale to translate (repeatable, default: all)"))
	fs.BoolVarP(&a.untranslated, "untranslated", "u", false, i18n.T("Only translate entries without a translation"))
	fs.BoolVarP(&a.setFuzzy, "set-fuzzy", "f", false, i18n.T("Mark machine translations as fuzzy"))
	fs.StringVarP(&a.sourceLanguage, "source-language", "s", translate.OriginLanguage, i18n.T("Language of the msgid strings"))
	fs.BoolVar(&a.silent, "silent", false, i18n.T("Do not show progress bars"))
	fs.StringVar(&a.throttle, "throttle", "1", i18n.T("Seconds to wait between provider calls (0 disables)"))
	fs.BoolVar(&a.dryRun, "dry-run", false, i18n.T("Show what would be translated without calling the provider"))
	addProjectFlags(fs, &a.overrides)

	_ = cmd.RegisterFlagCompletionFunc("provider", completeProviders)

	return cmd
}

func addProjectFlags(fs *pflag.FlagSet, o *projectOverrides) {
	fs.StringVar(&o.provider, "provider", "", i18n.T("Translation provider (default from config, else google)"))
	fs.StringVar(&o.apiKey, "api-key", "", i18n.T("API key for the selected provider"))
	fs.StringArrayVar(&o.localePaths, "locale-path", nil, i18n.T("Locale directory (repeatable, overrides config)"))
	fs.StringVar(&o.memory, "memory", "", i18n.T("SQLite translation memory file"))
}

func completeProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(provider.Catalogue(), func(p provider.Info, _ int) string {
		return p.ID + "\t" + p.Name
	}), cobra.ShellCompDirectiveNoFileComp
}

func runTranslate(ctx context.Context, a translateArgs) error {
	cfg, err := loadProject(a.overrides)
	if err != nil {
		return err
	}
	if a.sourceLanguage == "" {
		a.sourceLanguage = cfg.SourceLanguage
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	throttleText := cfg.Throttle
	if a.throttleSet {
		throttleText = a.throttle
	}
	throttle, ok := config.ParseThrottle(throttleText)
	if !ok {
		logWarning(i18n.T("Invalid throttle %q, using %v"), throttleText, throttle)
	}

	jobs, err := findJobs(cfg, a.locales)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		logWarning(i18n.T("No catalogs found"))
		return nil
	}
	logInfo(i18n.N("Found %d catalog", "Found %d catalogs", len(jobs)), len(jobs))

	opts := translate.Options{
		SourceLanguage: a.sourceLanguage,
		SkipTranslated: a.untranslated,
		SetFuzzy:       a.setFuzzy,
		Silent:         a.silent || !stderrIsTerminal() || verbose,
		Progress:       os.Stderr,
		DryRun:         a.dryRun,
	}

	patcher := &translate.Patcher{
		Fs:  afero.NewOsFs(),
		Log: log.WithField("provider", cfg.Provider),
	}

	if a.dryRun {
		sum, err := translate.Run(ctx, patcher, jobs, opts)
		if err != nil {
			return err
		}
		logInfo(i18n.T("Dry run: %d entries would be translated, %d skipped"), sum.Pending, sum.Skipped)
		return nil
	}

	tr, err := provider.New(ctx, cfg.Provider, cfg.Credentials, providerOptions())
	if err != nil {
		return err
	}
	if c, ok := tr.(io.Closer); ok {
		defer c.Close()
	}
	tr = provider.Throttle(tr, throttle)

	var mem *memory.Translator
	if path := cfg.MemoryPath(); path != "" {
		store, err := memory.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		mem = memory.Wrap(tr, store, cfg.Provider, log)
		tr = mem
		log.Debugf("translation memory %s", path)
	}
	patcher.Translator = tr

	logInfo(i18n.T("Translating with %s from %s"), cfg.Provider, a.sourceLanguage)
	sum, err := translate.Run(ctx, patcher, jobs, opts)
	printSummary(ctx, sum, mem)
	if errors.Is(err, context.Canceled) {
		logWarning(i18n.T("Interrupted, progress so far is saved"))
		return nil
	}
	return err
}

func printSummary(ctx context.Context, sum translate.Summary, mem *memory.Translator) {
	logSuccess(i18n.T("Translated %d entries in %d catalogs"), sum.Translated, sum.Files)
	if sum.Failed > 0 {
		logWarning(i18n.N("%d entry failed", "%d entries failed", sum.Failed), sum.Failed)
	}
	if sum.SkippedFiles > 0 {
		logWarning(i18n.N("%d catalog skipped", "%d catalogs skipped", sum.SkippedFiles), sum.SkippedFiles)
	}
	if sum.FailedFiles > 0 {
		logError(i18n.N("%d catalog failed", "%d catalogs failed", sum.FailedFiles), sum.FailedFiles)
	}
	if mem != nil {
		logInfo(i18n.T("Translation memory: %d hits, %d misses"), mem.Hits(), mem.Misses())
		if n, err := mem.Stored(context.WithoutCancel(ctx)); err == nil {
			log.Debugf("translation memory holds %d entries", n)
		}
	}
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var (
		locales   []string
		overrides projectOverrides
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show translation statistics"),
		Long: `Show per-catalog translation statistics for every configured locale path.
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject(overrides)
			if err != nil {
				return err
			}
			jobs, err := findJobs(cfg, locales)
			if err != nil {
				return err
			}
			showStatsTable(os.Stdout, translate.Status(afero.NewOsFs(), jobs), cfg.Root)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&locales, "locale", "l", nil, i18n.T("Locale to show (repeatable, default: all)"))
	cmd.Flags().StringArrayVar(&overrides.localePaths, "locale-path", nil, i18n.T("Locale directory (repeatable, overrides config)"))
	return cmd
}

func showStatsTable(w io.Writer, stats []translate.FileStatus, root string) {
	if len(stats) == 0 {
		logInfo(i18n.T("No catalogs found"))
		return
	}

	fmt.Fprintf(w, "\n%s\n", colorHeading.Sprint(i18n.T("Translation status")))
	fmt.Fprintln(w, strings.Repeat("─", 72))

	langWidth := langColumnWidth(lo.Map(stats, func(s translate.FileStatus, _ int) string {
		return s.Job.Language
	}))
	for _, st := range stats {
		rel, err := filepath.Rel(root, st.Job.Path)
		if err != nil {
			rel = st.Job.Path
		}
		if st.Err != nil {
			fmt.Fprintf(w, "  %-*s  %s  %v\n", langWidth, st.Job.Language, rel, st.Err)
			continue
		}
		fmt.Fprintf(w, "  %-*s  %s  %4d/%-4d fuzzy:%-3d  %s\n",
			langWidth, st.Job.Language, progressBar(st.Percent(), 20),
			st.Translated, st.Total, st.Fuzzy, rel)
	}
	fmt.Fprintln(w)
}

// progressBar renders a coloured percentage bar of width cells.
func progressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100

	c := colorError
	switch {
	case percent >= 100:
		c = colorSuccess
	case percent >= 50:
		c = colorWarn
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return c.Sprint(bar) + fmt.Sprintf(" %3d%%", percent)
}

func langColumnWidth(langs []string) int {
	width := 2
	for _, l := range langs {
		width = max(width, len(l))
	}
	return width
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	var overrides projectOverrides

	cmd := &cobra.Command{
		Use:   "languages",
		Short: i18n.T("List the languages a provider supports"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject(overrides)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			tr, err := provider.New(cmd.Context(), cfg.Provider, cfg.Credentials, providerOptions())
			if err != nil {
				return err
			}
			if c, ok := tr.(io.Closer); ok {
				defer c.Close()
			}

			langs, err := tr.SupportedLanguages(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing %s languages: %w", cfg.Provider, err)
			}
			printLanguages(os.Stdout, langs)
			return nil
		},
	}

	cmd.Flags().StringVar(&overrides.provider, "provider", "", i18n.T("Translation provider (default from config, else google)"))
	cmd.Flags().StringVar(&overrides.apiKey, "api-key", "", i18n.T("API key for the selected provider"))
	_ = cmd.RegisterFlagCompletionFunc("provider", completeProviders)
	return cmd
}

// printLanguages writes "code  name (native)" lines sorted by code.
func printLanguages(w io.Writer, langs map[string]string) {
	byCode := lo.Invert(langs)
	codes := lo.Keys(byCode)
	sort.Strings(codes)

	width := langColumnWidth(codes)
	for _, code := range codes {
		name := byCode[code]
		native := langcode.NativeName(code)
		if native != "" && native != code && !strings.EqualFold(native, name) {
			fmt.Fprintf(w, "%-*s  %s (%s)\n", width, code, name, native)
		} else {
			fmt.Fprintf(w, "%-*s  %s\n", width, code, name)
		}
	}
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage provider credentials"),
		Long: `Manage credentials stored in $XDG_DATA_HOME/autopo/auth.json.

Stored credentials are used when neither --api-key, the environment nor
.autopo.yaml provides them.

Examples:
  autopo auth login --provider deepl       Store a DeepL key (prompts)
  autopo auth login --provider papago      Store a Papago client id and secret
  autopo auth logout --provider deepl      Remove the DeepL key
  autopo auth logout                       Remove all credentials
  autopo auth list                         Show stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)
	return cmd
}

type loginArgs struct {
	provider string
	key      string
	secret   string
	baseURL  string
	region   string
}

func newAuthLoginCmd() *cobra.Command {
	var a loginArgs

	cmd := &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store credentials for a provider"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(a, cmd.InOrStdin())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&a.provider, "provider", "", i18n.T("Provider to store credentials for"))
	fs.StringVar(&a.key, "key", "", i18n.T("API key or client id (prompted when omitted)"))
	fs.StringVar(&a.secret, "secret", "", i18n.T("Client secret (papago)"))
	fs.StringVar(&a.baseURL, "base-url", "", i18n.T("Custom endpoint (libre, openai)"))
	fs.StringVar(&a.region, "region", "", i18n.T("Resource region (microsoft)"))
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.RegisterFlagCompletionFunc("provider", completeProviders)
	return cmd
}

func runAuthLogin(a loginArgs, in io.Reader) error {
	if !provider.Known(a.provider) {
		return fmt.Errorf("%w: %q", provider.ErrUnknownProvider, a.provider)
	}
	if a.provider == provider.Google {
		logInfo(i18n.T("%s needs no credentials"), a.provider)
		return nil
	}

	scanner := bufio.NewScanner(in)
	prompt := func(label string) string {
		fmt.Fprintf(os.Stderr, "  %s: ", label)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	existing := settings.Get(a.provider)
	if a.key == "" {
		if existing != nil && existing.Key != "" {
			fmt.Fprintf(os.Stderr, "  %s %s\n", i18n.T("Current key:"), colorWarn.Sprint(settings.MaskKey(existing.Key)))
		}
		label := i18n.T("API key")
		if a.provider == provider.Papago {
			label = i18n.T("Client ID")
		}
		a.key = prompt(label)
	}
	if a.provider == provider.Papago && a.secret == "" {
		a.secret = prompt(i18n.T("Client secret"))
	}

	info, err := loginInfo(a, existing)
	if err != nil {
		return err
	}
	if err := settings.Set(a.provider, info); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	logSuccess(i18n.T("%s credentials saved to %s"), a.provider, settings.FilePath())
	return nil
}

// loginInfo builds the stored entry, keeping values the user did not
// re-enter.
func loginInfo(a loginArgs, existing *settings.Info) (*settings.Info, error) {
	if existing == nil {
		existing = &settings.Info{}
	}
	if a.key == "" {
		a.key = existing.Key
	}
	if a.baseURL == "" {
		a.baseURL = existing.BaseURL
	}
	if a.region == "" {
		a.region = existing.Region
	}

	if a.provider == provider.Papago {
		if a.secret == "" {
			a.secret = existing.Secret
		}
		if a.key == "" || a.secret == "" {
			return nil, errors.New(i18n.T("papago needs both a client id and a secret"))
		}
		return &settings.Info{Type: settings.TypeClient, Key: a.key, Secret: a.secret}, nil
	}

	// Keyless setups are valid for local openai servers and libre mirrors.
	if a.key == "" && a.baseURL == "" {
		return nil, errors.New(i18n.T("no API key provided"))
	}
	return &settings.Info{Type: settings.TypeAPI, Key: a.key, BaseURL: a.baseURL, Region: a.region}, nil
}

func newAuthLogoutCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove stored credentials"),
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess(i18n.T("All stored credentials removed"))
				return nil
			}
			if !provider.Known(id) {
				return fmt.Errorf("%w: %q", provider.ErrUnknownProvider, id)
			}
			if err := settings.Remove(id); err != nil {
				return fmt.Errorf("removing %s credentials: %w", id, err)
			}
			logSuccess(i18n.T("%s credentials removed"), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "provider", "", i18n.T("Provider to logout (default: all)"))
	_ = cmd.RegisterFlagCompletionFunc("provider", completeProviders)
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show stored credentials and environment"),
		Run: func(cmd *cobra.Command, args []string) {
			printCredentials(os.Stderr, settings.Load(), os.LookupEnv)
		},
	}
}

func printCredentials(w io.Writer, store settings.Store, lookupEnv func(string) (string, bool)) {
	fmt.Fprintf(w, "\n%s\n", colorHeading.Sprint(i18n.T("Stored Credentials")))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	for _, p := range provider.Catalogue() {
		var status string
		entry := store[p.ID]
		switch {
		case p.ID == provider.Google:
			status = i18n.T("no credentials needed")
		case entry != nil && entry.Key != "":
			status = colorSuccess.Sprint(i18n.T("configured")) + " (" + settings.MaskKey(entry.Key) + ")"
			if entry.BaseURL != "" {
				status += " " + entry.BaseURL
			}
			if entry.Region != "" {
				status += " " + entry.Region
			}
		case entry != nil && entry.BaseURL != "":
			status = colorSuccess.Sprint(i18n.T("configured")) + " " + entry.BaseURL
		default:
			status = colorError.Sprint(i18n.T("not configured"))
		}
		fmt.Fprintf(w, "  %-14s %s\n", p.ID, status)

		for _, env := range p.Settings {
			if v, ok := lookupEnv(env); ok && v != "" {
				fmt.Fprintf(w, "  %-14s %s=%s\n", "", env, settings.MaskKey(v))
			}
		}
	}
	fmt.Fprintf(w, "\n  %s %s\n\n", i18n.T("File:"), settings.FilePath())
}

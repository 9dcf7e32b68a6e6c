package cmd

import (
	"fmt"

	"modrinth-mod-checker/checker"
	"modrinth-mod-checker/config"
	"modrinth-mod-checker/db"
	"modrinth-mod-checker/logger"
	"modrinth-mod-checker/modrinth"
	"modrinth-mod-checker/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const reportFileName = "mod_compatibility_report.md"

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check mods from an input file against a Minecraft version and loader",
	Long: `Checks every Modrinth mod link in the input file for a build compatible
with the target Minecraft version and mod loader. When no exact build exists
the checker proposes a version change (with --allow-downgrade) or an
alternative loader. Compatible mods and their required dependencies can be
downloaded with --download. A markdown report is written at the end of the run.`,
	Run: func(cmd *cobra.Command, _ []string) {
		opts, err := optionsFromFlags(cmd)
		if err != nil {
			logger.Log.Fatalw("Invalid arguments", zap.Error(err))
		}

		useTUI, _ := cmd.Flags().GetBool("tui")
		if useTUI {
			model := initialCheckModel(opts)
			if _, err := tea.NewProgram(model).Run(); err != nil {
				logger.Log.Fatalw("TUI failed", zap.Error(err))
			}
			return
		}
		runCheck(opts, nil)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("input", "i", "", "Input file containing Modrinth mod links")
	checkCmd.Flags().String("version", "", "Minecraft version to check compatibility with (e.g. \"1.20.4\")")
	checkCmd.Flags().String("loader", "", "Mod loader type (fabric, forge, quilt or neoforge)")
	checkCmd.Flags().StringP("output-dir", "o", "mods", "Directory to save downloaded mods")
	checkCmd.Flags().Bool("download", false, "Download mods if they are compatible")
	checkCmd.Flags().Bool("allow-downgrade", false, "Allow proposing an older Minecraft version when the target is unsupported")
	checkCmd.Flags().String("preferred-alt-loader", "", "Preferred alternative loader when the target loader is incompatible")
	checkCmd.Flags().Bool("tui", false, "Show progress in an interactive terminal UI")

	_ = checkCmd.MarkFlagRequired("input")
	_ = checkCmd.MarkFlagRequired("version")
	_ = checkCmd.MarkFlagRequired("loader")
}

type checkOptions struct {
	InputPath          string
	GameVersion        string
	Loader             checker.Loader
	PreferredAltLoader checker.Loader
	OutputDir          string
	Download           bool
	AllowDowngrade     bool
}

func optionsFromFlags(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions

	opts.InputPath, _ = cmd.Flags().GetString("input")
	opts.GameVersion, _ = cmd.Flags().GetString("version")
	opts.OutputDir, _ = cmd.Flags().GetString("output-dir")
	opts.Download, _ = cmd.Flags().GetBool("download")
	opts.AllowDowngrade, _ = cmd.Flags().GetBool("allow-downgrade")

	loaderName, _ := cmd.Flags().GetString("loader")
	loader, err := checker.ParseLoader(loaderName)
	if err != nil {
		return opts, err
	}
	opts.Loader = loader

	if alt, _ := cmd.Flags().GetString("preferred-alt-loader"); alt != "" {
		altLoader, err := checker.ParseLoader(alt)
		if err != nil {
			return opts, fmt.Errorf("invalid --preferred-alt-loader: %w", err)
		}
		opts.PreferredAltLoader = altLoader
	}

	return opts, nil
}

// displayName prefers the input file's label, falling back to the project
// title from the API when the line had no label.
func displayName(link checker.ModLink, outcome *checker.Outcome) string {
	if link.Name != link.Slug {
		return link.Name
	}
	if outcome != nil && outcome.Title != "" {
		return outcome.Title
	}
	return link.Slug
}

// runCheck processes every mod link sequentially, in input order. Progress
// goes to the channel when one is attached (TUI mode), to the console
// otherwise. Per-mod failures never abort the run; only setup errors are
// fatal.
func runCheck(opts checkOptions, progress chan<- CheckProgressMsg) {
	emit := func(msg CheckProgressMsg) {
		if progress != nil {
			progress <- msg
			return
		}
		printProgress(msg)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	links, lineErrs, err := checker.ReadModLinks(opts.InputPath)
	if err != nil {
		logger.Log.Fatalw("Failed to read input file", zap.String("path", opts.InputPath), zap.Error(err))
	}
	for _, le := range lineErrs {
		logger.Log.Warnw("Skipping unparseable input line", zap.Int("line", le.Line), zap.Error(le.Err))
		emit(CheckProgressMsg{Type: "error", Name: fmt.Sprintf("line %d", le.Line), Detail: le.Err.Error()})
	}
	if len(links) == 0 {
		logger.Log.Info("No Modrinth mod links found in the input file.")
		emit(CheckProgressMsg{Type: "status", Detail: "No Modrinth mod links found in the input file."})
		return
	}

	var store *db.Store
	if !cfg.CacheDisabled {
		store, err = db.Open(cfg.CachePath)
		if err != nil {
			logger.Log.Warnw("Failed to open response cache, continuing without it",
				zap.String("path", cfg.CachePath), zap.Error(err))
			store = nil
		}
	}

	client, err := modrinth.NewClient(cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to create Modrinth client", zap.Error(err))
	}
	if store != nil {
		client.Cache = store
		client.CacheTTL = cfg.CacheTTL()
	}

	resolver := &checker.Resolver{API: client, PreferredAltLoader: opts.PreferredAltLoader}
	depResolver := checker.NewDependencyResolver(resolver, client)
	downloader := &checker.Downloader{Client: client, OutputDir: opts.OutputDir, Log: logger.Log}
	if store != nil {
		downloader.Ledger = store
	}

	report := checker.NewReport(opts.GameVersion, opts.Loader)
	report.AddParseErrors(lineErrs)

	logger.Log.Infof("Checking %d mods for Minecraft %s (%s)...", len(links), opts.GameVersion, opts.Loader)
	emit(CheckProgressMsg{Type: "status", Detail: fmt.Sprintf("Checking %d mods for Minecraft %s (%s)...", len(links), opts.GameVersion, opts.Loader)})

	for _, link := range links {
		modLogger := logger.Log.With(zap.String("slug", link.Slug))
		emit(CheckProgressMsg{Type: "resolving", Name: link.Name})

		outcome, err := resolver.Resolve(link.Slug, opts.GameVersion, opts.Loader, opts.AllowDowngrade)
		if err != nil {
			modLogger.Errorw("Compatibility check failed", zap.Error(err))
			report.AddMod(checker.ModResult{Name: link.Name, Slug: link.Slug, Err: err})
			emit(CheckProgressMsg{Type: "error", Name: link.Name, Detail: err.Error()})
			continue
		}
		depResolver.MarkResolved(outcome.ProjectID, outcome.Slug)
		modLogger.Infow(ui.Colorize("Check complete", outcome.Color), zap.String("result", outcome.Kind.String()))

		result := checker.ModResult{Name: displayName(link, &outcome), Slug: link.Slug, Outcome: &outcome}

		if opts.Download && outcome.Kind == checker.Compatible {
			status, path, derr := downloader.Download(outcome)
			if derr != nil {
				modLogger.Errorw("Download failed", zap.Error(derr))
				result.DownloadNote = "download failed: " + derr.Error()
				emit(CheckProgressMsg{Type: "error", Name: result.Name, Detail: derr.Error()})
			} else {
				result.DownloadNote = fmt.Sprintf("%s (%s)", status, path)
				emit(CheckProgressMsg{Type: "download", Name: result.Name, Detail: result.DownloadNote})
			}
		}

		report.AddMod(result)
		emitOutcome(emit, result)

		if outcome.Kind == checker.Compatible && outcome.Version != nil {
			for _, dep := range depResolver.Resolve(outcome.Version, opts.GameVersion, opts.Loader, opts.AllowDowngrade) {
				if dep.Err != nil {
					modLogger.Warnw("Dependency check failed", zap.String("project_id", dep.ProjectID), zap.Error(dep.Err))
				}
				if opts.Download && dep.Outcome != nil && dep.Outcome.Kind == checker.Compatible {
					status, path, derr := downloader.Download(*dep.Outcome)
					if derr != nil {
						modLogger.Errorw("Dependency download failed", zap.String("dependency", dep.Title), zap.Error(derr))
						emit(CheckProgressMsg{Type: "error", Name: dep.Title, Detail: derr.Error()})
					} else {
						emit(CheckProgressMsg{Type: "download", Name: dep.Title, Detail: fmt.Sprintf("%s (%s)", status, path)})
					}
				}
				report.AddDependency(dep)
				emit(CheckProgressMsg{Type: "dependency", Name: dep.Title, Detail: dep.DependencyType})
			}
		}
	}

	if suggestion := suggestCommonVersion(report); suggestion != "" {
		report.SuggestedVersion = suggestion
		emit(CheckProgressMsg{Type: "status", Detail: fmt.Sprintf("Minecraft %s is published by every checked mod", suggestion)})
	}

	if err := report.WriteFile(reportFileName); err != nil {
		logger.Log.Errorw("Failed to write report", zap.String("path", reportFileName), zap.Error(err))
		emit(CheckProgressMsg{Type: "error", Name: reportFileName, Detail: err.Error()})
	}

	summary := summarize(report)
	logger.Log.Info(summary)
	emit(CheckProgressMsg{Type: "summary", Detail: summary})
	emit(CheckProgressMsg{Type: "status", Detail: "Report saved to " + reportFileName})
}

// suggestCommonVersion proposes a game version every checked mod publishes,
// but only when at least one mod was incompatible with the requested one.
func suggestCommonVersion(report *checker.Report) string {
	var (
		anyIncompatible bool
		sets            [][]string
	)
	for _, m := range report.Mods {
		if m.Outcome == nil {
			continue
		}
		sets = append(sets, m.Outcome.GameVersions)
		if m.Outcome.Kind == checker.Incompatible {
			anyIncompatible = true
		}
	}
	if !anyIncompatible {
		return ""
	}
	return checker.FindCommonVersion(sets)
}

func summarize(report *checker.Report) string {
	var compatible, fallback, incompatible, failed int
	for _, m := range report.Mods {
		switch {
		case m.Err != nil:
			failed++
		case m.Outcome.Kind == checker.Compatible:
			compatible++
		case m.Outcome.Kind == checker.Incompatible:
			incompatible++
		default:
			fallback++
		}
	}
	return fmt.Sprintf("Finished: %d compatible, %d with fallback proposals, %d incompatible, %d failed checks, %d dependencies.",
		compatible, fallback, incompatible, failed, len(report.Dependencies))
}

func emitOutcome(emit func(CheckProgressMsg), result checker.ModResult) {
	o := result.Outcome
	switch o.Kind {
	case checker.Compatible:
		emit(CheckProgressMsg{Type: "compatible", Name: result.Name, Detail: o.Version.VersionNumber})
	case checker.CompatibleViaVersionChange:
		emit(CheckProgressMsg{Type: "fallback", Name: result.Name, Detail: "works with Minecraft " + o.SuggestedGameVersion})
	case checker.CompatibleViaLoaderChange:
		emit(CheckProgressMsg{Type: "fallback", Name: result.Name, Detail: "works on " + o.Loader.String()})
	case checker.Incompatible:
		emit(CheckProgressMsg{Type: "incompatible", Name: result.Name})
	}
}

// printProgress renders a progress message as a plain console line.
func printProgress(msg CheckProgressMsg) {
	switch msg.Type {
	case "status", "summary":
		fmt.Println(ui.Bold(msg.Detail))
	case "resolving":
		fmt.Printf("%s %s\n", ui.Dim("·"), ui.Dim("checking "+msg.Name))
	case "compatible":
		fmt.Printf("%s %s %s\n", ui.Ok("+"), msg.Name, ui.Dim(msg.Detail))
	case "fallback":
		fmt.Printf("%s %s %s\n", ui.Warn("~"), msg.Name, ui.Dim(msg.Detail))
	case "incompatible":
		fmt.Printf("%s %s %s\n", ui.Bad("-"), msg.Name, ui.Dim("not available"))
	case "dependency":
		fmt.Printf("  %s %s %s\n", ui.Dim("↳"), msg.Name, ui.Dim(msg.Detail))
	case "download":
		fmt.Printf("  %s %s %s\n", ui.Ok("↓"), msg.Name, ui.Dim(msg.Detail))
	case "error":
		fmt.Printf("%s %s %s\n", ui.Bad("!"), msg.Name, ui.Bad(msg.Detail))
	}
}

// Package main provides the entry point for nordgen, a NordVPN
// WireGuard configuration generator for Linux.
//
// Features:
//   - One ready-to-use .conf profile per WireGuard-capable server
//   - Best-server-per-city shortlist ranked by load and distance
//   - Secure access token storage using the system keyring
//   - Bounded-concurrency writes with live progress reporting
//   - Graceful two-stage shutdown on interrupt
//
// Usage:
//
//	nordgen [options]
//
// Environment:
//
//	A NordVPN account with a valid access token is required. The token
//	can be passed via -token, stored with -save-token, or entered
//	interactively.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nordgen/common"
	"nordgen/config"
	"nordgen/keyring"
	"nordgen/nordapi"
	"nordgen/notify"
	"nordgen/scheduler"
	"nordgen/tui"
	"nordgen/vpn"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")

	// Token flags
	tokenFlag   = flag.String("token", "", "NordVPN access token (64 hex characters)")
	saveToken   = flag.Bool("save-token", false, "Store the token in the system keyring")
	forgetToken = flag.Bool("forget-token", false, "Remove the stored token and exit")

	// Generation flags
	dnsFlag       = flag.String("dns", "", "DNS server written into every profile")
	useIPFlag     = flag.Bool("ip", false, "Use the station IP instead of the hostname as endpoint")
	keepaliveFlag = flag.Int("keepalive", 0, "PersistentKeepalive interval in seconds (15-120)")
	concurrency   = flag.Int("concurrency", 0, "Maximum simultaneous profile writes")
	outputDir     = flag.String("output", "", "Parent directory for the generated output")
	noNotify      = flag.Bool("no-notify", false, "Disable the desktop notification on completion")
)

func main() {
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	// Initialize logger with structured logging and file output
	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:      logLevel,
		EnableFile: true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	if *forgetToken {
		if err := keyring.DeleteToken(); err != nil {
			fmt.Fprintln(os.Stderr, tui.Fail(fmt.Sprintf("Could not remove token: %v", err)))
			os.Exit(1)
		}
		fmt.Println(tui.Success("Stored token removed"))
		os.Exit(0)
	}

	if err := run(); err != nil {
		common.LogError("Run failed: %v", err)
		fmt.Fprintln(os.Stderr, tui.Fail(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

// run drives one generation pass end to end: resolve inputs, fetch,
// rank, write, summarize.
func run() error {
	runID := uuid.NewString()
	common.LogInfo("Starting %s v%s (run %s)", common.AppName, appVersion, runID)
	fmt.Println(tui.Header(appVersion))

	token, prompted, err := resolveToken()
	if err != nil {
		return err
	}

	cfg, err := resolvePreferences(prompted)
	if err != nil {
		return err
	}

	// The run state and signal handler are installed before any stage
	// that can take noticeable time, so an early Ctrl+C is honored.
	state := scheduler.NewRunState()
	coordinator := scheduler.NewCoordinator(state)
	coordinator.Install()
	defer coordinator.Stop()

	started := time.Now()
	client := nordapi.New()

	privateKey, err := fetchPrivateKey(client, token)
	if err != nil {
		return err
	}

	if *saveToken {
		if err := keyring.StoreToken(token); err != nil {
			common.LogWarn("Could not store token: %v", err)
		} else {
			fmt.Println(tui.Success("Token stored in keyring"))
		}
	}

	records, userLat, userLon, err := fetchServersAndLocation(client)
	if err != nil {
		return err
	}

	ranked, dropped := vpn.Rank(records, userLat, userLon)
	if dropped > 0 {
		common.LogInfo("Dropped %d records without usable key or location", dropped)
	}
	if len(ranked) == 0 {
		return common.WrapError(common.ErrMalformedResponse, "no usable servers in listing")
	}
	common.LogInfo("Ranked %d servers against location (%.4f, %.4f)",
		len(ranked), userLat, userLon)

	outDir, err := createOutputDir(*outputDir, started)
	if err != nil {
		return err
	}
	fmt.Println(tui.Success(fmt.Sprintf("Writing to %s", outDir)))

	results := writeProfiles(state, cfg, outDir, privateKey, ranked)

	summaryPath := filepath.Join(outDir, common.SummaryFileName)
	if err := vpn.BuildSummary(ranked).Write(summaryPath); err != nil {
		common.LogError("Could not write summary index: %v", err)
		results = append(results, scheduler.Result{
			Name: common.SummaryFileName,
			Err:  err,
		})
	}

	report(state, results, runTally{
		ranked:   len(ranked),
		rejected: dropped,
		outDir:   outDir,
		started:  started,
	})
	return nil
}

// runTally carries the per-category counts into the final report.
type runTally struct {
	ranked   int
	rejected int
	outDir   string
	started  time.Time
}

// resolveToken finds the access token: flag first, then keyring, then
// an interactive prompt. The second return value reports whether the
// user was prompted, which decides whether preferences are prompted too.
func resolveToken() (string, bool, error) {
	if *tokenFlag != "" {
		if !nordapi.ValidTokenFormat(*tokenFlag) {
			return "", false, common.WrapError(common.ErrInvalidToken,
				"expected 64 hexadecimal characters")
		}
		return *tokenFlag, false, nil
	}

	if keyring.HasToken() {
		token, err := keyring.Token()
		if err == nil && nordapi.ValidTokenFormat(token) {
			common.LogDebug("Using token from keyring")
			return token, false, nil
		}
		common.LogWarn("Stored token is unusable, prompting: %v", err)
	}

	token, err := tui.PromptToken()
	if err != nil {
		return "", false, err
	}
	if !nordapi.ValidTokenFormat(token) {
		return "", false, common.WrapError(common.ErrInvalidToken,
			"expected 64 hexadecimal characters")
	}
	return token, true, nil
}

// resolvePreferences merges the config file, command-line flags, and,
// for interactive sessions, the preference prompt. Flags win over the
// file; the prompt is shown only when the token was prompted too.
func resolvePreferences(interactive bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flagged := *dnsFlag != "" || *useIPFlag || *keepaliveFlag != 0 || *concurrency != 0

	if interactive && !flagged {
		prompted, err := tui.PromptPreferences(cfg)
		if err != nil {
			return nil, err
		}
		if err := prompted.Save(); err != nil {
			common.LogWarn("Could not save preferences: %v", err)
		}
		return prompted, nil
	}

	if *dnsFlag != "" {
		cfg.DNS = *dnsFlag
	}
	if *useIPFlag {
		cfg.UseStationIP = true
	}
	if *keepaliveFlag != 0 {
		cfg.Keepalive = *keepaliveFlag
	}
	if *concurrency != 0 {
		cfg.Concurrency = *concurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fetchPrivateKey exchanges the token for the account's WireGuard
// private key and sanity-checks it by deriving the public key.
func fetchPrivateKey(client *nordapi.Client, token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), common.APITimeout)
	defer cancel()

	privateKey, err := client.Credentials(ctx, token)
	if err != nil {
		return "", err
	}

	if _, err := vpn.PublicKey(privateKey); err != nil {
		return "", common.WrapError(common.ErrMalformedResponse,
			"credential is not a valid WireGuard key")
	}
	common.LogDebug("Obtained WireGuard credential")
	return privateKey, nil
}

// fetchServersAndLocation fetches the server listing and the caller's
// geolocation concurrently. Either failure aborts both.
func fetchServersAndLocation(client *nordapi.Client) ([]nordapi.ServerRecord, float64, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), common.APITimeout)
	defer cancel()

	var (
		records  []nordapi.ServerRecord
		lat, lon float64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = client.Servers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		lat, lon, err = client.Insights(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}

	common.LogInfo("Fetched %d server records", len(records))
	return records, lat, lon, nil
}

// createOutputDir creates the timestamped output directory with its
// configs/ and best_configs/ subdirectories.
func createOutputDir(parent string, started time.Time) (string, error) {
	name := common.OutputDirPrefix + started.Format("20060102_150405")
	dir := name
	if parent != "" {
		dir = filepath.Join(parent, name)
	}

	for _, sub := range []string{common.ConfigsDirName, common.BestConfigsDirName} {
		if err := common.EnsureDir(filepath.Join(dir, sub)); err != nil {
			return "", common.WrapError(common.ErrWrite, err.Error())
		}
	}
	return dir, nil
}

// writeProfiles runs the two write waves: every ranked server into
// configs/, then the best pick per city into best_configs/.
func writeProfiles(state *scheduler.RunState, cfg *config.Config, outDir, privateKey string, ranked []vpn.Server) []scheduler.Result {
	tracker := tui.NewTracker(os.Stdout)
	defer tracker.Finish()

	sched := scheduler.New(state, scheduler.Config{
		Limit:      cfg.Concurrency,
		OnProgress: tracker.Advance,
	})

	configsDir := filepath.Join(outDir, common.ConfigsDirName)
	jobs := make([]scheduler.Job, 0, len(ranked))
	for _, server := range ranked {
		jobs = append(jobs, profileJob(configsDir, privateKey, server, cfg))
	}
	results := sched.Run(jobs)

	best := vpn.BestPerLocation(ranked)
	keys := make([]vpn.LocationKey, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Country != keys[j].Country {
			return keys[i].Country < keys[j].Country
		}
		return keys[i].City < keys[j].City
	})

	bestDir := filepath.Join(outDir, common.BestConfigsDirName)
	bestJobs := make([]scheduler.Job, 0, len(keys))
	for _, key := range keys {
		bestJobs = append(bestJobs, profileJob(bestDir, privateKey, best[key], cfg))
	}
	return append(results, sched.Run(bestJobs)...)
}

// profileJob builds the write job for one server's profile.
func profileJob(dir, privateKey string, server vpn.Server, cfg *config.Config) scheduler.Job {
	return scheduler.Job{
		Name: server.Name,
		Run: func() (string, error) {
			text := vpn.Render(privateKey, server, cfg)
			return vpn.Persist(dir, server, text)
		},
	}
}

// report prints the final outcome and fires the desktop notification.
func report(state *scheduler.RunState, results []scheduler.Result, tally runTally) {
	var failures []scheduler.Result
	written := 0
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, res)
		} else {
			written++
		}
	}

	completed, total := state.Counts()
	elapsed := time.Since(tally.started).Round(time.Second)

	lines := []string{
		fmt.Sprintf("Servers ranked:   %d (%d rejected)", tally.ranked, tally.rejected),
		fmt.Sprintf("Profiles written: %d", written),
		fmt.Sprintf("Jobs completed:   %d/%d", completed, total),
		fmt.Sprintf("Elapsed:          %s", elapsed),
		fmt.Sprintf("Output:           %s", tally.outDir),
	}
	if state.Draining() {
		lines = append(lines, "Run was interrupted; output is partial")
	}
	fmt.Println(tui.SummaryBox(lines...))

	if len(failures) > 0 {
		fmt.Println(tui.Fail(fmt.Sprintf("Completed with %d errors", len(failures))))
		for i, res := range failures {
			common.LogError("Error %d/%d: %s: %v", i+1, len(failures), res.Name, res.Err)
			fmt.Fprintf(os.Stderr, "  Error %d/%d: %s: %v\n", i+1, len(failures), res.Name, res.Err)
		}
	} else {
		fmt.Println(tui.Success("All profiles written"))
	}

	if !*noNotify {
		if err := notify.Completed(written, len(failures)); err != nil {
			common.LogDebug("Desktop notification skipped: %v", err)
		}
	}
}

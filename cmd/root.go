package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tanq16/dlprobe/internal/config"
	"github.com/tanq16/dlprobe/internal/output"
	"github.com/tanq16/dlprobe/internal/probe"
	"github.com/tanq16/dlprobe/internal/scheduler"
	"github.com/tanq16/dlprobe/internal/utils"
)

var DlprobeVersion = "dev"

// app carries what the commands share once flags are parsed.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	printer    *output.Printer
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	warnings, err := cfg.Validate()
	if err != nil {
		return err
	}
	utils.InitLogger(cfg.Debug)
	for _, w := range warnings {
		a.printer.Warning(fmt.Sprintf("%s Warning: %s", output.StyleSymbols["warning"], w))
	}
	a.cfg = cfg
	return nil
}

func (a *app) prober() *probe.Prober {
	return probe.New(a.cfg.Endpoint, a.cfg.HTTPClientConfig(), a.printer)
}

func (a *app) campaign() scheduler.Campaign {
	return scheduler.Campaign{Attempts: a.cfg.Attempts, Delay: a.cfg.Delay}
}

func (a *app) payload() (utils.DownloadRequest, bool) {
	payload, err := a.cfg.Payload()
	if err != nil {
		a.printer.Error(fmt.Sprintf("%s %v", output.StyleSymbols["fail"], err))
		return payload, false
	}
	return payload, true
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), printer: output.NewPrinter(out)}

	rootCmd := &cobra.Command{
		Use:           "dlprobe",
		Short:         "dlprobe checks a download manager for duplicate task creation",
		Version:       DlprobeVersion,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		Run: func(cmd *cobra.Command, args []string) {
			runScenario(cmd, a)
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (yaml, json or toml)")
	flags.StringP("endpoint", "e", utils.DefaultEndpoint, "Download endpoint of the download manager")
	flags.DurationP("timeout", "t", utils.DefaultTimeout, "Per request timeout (eg. 5s, 500ms)")
	flags.IntP("attempts", "n", utils.DefaultAttempts, "Number of requests in a campaign")
	flags.DurationP("delay", "d", utils.DefaultDelay, "Delay between campaign requests")
	flags.Int("server-port", utils.DefaultServerPort, "Port the download manager is expected to listen on (0 disables the check)")
	flags.StringP("user-agent", "a", utils.ToolUserAgent, "User agent")
	flags.StringArrayP("header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	flags.StringP("proxy", "p", "", "HTTP/HTTPS proxy URL (credentials may be embedded)")
	flags.StringP("payload-file", "f", "", "YAML file with the download request to send")
	flags.String("url", utils.DefaultPayloadURL, "Download URL sent in the request")
	flags.String("filename", utils.DefaultPayloadFilename, "Filename sent in the request")
	flags.Bool("preflight", false, "Check the server status path before the scenario")
	flags.Bool("debug", false, "Enable debug logging")
	if err := a.v.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(newProbeCmd(a))
	rootCmd.AddCommand(newCampaignCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	return rootCmd
}

// runScenario sends one probe, then a campaign, then tells the operator
// where to look for duplicates.
func runScenario(cmd *cobra.Command, a *app) {
	ctx := cmd.Context()
	a.printer.Header("Download manager duplicate request test")
	a.printer.Println(strings.Repeat(output.StyleSymbols["hline"], 50))

	payload, ok := a.payload()
	if !ok {
		return
	}
	p := a.prober()
	if a.cfg.Preflight {
		p.Status(ctx)
		a.printer.Blank()
	}
	p.Send(ctx, payload)
	scheduler.Run(ctx, p, payload, a.campaign())
	a.printer.Info("Test complete. Check the download manager UI for duplicate download tasks.")
}

func Execute() {
	start := time.Now()
	rootCmd := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(fmt.Sprintf("%s %v", output.StyleSymbols["fail"], err))
		os.Exit(1)
	}
	log := utils.GetLogger("cmd")
	log.Debug().Dur("elapsed", time.Since(start)).Msg("done")
}

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/iulianpascalau/device-health-check/commonGo"
	"github.com/iulianpascalau/device-health-check/services/plugin/common"
	"github.com/iulianpascalau/device-health-check/services/plugin/config"
	"github.com/iulianpascalau/device-health-check/services/plugin/factory"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "plugin"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
	envReportAPIKey      = "REPORT_API_KEY"
	coreSuffix           = "core"
	agregationSuffix     = "agregation"
)

// appVersion should be populated at build time using ldflags
// Usage examples:
// Linux/macOS:
//
//	go build -v -ldflags="-X main.appVersion=$(git describe --all | cut -c7-32)
var appVersion = "undefined"
var fileLogging commonGo.FileLoggingHandler
var exitCode = common.StatusUnknown.ExitCode()

var (
	pluginHelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("plugin")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,pipeline:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the pipeline package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogWarning.String(),
	}
	// logFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the plugin will store its logs.",
		Value: "",
	}
	hostname = cli.StringFlag{
		Name:  "hostname, H",
		Usage: "The `host` of the device to check",
		Value: "localhost",
	}
	port = cli.UintFlag{
		Name:  "port, p",
		Usage: "The `port` the device API listens on",
		Value: 80,
	}
	scheme = cli.StringFlag{
		Name:  "scheme",
		Usage: "The URL `scheme` used to reach the device API",
		Value: "http",
	}
	commandConfig = cli.StringFlag{
		Name:  "config, j",
		Usage: "The command `file` (.json or .toml) describing what to collect and compute",
	}
	warningCore = cli.StringFlag{
		Name:  "warning-core, w",
		Usage: "Warning `range` attached to the metric declaring the 'core' threshold suffix",
	}
	criticalCore = cli.StringFlag{
		Name:  "critical-core, c",
		Usage: "Critical `range` attached to the metric declaring the 'core' threshold suffix",
	}
	warningAgregation = cli.StringFlag{
		Name:  "warning-agregation, a",
		Usage: "Warning `range` attached to the metric declaring the 'agregation' threshold suffix",
	}
	criticalAgregation = cli.StringFlag{
		Name:  "critical-agregation, b",
		Usage: "Critical `range` attached to the metric declaring the 'agregation' threshold suffix",
	}
	warning = cli.StringSliceFlag{
		Name:  "warning",
		Usage: "Warning range given as `suffix=range`, attached to the metric declaring the threshold suffix. Can be repeated",
	}
	critical = cli.StringSliceFlag{
		Name:  "critical",
		Usage: "Critical range given as `suffix=range`, attached to the metric declaring the threshold suffix. Can be repeated",
	}
	filterIn = cli.StringSliceFlag{
		Name:  "filter-in",
		Usage: "Only keep the metrics whose name matches at least one of these `regex`es. Can be repeated",
	}
	filterOut = cli.StringSliceFlag{
		Name:  "filter-out",
		Usage: "Drop the metrics whose name matches one of these `regex`es. Can be repeated",
	}
	strict = cli.BoolFlag{
		Name:  "strict",
		Usage: "Boolean option that turns unresolved counters and placeholders into metric errors",
	}
	checkName = cli.StringFlag{
		Name:  "check-name",
		Usage: "The `name` under which the result is reported. Defaults to <hostname>.<command file name>",
	}
	reportEndpoint = cli.StringFlag{
		Name:  "report-endpoint",
		Usage: "The monitor service `URL` receiving the check results. Reporting is disabled when empty",
	}
	envFile = cli.StringFlag{
		Name:  "env-file",
		Usage: "The `file` holding the " + envReportAPIKey + " secret, read only when reporting",
		Value: "./.env",
	}
	interval = cli.UintFlag{
		Name:  "interval",
		Usage: "When set, the check runs every `seconds` and its results are only logged and reported",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = pluginHelpTemplate
	app.Name = "Device health check plugin"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "This is the entry point for checking a device: it collects its counters, computes the configured metrics and exits with the monitoring plugin status code"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		hostname,
		port,
		scheme,
		commandConfig,
		warningCore,
		criticalCore,
		warningAgregation,
		criticalAgregation,
		warning,
		critical,
		filterIn,
		filterOut,
		strict,
		checkName,
		reportEndpoint,
		envFile,
		interval,
	}
	app.Authors = []cli.Author{
		{
			Name:  "Iulian Pascalau",
			Email: "iulian.pascalau@gmail.com",
		},
	}

	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		fmt.Println(common.StatusUnknown.String() + ": " + err.Error())
		exitCode = common.StatusUnknown.ExitCode()
	}

	if !check.IfNil(fileLogging) {
		_ = fileLogging.Close()
	}

	os.Exit(exitCode)
}

func run(ctx *cli.Context) error {
	saveLogFile := ctx.GlobalBool(logSaveFile.Name)
	workingDir := ctx.GlobalString(workingDirectory.Name)

	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	fileLogging, err = commonGo.AttachFileLogger(commonGo.ArgsFileLogger{
		Log:             log,
		DefaultLogsPath: defaultLogsPath,
		LogFilePrefix:   logFilePrefix,
		SaveLogFile:     saveLogFile,
		WorkingDir:      workingDir,
		LifeSpanInSec:   logFileLifeSpanInSec,
		LifeSpanInMB:    logFileLifeSpanInMB,
	})
	if err != nil {
		return err
	}

	configPath := ctx.GlobalString("config")
	if len(configPath) == 0 {
		return fmt.Errorf("the command file must be provided with --config")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	args, err := createHandlerArgs(ctx, *cfg, configPath)
	if err != nil {
		return err
	}

	handler, err := factory.NewComponentsHandler(args)
	if err != nil {
		return err
	}

	if args.IntervalInSeconds == 0 {
		outcome := handler.RunOnce(context.Background())
		fmt.Println(outcome.Output)
		exitCode = outcome.Result.Status.ExitCode()

		return nil
	}

	log.Info("Starting periodic device checks", "version", appVersion, "pid", os.Getpid(),
		"interval", args.IntervalInSeconds)

	err = handler.Start()
	if err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	<-sigs

	log.Info("Application closing, calling Close on all subcomponents...")
	handler.Close()
	exitCode = common.StatusOk.ExitCode()

	return nil
}

func createHandlerArgs(ctx *cli.Context, cfg config.CommandConfig, configPath string) (factory.ArgsComponentsHandler, error) {
	host := ctx.GlobalString("hostname")
	baseURL := fmt.Sprintf("%s://%s", ctx.GlobalString(scheme.Name),
		net.JoinHostPort(host, strconv.FormatUint(uint64(ctx.GlobalUint("port")), 10)))

	warnings, err := parseSuffixRanges(ctx.GlobalStringSlice(warning.Name))
	if err != nil {
		return factory.ArgsComponentsHandler{}, err
	}
	criticals, err := parseSuffixRanges(ctx.GlobalStringSlice(critical.Name))
	if err != nil {
		return factory.ArgsComponentsHandler{}, err
	}
	addIfSet(warnings, coreSuffix, ctx.GlobalString("warning-core"))
	addIfSet(criticals, coreSuffix, ctx.GlobalString("critical-core"))
	addIfSet(warnings, agregationSuffix, ctx.GlobalString("warning-agregation"))
	addIfSet(criticals, agregationSuffix, ctx.GlobalString("critical-agregation"))

	name := ctx.GlobalString(checkName.Name)
	if len(name) == 0 {
		name = host + "." + strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))
	}

	args := factory.ArgsComponentsHandler{
		Config:            cfg,
		BaseURL:           baseURL,
		Host:              host,
		FilterIn:          ctx.GlobalStringSlice(filterIn.Name),
		FilterOut:         ctx.GlobalStringSlice(filterOut.Name),
		Strict:            ctx.GlobalBool(strict.Name),
		Warnings:          warnings,
		Criticals:         criticals,
		CheckName:         name,
		ReportEndpoint:    ctx.GlobalString(reportEndpoint.Name),
		IntervalInSeconds: uint32(ctx.GlobalUint(interval.Name)),
	}

	if len(args.ReportEndpoint) > 0 {
		envFileContents := map[string]string{
			envReportAPIKey: "",
		}
		err = commonGo.ReadEnvFile(ctx.GlobalString(envFile.Name), envFileContents)
		if err != nil {
			return factory.ArgsComponentsHandler{}, err
		}
		args.ReportAPIKey = envFileContents[envReportAPIKey]
	}

	return args, nil
}

// parseSuffixRanges reads suffix=range pairs
func parseSuffixRanges(values []string) (map[string]string, error) {
	ranges := make(map[string]string, len(values))
	for _, value := range values {
		suffix, text, found := strings.Cut(value, "=")
		if !found || len(suffix) == 0 {
			return nil, fmt.Errorf("invalid threshold '%s', expected suffix=range", value)
		}
		ranges[suffix] = text
	}

	return ranges, nil
}

func addIfSet(ranges map[string]string, suffix string, text string) {
	if len(text) > 0 {
		ranges[suffix] = text
	}
}

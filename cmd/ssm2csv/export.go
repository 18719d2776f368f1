package main

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/nvinuesa/paramcsv/internal/config"
	"github.com/nvinuesa/paramcsv/internal/csvfile"
	"github.com/nvinuesa/paramcsv/internal/exporter"
	"github.com/nvinuesa/paramcsv/internal/logging"
	"github.com/nvinuesa/paramcsv/internal/model"
	"github.com/nvinuesa/paramcsv/internal/paramstore"
	"github.com/nvinuesa/paramcsv/internal/security"
)

const envPrefix = "SSM2CSV"

// openStore connects to the parameter store. Tests replace it.
var openStore = func(ctx context.Context, s paramstore.Session) (exporter.Source, *aws.Config, error) {
	store, cfg, err := paramstore.Connect(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	return store, &cfg, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssm2csv [flags] PARAMETER...",
		Short: "Export AWS SSM Parameter Store parameters to CSV",
		Long: `ssm2csv exports parameters from AWS Systems Manager Parameter Store to CSV.

Each PARAMETER is an exact parameter name, or a path when --one-level or
--recursive is given. Rows are written in argument order, then in the order
the store lists them. Output goes to stdout unless --file is given; files are
created with mode 0600 since values are decrypted by default.

Every flag can also be set through the environment (SSM2CSV_SOURCE_PROFILE,
SSM2CSV_WITH_DECRYPTION, ...) or a YAML file named by --config or
SSM2CSV_CONFIG.

Examples:
  # Export one parameter
  ssm2csv /app/db/password

  # Export a whole tree to a file
  ssm2csv --recursive --file params.csv /app

  # Export the direct children of a path without decrypting
  ssm2csv -1 -d false /app/db`,
		Args:          cobra.MinimumNArgs(1),
		Version:       versionString(),
		RunE:          runExport,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate("ssm2csv {{.Version}}\n")

	flags := cmd.Flags()
	flags.BoolP("one-level", "1", false, "Export the direct children of each PARAMETER path")
	flags.BoolP("recursive", "r", false, "Export every parameter below each PARAMETER path")
	flags.String("source-region", "", "AWS region to export from")
	flags.String("source-profile", "", "AWS shared config profile to use")
	flags.VarP(config.NewBoolValue(true), "with-decryption", "d", "Decrypt SecureString values (true|false)")
	flags.String("file", "", "Output file (default: stdout)")
	flags.Bool("with-labels", false, "Fill the Labels column from the current version's labels")
	flags.String(config.ConfigFlag, "", "YAML config file")
	flags.BoolP("verbose", "v", false, "Log diagnostics to stderr")

	cmd.MarkFlagsMutuallyExclusive("one-level", "recursive")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	v, err := config.Load(cmd.Flags(), envPrefix, "")
	if err != nil {
		return err
	}

	flags, err := config.Bools(v, "one-level", "recursive", "with-decryption", "with-labels", "verbose")
	if err != nil {
		return &model.ErrUsage{Details: err.Error()}
	}

	mode, err := paramstore.ParseMode(flags["one-level"], flags["recursive"])
	if err != nil {
		return err
	}

	opts := exporter.Options{
		Specs:          args,
		Mode:           mode,
		WithDecryption: flags["with-decryption"],
		WithLabels:     flags["with-labels"],
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), flags["verbose"])
	ctx := cmd.Context()

	session := paramstore.Session{
		Profile: v.GetString("source-profile"),
		Region:  v.GetString("source-region"),
	}
	src, cfg, err := openStore(ctx, session)
	if err != nil {
		return err
	}
	if cfg != nil && flags["verbose"] {
		if arn, err := paramstore.CallerIdentity(ctx, sts.NewFromConfig(*cfg)); err != nil {
			logger.Warn("could not resolve caller identity", "error", err)
		} else {
			logger.Debug("connected", "region", cfg.Region, "identity", arn)
		}
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), v.GetString("file"))
	if err != nil {
		return err
	}
	defer closeOut()

	w, err := csvfile.NewWriter(out, model.ExportColumns)
	if err != nil {
		return err
	}

	summary, err := exporter.New(src, logger).Export(ctx, w, opts)
	logger.Debug("export finished", "specs", summary.Specs, "records", summary.Records, "mode", mode.String())
	return err
}

// openOutput returns stdout for an empty path or "-", and a new private
// file otherwise.
func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return stdout, func() {}, nil
	}
	f, err := security.CreatePrivateFile(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

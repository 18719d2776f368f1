package main

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/nvinuesa/paramcsv/internal/config"
	"github.com/nvinuesa/paramcsv/internal/csvfile"
	"github.com/nvinuesa/paramcsv/internal/importer"
	"github.com/nvinuesa/paramcsv/internal/logging"
	"github.com/nvinuesa/paramcsv/internal/model"
	"github.com/nvinuesa/paramcsv/internal/paramstore"
	"github.com/nvinuesa/paramcsv/internal/security"
)

const envPrefix = "CSV2SSM"

// openStore connects to the parameter store. Tests replace it.
var openStore = func(ctx context.Context, s paramstore.Session) (importer.Sink, *aws.Config, error) {
	store, cfg, err := paramstore.Connect(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	return store, &cfg, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv2ssm --file FILE [flags]",
		Short: "Import parameters from CSV into AWS SSM Parameter Store",
		Long: `csv2ssm writes every row of a CSV file to AWS Systems Manager Parameter Store.

The file is usually produced by ssm2csv, but only the Name column is required.
Rows are imported in file order. Server-managed columns (LastModifiedDate,
LastModifiedUser, Version) are ignored, as are empty KeyId and Policies cells.

By default an existing parameter stops the import. Use --overwrite to replace
it or --keep-going to skip it; --keep-going also continues past other
failures.

Every flag can also be set through the environment (CSV2SSM_PROFILE,
CSV2SSM_OVERWRITE, ...) or a YAML file named by --config or CSV2SSM_CONFIG.

Examples:
  # Preview an import
  csv2ssm --dry-run --file params.csv

  # Import into another account, replacing existing values
  csv2ssm --profile staging --overwrite --file params.csv

  # Re-encrypt with a different key
  csv2ssm --key-id alias/staging --file params.csv`,
		Args:          cobra.NoArgs,
		Version:       versionString(),
		RunE:          runImport,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate("csv2ssm {{.Version}}\n")

	flags := cmd.Flags()
	flags.BoolP("overwrite", "f", false, "Overwrite existing parameters")
	flags.BoolP("keep-going", "k", false, "Skip existing parameters and continue past failures")
	flags.BoolP("dry-run", "N", false, "Print what would be imported without writing")
	flags.String("region", "", "AWS region to import into")
	flags.String("profile", "", "AWS shared config profile to use")
	flags.String("file", "", "CSV file to import, - for stdin (required)")
	flags.String("key-id", "", "KMS key to use instead of each row's KeyId")
	flags.Bool("clear-kms-key", false, "Drop each row's KeyId and use the default key")
	flags.String(config.ConfigFlag, "", "YAML config file")
	flags.BoolP("verbose", "v", false, "Log diagnostics to stderr")

	cmd.MarkFlagsMutuallyExclusive("overwrite", "keep-going")
	cmd.MarkFlagsMutuallyExclusive("key-id", "clear-kms-key")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	v, err := config.Load(cmd.Flags(), envPrefix, "")
	if err != nil {
		return err
	}

	flags, err := config.Bools(v, "overwrite", "keep-going", "dry-run", "clear-kms-key", "verbose")
	if err != nil {
		return &model.ErrUsage{Details: err.Error()}
	}

	opts := importer.Options{
		Overwrite:     flags["overwrite"],
		KeepGoing:     flags["keep-going"],
		DryRun:        flags["dry-run"],
		KeyIDOverride: v.GetString("key-id"),
		ClearKMSKey:   flags["clear-kms-key"],
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.KeyIDOverride != "" && opts.ClearKMSKey {
		return &model.ErrUsage{Details: "--key-id and --clear-kms-key cannot be used together"}
	}

	path := v.GetString("file")
	if path == "" {
		return &model.ErrUsage{Details: "--file is required"}
	}

	in, closeIn, err := openInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	defer closeIn()

	rows, err := csvfile.NewReader(in, path)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), flags["verbose"])
	ctx := cmd.Context()

	// A dry run only reads the file.
	var sink importer.Sink
	if !opts.DryRun {
		session := paramstore.Session{
			Profile: v.GetString("profile"),
			Region:  v.GetString("region"),
		}
		var cfg *aws.Config
		sink, cfg, err = openStore(ctx, session)
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
	}

	im := importer.New(sink, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	_, err = im.Import(ctx, rows, opts)
	return err
}

// openInput returns stdin for "-" and the named file otherwise.
func openInput(stdin io.Reader, path string) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	if err := security.ValidateFilePath(path); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

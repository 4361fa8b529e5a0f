package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/codec"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/padding"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/helpers"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/services/auth"
)

const version = "0.2.0"

type cipherFlags struct {
	key       string
	iv        string
	padding   string
	algorithm string
	useMDS    bool
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "tfcrypt",
		Short:         "Encrypt and decrypt text with the Twofish-lite CBC cipher",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	logger := func(cmd *cobra.Command) hclog.Logger {
		level := logLevel
		if level == "" {
			level = helpers.GetLogLevel()
		}
		return helpers.NewLoggerWithLevel("tfcrypt", level, cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		newCipherCmd("encrypt", "Encrypt TEXT (or stdin) to Base64", logger, func(e *codec.Engine, in string) (string, error) {
			return e.Encrypt(in)
		}),
		newCipherCmd("decrypt", "Decrypt Base64 TEXT (or stdin)", logger, func(e *codec.Engine, in string) (string, error) {
			return e.Decrypt(strings.TrimSpace(in))
		}),
		newHashSecretCmd(),
	)

	return rootCmd
}

func newCipherCmd(name, short string, logger func(*cobra.Command) hclog.Logger, run func(*codec.Engine, string) (string, error)) *cobra.Command {
	var f cipherFlags

	cmd := &cobra.Command{
		Use:   name + " [TEXT]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(cmd)

			input, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			padder, err := padding.GetPadder(f.padding)
			if err != nil {
				return err
			}
			engine, err := codec.New(f.key, f.iv,
				codec.WithAlgorithm(f.algorithm),
				codec.WithPadding(padder),
				codec.WithMDS(f.useMDS),
			)
			if err != nil {
				return err
			}
			log.Debug("engine ready", "algorithm", engine.Algorithm(), "padding", engine.Padding())

			out, err := run(engine, input)
			if err != nil {
				log.Error(name+" failed", "error", err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.key, "key", "k", "", "Key text (zero-padded or truncated to 16 bytes)")
	cmd.Flags().StringVarP(&f.iv, "iv", "i", "", "Initialization vector, exactly 16 bytes")
	cmd.Flags().StringVarP(&f.padding, "padding", "p", padding.PKCS7, "Padding scheme (PKCS7, LEGACY)")
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "TWOFISH_LITE", "Block cipher (TWOFISH_LITE, TWOFISH)")
	cmd.Flags().BoolVar(&f.useMDS, "mds", false, "Enable MDS diffusion in the round function")
	if err := cmd.MarkFlagRequired("key"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("iv"); err != nil {
		panic(err)
	}

	return cmd
}

func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret SECRET",
		Short: "Print a bcrypt hash for the AUTH_CLIENTS gateway setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashSecret(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// readInput returns the positional argument or, without one, all of stdin minus a trailing newline
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r"), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

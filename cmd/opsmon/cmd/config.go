package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/domzcondes/opsmon/pkg/config"
	"github.com/domzcondes/opsmon/pkg/dashboard"
	"github.com/domzcondes/opsmon/pkg/logging"
	opstls "github.com/domzcondes/opsmon/pkg/tls"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configInitPath); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", configInitPath)
		}
		if err := config.WriteStarter(configInitPath); err != nil {
			return fmt.Errorf("writing starter config: %w", err)
		}
		fmt.Printf("Wrote %s\n", configInitPath)
		return nil
	},
}

var configHashCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a dashboard password for the password_hash field",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		hash, err := dashboard.HashPassword(string(password))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var (
	certOut   string
	keyOut    string
	certName  string
	certHosts []string
)

var configLogrotateCmd = &cobra.Command{
	Use:   "logrotate",
	Short: "Print a logrotate stanza for the opsmon log directory",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(logging.GenerateLogrotateConfig())
	},
}

var configGenCertCmd = &cobra.Command{
	Use:   "gen-cert",
	Short: "Generate a self-signed certificate for the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := opstls.GenerateSelfSignedCert(certOut, keyOut, certName, certHosts...); err != nil {
			return err
		}
		fmt.Printf("Wrote %s and %s\n", certOut, keyOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configHashCmd)
	configCmd.AddCommand(configGenCertCmd)
	configCmd.AddCommand(configLogrotateCmd)

	configInitCmd.Flags().StringVar(&configInitPath, "path", "opsmon.yaml", "where to write the starter file")

	configGenCertCmd.Flags().StringVar(&certOut, "cert", "opsmon.crt", "certificate output path")
	configGenCertCmd.Flags().StringVar(&keyOut, "key", "opsmon.key", "private key output path")
	configGenCertCmd.Flags().StringVar(&certName, "name", "opsmon", "certificate common name")
	configGenCertCmd.Flags().StringSliceVar(&certHosts, "host", nil, "additional IPs or hostnames for the certificate")
}

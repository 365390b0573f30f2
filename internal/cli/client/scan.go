package client

import (
	"fmt"
	"io"
	"os"

	"github.com/cloo-solutions/storelens/internal/scanner"
	"github.com/cloo-solutions/storelens/internal/snapshot"
	"github.com/spf13/cobra"
)

// ScanCmd creates the scan command.
func ScanCmd() *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "scan <snapshot-file|->",
		Short: "Find e-mail addresses and phone numbers",
		Long: `Scans every value of a snapshot for contact details. With --text the
input is treated as plain text instead of a snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			contacts, err := scanInput(cmd.InOrStdin(), args[0], text)
			if err != nil {
				return err
			}
			return printContacts(cmd.OutOrStdout(), contacts, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&text, "text", false, "Treat input as plain text")
	return cmd
}

func scanInput(stdin io.Reader, path string, text bool) (scanner.Contacts, error) {
	if !text {
		records, err := loadRecords(stdin, path)
		if err != nil {
			return scanner.Contacts{}, err
		}
		return scanner.ScanRecords(records), nil
	}

	var data []byte
	var err error
	if path == snapshot.Stdin {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return scanner.Contacts{}, fmt.Errorf("failed to read input: %w", err)
	}
	return scanner.ScanContacts(string(data)), nil
}

func printContacts(out io.Writer, contacts scanner.Contacts, outputJSON bool) error {
	if outputJSON {
		return writeJSON(out, contacts)
	}
	if contacts.Empty() {
		fmt.Fprintln(out, "No contacts found.")
		return nil
	}
	for _, e := range contacts.Emails {
		fmt.Fprintf(out, "email  %s\n", e)
	}
	for _, p := range contacts.Phones {
		fmt.Fprintf(out, "phone  %s\n", p)
	}
	return nil
}

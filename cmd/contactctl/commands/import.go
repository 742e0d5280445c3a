package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/contactbook/internal/core"
)

type importOptions struct {
	file   string
	format string
}

func importCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import --file <path>",
		Short: "Import a batch of contacts from JSON or YAML",
		Long: `Import reads up to 100 contacts and creates them for --owner.

The file holds either a list of contacts or an object with a "contacts"
list. Tags and meeting places are given by name and created on first use.
Use --file - to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInput(cmd, opts.file)
			if err != nil {
				return err
			}
			defer r.Close()

			format := opts.format
			if format == "" {
				format = formatFromPath(opts.file)
			}
			drafts, err := readDrafts(r, format)
			if err != nil {
				return err
			}

			res, err := service.ImportContacts(cmd.Context(), owner, drafts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "contacts file, or - for stdin (required)")
	cmd.Flags().StringVar(&opts.format, "format", "", "json or yaml (default: from file extension, else json)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// readDrafts decodes a batch in the given format. YAML is converted to JSON
// first so that both formats go through ContactDraft's lenient decoding.
func readDrafts(r io.Reader, format string) ([]core.ContactDraft, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	switch strings.ToLower(format) {
	case "json", "":
	case "yaml", "yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Contacts []core.ContactDraft `json:"contacts"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return wrapped.Contacts, nil
	}

	var drafts []core.ContactDraft
	if err := json.Unmarshal(trimmed, &drafts); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return drafts, nil
}

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON prints v to stdout as two-space indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
